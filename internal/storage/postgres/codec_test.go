package postgres

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/order"
)

func TestItemsCodec(t *testing.T) {
	items := []order.Item{
		{ProductID: "1", Name: `Widget "Pro"`, UnitPrice: decimal.RequireFromString("1299.99"), Quantity: 3},
		{ProductID: "2", Name: "Gadget", UnitPrice: decimal.RequireFromString("0.10"), Quantity: 1},
	}

	raw := encodeItems(items)
	assert.JSONEq(t, `[
		{"product_id":"1","name":"Widget \"Pro\"","unit_price":"1299.99","quantity":3},
		{"product_id":"2","name":"Gadget","unit_price":"0.1","quantity":1}
	]`, string(raw))

	got, err := decodeItems(raw)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range items {
		assert.Equal(t, items[i].ProductID, got[i].ProductID)
		assert.Equal(t, items[i].Name, got[i].Name)
		assert.True(t, items[i].UnitPrice.Equal(got[i].UnitPrice))
		assert.Equal(t, items[i].Quantity, got[i].Quantity)
	}
}

func TestDecodeItems_IgnoresUnknownFields(t *testing.T) {
	got, err := decodeItems([]byte(`[{"product_id":"x","quantity":2,"legacy":{"a":1}}]`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Quantity)

	_, err = decodeItems([]byte(`{"not":"an array"}`))
	assert.Error(t, err)
}
