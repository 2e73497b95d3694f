package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront/internal/domain/order"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respond(w, r, nil, errors.Wrap(err, "list products"))
		return
	}
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("products", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, p := range products {
					encodeProduct(e, p, h.cfg.ImageBaseURL)
				}
			})
		})
	})
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond(w, r, nil, errors.Wrap(err, "get product"))
		return
	}
	var e jx.Encoder
	encodeProduct(&e, *p, h.cfg.ImageBaseURL)
	writeJSON(w, http.StatusOK, &e)
}

// listOrders returns the archived orders of the logged in identity.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	sf := sessionFrom(r.Context())
	identity, ok := sf.CurrentUser()
	if !ok {
		writeError(w, apiError{Code: http.StatusUnauthorized, Kind: "auth", Message: "Please login to view orders"}, sf)
		return
	}

	var orders []order.Order
	if h.orders != nil {
		var err error
		if orders, err = h.orders.History(r.Context(), identity); err != nil {
			respond(w, r, sf, errors.Wrap(err, "order history"))
			return
		}
	}

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("orders", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, o := range orders {
					encodeOrder(e, o)
				}
			})
		})
	})
	writeJSON(w, http.StatusOK, &e)
}
