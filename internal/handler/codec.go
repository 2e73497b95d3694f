package handler

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/view"
)

func encodePage(e *jx.Encoder, p view.Page) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("version", func(e *jx.Encoder) { e.UInt64(p.Version) })
		e.Field("section", func(e *jx.Encoder) { e.Str(string(p.Section)) })
		e.Field("loginOpen", func(e *jx.Encoder) { e.Bool(p.LoginOpen) })
		e.Field("user", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("authenticated", func(e *jx.Encoder) { e.Bool(p.User.Authenticated) })
				if p.User.Authenticated {
					e.Field("identity", func(e *jx.Encoder) { e.Str(p.User.Identity) })
				}
				e.Field("label", func(e *jx.Encoder) { e.Str(p.User.Label) })
			})
		})
		e.Field("cart", func(e *jx.Encoder) { encodeCartView(e, p.Cart) })
		e.Field("checkout", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("state", func(e *jx.Encoder) { e.Str(string(p.Checkout.State)) })
				e.Field("label", func(e *jx.Encoder) { e.Str(p.Checkout.Label) })
			})
		})
		e.Field("products", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, pv := range p.Products {
					encodeProductView(e, pv)
				}
			})
		})
		e.Field("contact", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("phase", func(e *jx.Encoder) { e.Str(string(p.Contact.Phase)) })
				e.Field("form", func(e *jx.Encoder) { encodeFields(e, p.Contact.Form.Fields()) })
				e.Field("showSuccess", func(e *jx.Encoder) { e.Bool(p.Contact.ShowSuccess) })
			})
		})
		e.Field("toasts", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, t := range p.Toasts {
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.UInt64(t.ID) })
						e.Field("message", func(e *jx.Encoder) { e.Str(t.Message) })
						e.Field("level", func(e *jx.Encoder) { e.Str(string(t.Level)) })
					})
				}
			})
		})
	})
}

func encodeCartView(e *jx.Encoder, c view.CartView) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("lines", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, l := range c.Lines {
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Str(l.ID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(l.Name) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
						e.Field("quantityLabel", func(e *jx.Encoder) { e.Str(l.QuantityLabel) })
						e.Field("unitPrice", func(e *jx.Encoder) { e.Str(l.UnitPrice) })
						e.Field("lineTotal", func(e *jx.Encoder) { e.Str(l.LineTotal) })
					})
				}
			})
		})
		e.Field("total", func(e *jx.Encoder) { e.Str(c.Total) })
		e.Field("itemCount", func(e *jx.Encoder) { e.Int(c.ItemCount) })
		e.Field("checkoutEnabled", func(e *jx.Encoder) { e.Bool(c.CheckoutEnabled) })
	})
}

func encodeProductView(e *jx.Encoder, p view.ProductView) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("price", func(e *jx.Encoder) { e.Str(p.Price) })
		e.Field("category", func(e *jx.Encoder) { e.Str(p.Category) })
		if p.Thumbnail != "" {
			e.Field("thumbnail", func(e *jx.Encoder) { e.Str(p.Thumbnail) })
		}
		e.Field("inCart", func(e *jx.Encoder) { e.Int(p.InCart) })
	})
}

// encodeProduct writes a catalog product. Image paths are prefixed with
// base.
func encodeProduct(e *jx.Encoder, p product.Product, base string) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("price", func(e *jx.Encoder) { e.Str(product.FormatPrice(p.UnitPrice)) })
		e.Field("category", func(e *jx.Encoder) { e.Str(p.Category) })
		if p.Image != (product.Image{}) {
			e.Field("image", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					e.Field("thumbnail", func(e *jx.Encoder) { e.Str(base + p.Image.Thumbnail) })
					e.Field("mobile", func(e *jx.Encoder) { e.Str(base + p.Image.Mobile) })
					e.Field("tablet", func(e *jx.Encoder) { e.Str(base + p.Image.Tablet) })
					e.Field("desktop", func(e *jx.Encoder) { e.Str(base + p.Image.Desktop) })
				})
			})
		}
	})
}

func encodeLines(e *jx.Encoder, lines []cart.Line) {
	e.Arr(func(e *jx.Encoder) {
		for _, l := range lines {
			e.Obj(func(e *jx.Encoder) {
				e.Field("id", func(e *jx.Encoder) { e.Str(l.ProductID) })
				e.Field("name", func(e *jx.Encoder) { e.Str(l.Name) })
				e.Field("unitPrice", func(e *jx.Encoder) { e.Str(l.UnitPrice.StringFixed(2)) })
				e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
			})
		}
	})
}

func encodeOrder(e *jx.Encoder, o order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("identity", func(e *jx.Encoder) { e.Str(o.Identity) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, it := range o.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("productId", func(e *jx.Encoder) { e.Str(it.ProductID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(it.Name) })
						e.Field("unitPrice", func(e *jx.Encoder) { e.Str(it.UnitPrice.StringFixed(2)) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
					})
				}
			})
		})
		e.Field("total", func(e *jx.Encoder) { e.Str(o.Total.StringFixed(2)) })
		e.Field("placedAt", func(e *jx.Encoder) { e.Str(o.PlacedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00")) })
	})
}

func encodeFields(e *jx.Encoder, fields map[string]string) {
	e.Obj(func(e *jx.Encoder) {
		for _, k := range formKeys {
			e.Field(k, func(e *jx.Encoder) { e.Str(fields[k]) })
		}
	})
}

var formKeys = []string{"name", "email", "subject", "message"}

// decodeStrings reads a flat JSON object of string values. Numbers are kept
// as their literal text so a price may be sent either way. Other values are
// skipped. An empty body decodes to an empty map.
func decodeStrings(data []byte) (map[string]string, error) {
	out := make(map[string]string)
	if len(data) == 0 {
		return out, nil
	}
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch d.Next() {
		case jx.String:
			v, err := d.Str()
			if err != nil {
				return err
			}
			out[key] = v
		case jx.Number:
			n, err := d.Num()
			if err != nil {
				return err
			}
			out[key] = n.String()
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode body")
	}
	return out, nil
}
