// Package handler serves the storefront JSON API.
package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/storefront"
)

const (
	// SessionCookie carries the session id for browsers.
	SessionCookie = "storefront_session"
	// SessionHeader carries the session id for other clients and is set on
	// every response.
	SessionHeader = "X-Session-ID"
)

// maxBodySize bounds request bodies.
const maxBodySize = 64 << 10

// Sessions resolves storefront sessions.
type Sessions interface {
	Create(ctx context.Context) (*storefront.Storefront, error)
	Get(id string) (*storefront.Storefront, bool)
}

// OrderHistory lists archived orders.
type OrderHistory interface {
	History(ctx context.Context, identity string) ([]order.Order, error)
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to image paths in catalog responses.
	ImageBaseURL string
	// TestHelpers mounts the /api/test inspection routes.
	TestHelpers bool
	// SecureCookie marks the session cookie Secure.
	SecureCookie bool
}

// Handler implements the storefront API on top of a session registry.
type Handler struct {
	cfg      Config
	sessions Sessions
	products product.Repository
	orders   OrderHistory
}

// New constructs a Handler. orders may be nil, in which case the order
// history is always empty.
func New(cfg Config, sessions Sessions, products product.Repository, orders OrderHistory) *Handler {
	return &Handler{
		cfg:      cfg,
		sessions: sessions,
		products: products,
		orders:   orders,
	}
}

// Router returns the API routes.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, apiError{Code: http.StatusNotFound, Kind: "not_found", Message: "route not found"}, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, apiError{Code: http.StatusMethodNotAllowed, Kind: "method_not_allowed", Message: "method not allowed"}, nil)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)

		r.Group(func(r chi.Router) {
			r.Use(h.withSession)

			r.Get("/state", h.state)
			r.Post("/nav", h.navigate)
			r.Post("/get-started", h.getStarted)

			r.Post("/login/open", h.openLogin)
			r.Post("/login/close", h.closeLogin)
			r.Post("/login", h.login)
			r.Post("/logout", h.logout)

			r.Post("/cart/items", h.addItem)
			r.Delete("/cart/items/{id}", h.removeItem)
			r.Post("/cart/items/{id}/decrement", h.decrementItem)
			r.Post("/checkout", h.checkout)

			r.Post("/contact", h.contact)
			r.Delete("/toasts/{id}", h.dismissToast)
			r.Get("/orders", h.listOrders)

			if h.cfg.TestHelpers {
				r.Route("/test", func(r chi.Router) {
					r.Get("/cart", h.testCart)
					r.Get("/user", h.testUser)
					r.Get("/section", h.testSection)
					r.Post("/clear-cart", h.testClearCart)
					r.Post("/logout", h.testLogout)
				})
			}
		})
	})
	return r
}

func readBody(r *http.Request) (map[string]string, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, &badRequestError{err: errors.Wrap(err, "read body")}
	}
	fields, err := decodeStrings(data)
	if err != nil {
		return nil, &badRequestError{err: err}
	}
	return fields, nil
}

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes {"error":{...}} and, when the session is known,
// the page it ended on.
func writeError(w http.ResponseWriter, ae apiError, sf *storefront.Storefront) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("error", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("code", func(e *jx.Encoder) { e.Int(ae.Code) })
				e.Field("kind", func(e *jx.Encoder) { e.Str(ae.Kind) })
				e.Field("message", func(e *jx.Encoder) { e.Str(ae.Message) })
			})
		})
		if sf != nil {
			e.Field("state", func(e *jx.Encoder) { encodePage(e, sf.Page()) })
		}
	})
	writeJSON(w, ae.Code, &e)
}

// respond writes the session page on success and the classified error
// otherwise. Server errors are logged; input errors are the user's to fix.
func respond(w http.ResponseWriter, r *http.Request, sf *storefront.Storefront, err error) {
	if err != nil {
		ae := classify(err)
		if ae.Code >= http.StatusInternalServerError && ae.Code != http.StatusServiceUnavailable {
			zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		}
		writeError(w, ae, sf)
		return
	}
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("state", func(e *jx.Encoder) { encodePage(e, sf.Page()) })
	})
	writeJSON(w, http.StatusOK, &e)
}
