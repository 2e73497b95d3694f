package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront/internal/checkout"
	"github.com/xenking/storefront/internal/domain/inputerr"
	"github.com/xenking/storefront/internal/domain/product"
)

// addItem adds a catalog product by id, or an ad-hoc product when the body
// also carries a price.
func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	sf := sessionFrom(r.Context())
	body, err := readBody(r)
	if err != nil {
		respond(w, r, sf, err)
		return
	}

	price, adhoc := body["price"]
	if adhoc {
		_, err = sf.AddProduct(product.Input{ID: body["id"], Name: body["name"], PriceText: price})
	} else {
		_, err = sf.AddToCart(r.Context(), body["id"])
	}
	respond(w, r, sf, err)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	sf := sessionFrom(r.Context())
	_, err := sf.RemoveFromCart(chi.URLParam(r, "id"))
	respond(w, r, sf, err)
}

func (h *Handler) decrementItem(w http.ResponseWriter, r *http.Request) {
	sf := sessionFrom(r.Context())
	_, _, err := sf.DecrementItem(chi.URLParam(r, "id"))
	respond(w, r, sf, err)
}

// checkout answers 202 when processing started and 200 when there was
// nothing to do. An anonymous caller gets 401 with the login modal open.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	sf := sessionFrom(r.Context())
	out, err := sf.Checkout()
	if err != nil {
		respond(w, r, sf, err)
		return
	}

	switch out {
	case checkout.OutcomeBusy:
		respond(w, r, sf, checkout.ErrInProgress)
		return
	case checkout.OutcomeLoginRequired:
		respond(w, r, sf, &inputerr.AuthError{Message: "Please login to checkout"})
		return
	}

	status := http.StatusOK
	if out == checkout.OutcomePending {
		status = http.StatusAccepted
	}
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("outcome", func(e *jx.Encoder) { e.Str(string(out)) })
		e.Field("state", func(e *jx.Encoder) { encodePage(e, sf.Page()) })
	})
	writeJSON(w, status, &e)
}

func (h *Handler) dismissToast(w http.ResponseWriter, r *http.Request) {
	sf := sessionFrom(r.Context())
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond(w, r, sf, inputerr.Format("toast", chi.URLParam(r, "id"), "Unknown toast"))
		return
	}
	respond(w, r, sf, sf.DismissToast(id))
}
