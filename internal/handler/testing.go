package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// Inspection routes for end-to-end tests. They are mounted only when
// Config.TestHelpers is set.

func (h *Handler) testCart(w http.ResponseWriter, r *http.Request) {
	sf := sessionFrom(r.Context())
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) { encodeLines(e, sf.CartItems()) })
	})
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) testUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := sessionFrom(r.Context()).CurrentUser()
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("user", func(e *jx.Encoder) {
			if ok {
				e.Str(identity)
				return
			}
			e.Null()
		})
	})
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) testSection(w http.ResponseWriter, r *http.Request) {
	sec := sessionFrom(r.Context()).CurrentSection()
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("section", func(e *jx.Encoder) { e.Str(string(sec)) })
	})
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) testClearCart(w http.ResponseWriter, r *http.Request) {
	sf := sessionFrom(r.Context())
	respond(w, r, sf, sf.ClearCart())
}

func (h *Handler) testLogout(w http.ResponseWriter, r *http.Request) {
	sf := sessionFrom(r.Context())
	respond(w, r, sf, sf.ForceLogout())
}
