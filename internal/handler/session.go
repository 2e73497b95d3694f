package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/storefront"
)

type sessionKey struct{}

func sessionFrom(ctx context.Context) *storefront.Storefront {
	sf, _ := ctx.Value(sessionKey{}).(*storefront.Storefront)
	return sf
}

func sessionID(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get(SessionHeader)
}

// withSession resolves the caller's storefront, creating one when the id
// is missing or no longer known. The id is returned in the session header
// and cookie on every response.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sf, ok := h.sessions.Get(sessionID(r))
		if !ok {
			var err error
			sf, err = h.sessions.Create(ctx)
			if err != nil {
				respond(w, r, nil, err)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    sf.ID(),
				Path:     "/",
				HttpOnly: true,
				Secure:   h.cfg.SecureCookie,
				SameSite: http.SameSiteLaxMode,
			})
		}
		w.Header().Set(SessionHeader, sf.ID())

		ctx = zctx.With(ctx, zap.String("session_id", sf.ID()))
		ctx = context.WithValue(ctx, sessionKey{}, sf)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	respond(w, r, sessionFrom(r.Context()), nil)
}

func (h *Handler) navigate(w http.ResponseWriter, r *http.Request) {
	sf := sessionFrom(r.Context())
	body, err := readBody(r)
	if err == nil {
		err = sf.Navigate(body["section"])
	}
	respond(w, r, sf, err)
}

func (h *Handler) getStarted(w http.ResponseWriter, r *http.Request) {
	sf := sessionFrom(r.Context())
	respond(w, r, sf, sf.GetStarted())
}

func (h *Handler) openLogin(w http.ResponseWriter, r *http.Request) {
	sf := sessionFrom(r.Context())
	respond(w, r, sf, sf.OpenLogin())
}

func (h *Handler) closeLogin(w http.ResponseWriter, r *http.Request) {
	sf := sessionFrom(r.Context())
	respond(w, r, sf, sf.CloseLogin())
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	sf := sessionFrom(r.Context())
	body, err := readBody(r)
	if err == nil {
		err = sf.Login(body["username"], body["password"])
	}
	respond(w, r, sf, err)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sf := sessionFrom(r.Context())
	respond(w, r, sf, sf.Logout())
}
