package handler

import "net/http"

func (h *Handler) contact(w http.ResponseWriter, r *http.Request) {
	sf := sessionFrom(r.Context())
	body, err := readBody(r)
	if err == nil {
		err = sf.SubmitContact(body)
	}
	respond(w, r, sf, err)
}
