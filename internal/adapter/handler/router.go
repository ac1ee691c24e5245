package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func NewRouter(h *HTTPHandler) http.Handler {
	r := mux.NewRouter()
	h.Register(r)
	return cors.Default().Handler(r)
}
