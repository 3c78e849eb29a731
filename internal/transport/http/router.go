package http

import (
	"net/http"

	"blindpick-service/internal/app"
	"github.com/julienschmidt/httprouter"
)

// NewRouter wires the websocket, health, and QR endpoints.
func NewRouter(service *app.ShowService) *httprouter.Router {
	router := httprouter.New()
	wsHandler := NewWSHandler(service)

	router.GET("/healthz", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		_, _ = w.Write([]byte("ok"))
	})
	router.GET("/ws", wsHandler.ServeWS)
	router.GET("/shows/:id/qr", JoinQR)

	return router
}
