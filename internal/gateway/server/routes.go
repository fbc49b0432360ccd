package server

import (
	"net/http"

	"genstudio/internal/gateway/handler"
	"genstudio/internal/gateway/middleware"
	"genstudio/internal/gateway/web"
	"genstudio/internal/session"

	"github.com/rs/zerolog"
)

func NewMux(sessionHandler *handler.SessionHandler, store *session.Store, metricsHandler http.Handler, allowedOrigins []string, log zerolog.Logger) http.Handler {
	api := http.NewServeMux()

	// Intents
	api.HandleFunc("GET /api/state", sessionHandler.HandleState)
	api.HandleFunc("GET /api/modes", sessionHandler.HandleModes)
	api.HandleFunc("POST /api/mode", sessionHandler.HandleChangeMode)
	api.HandleFunc("POST /api/prompt", sessionHandler.HandleSetPrompt)
	api.HandleFunc("POST /api/attachment/{slot}", sessionHandler.HandleAttach)
	api.HandleFunc("DELETE /api/attachment/{slot}", sessionHandler.HandleDetach)
	api.HandleFunc("POST /api/clear", sessionHandler.HandleClear)
	api.HandleFunc("POST /api/submit", sessionHandler.HandleSubmit)
	api.HandleFunc("GET /api/ws", sessionHandler.HandleStateWS)

	// Browser shell
	api.Handle("GET /", web.Handler())

	mux := http.NewServeMux()
	mux.Handle("/", middleware.Session(store, api))
	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return middleware.CORS(allowedOrigins, middleware.AccessLog(log, mux))
}
