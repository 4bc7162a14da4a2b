package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"crypto-audit-service/config"
)

// NewRouter はルーターを生成する。
func NewRouter(ch *CryptoHandler, lh *LogHandler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// ミドルウェア
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)

	// ルート定義
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/encrypt", ch.Encrypt)
		r.Post("/decrypt", ch.Decrypt)
		r.Get("/logs", lh.ListLogs)
		r.Get("/logs/count", lh.CountLogs)
	})

	var handler http.Handler = cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
	}).Handler(r)

	if cfg.OtelEnabled {
		handler = otelhttp.NewHandler(handler, cfg.OtelServiceName)
	}

	return handler
}
