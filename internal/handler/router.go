/*
Package handler provides the HTTP handlers and routing setup for the Wave Chat relay.

This file defines the main Router, applying middleware like logging, CORS,
and IP-based rate limiting before delegating to specific handlers (API,
WebSocket, static files).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"wavechat/internal/pkg/auth/jwt"
	"wavechat/internal/pkg/limiter"
	"wavechat/internal/pkg/logx"
	"wavechat/internal/pkg/resp"
)

const (
	ConnectRate  = 0.2
	ConnectBurst = 5
	UploadRate   = 0.1
	UploadBurst  = 3
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global
// and per-route middleware.
func Router(deps *AppDeps) http.Handler {
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)
	uploadLimiter := limiter.NewIPRateLimiter(rate.Limit(UploadRate), UploadBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "Wave Chat Server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.Post("/auth/token", HandleIssueToken(deps))

		rateLimitedUpload := uploadLimiter.Middleware(HandleFileUpload(deps))
		api.Post("/file/upload", rateLimitedUpload.ServeHTTP)
		api.Get("/file/download", HandleFileDownload(deps))
	})

	rateLimitedWS := connectLimiter.Middleware(HandleWebSocket(wsUpgrader, deps))
	r.Get("/ws", rateLimitedWS.ServeHTTP)

	// Everything else is served from the static asset directory.
	r.Handle("/*", http.FileServer(http.Dir(deps.Config.StaticDir)))

	return r
}
