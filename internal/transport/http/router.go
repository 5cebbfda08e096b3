package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/member-cord/internal/application/guild"
	"github.com/member-cord/internal/application/member"
	"github.com/member-cord/internal/application/pull"
	"github.com/member-cord/internal/application/verification"
	"github.com/member-cord/internal/config"
	"github.com/member-cord/internal/domain"
	"github.com/member-cord/internal/infrastructure/discord"
	"github.com/member-cord/internal/infrastructure/dynamo"
	jwtinfra "github.com/member-cord/internal/infrastructure/jwt"
	"github.com/member-cord/internal/infrastructure/webhook"
	"github.com/member-cord/internal/transport/http/handler"
	appmiddleware "github.com/member-cord/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	ServerRepo  *dynamo.ServerRepo
	MemberRepo  *dynamo.MemberRepo
	Discord     *discord.Client
	Notifier    webhook.Notifier
	JWTProvider *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	verifySvc := verification.NewService(deps.MemberRepo, deps.ServerRepo, deps.Discord, deps.Notifier)
	guildSvc := guild.NewService(deps.ServerRepo, deps.Discord)
	pullSvc := pull.NewService(deps.MemberRepo, deps.Discord, cfg.PullDelay)
	memberSvc := member.NewService(deps.MemberRepo)

	healthH := handler.NewHealthHandler()
	callbackH := handler.NewCallbackHandler(verifySvc, cfg.FrontendURL)
	authH := handler.NewAuthHandler(deps.JWTProvider, cfg.DashboardPasswordHash)
	serverH := handler.NewServerHandler(guildSvc)
	memberH := handler.NewMemberHandler(memberSvc)
	pullH := handler.NewPullHandler(pullSvc)

	// OAuth callback — reached by Discord's redirect, never by the dashboard.
	r.With(sensitiveRL.Limit).Get("/auth/discord/callback", callbackH.Callback)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/sessions/login", authH.Login)

		// ── Dashboard routes (admin bearer) ──────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)
			r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

			r.Get("/servers", serverH.List)
			r.Post("/servers/sync", serverH.Sync)
			r.Put("/servers/{guildID}/settings", serverH.UpdateSettings)
			r.Get("/members", memberH.List)
			r.Post("/members/pull", pullH.Pull)
		})
	})

	return r
}
