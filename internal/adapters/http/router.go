package http

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/semitha-uni-west/google-beet/internal/adapters/auth"
	"github.com/semitha-uni-west/google-beet/internal/adapters/signal"
	"github.com/semitha-uni-west/google-beet/internal/app"
	"github.com/semitha-uni-west/google-beet/internal/app/orch"
	"github.com/semitha-uni-west/google-beet/internal/config"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

const sessionCookie = "beet_session"

func page(staticPath, name string) gin.HandlerFunc {
	file := filepath.Join(staticPath, name)
	return func(c *gin.Context) {
		c.File(file)
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, meetings *app.MeetingService, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionCookie, store))

	verifier := auth.NewVerifier(cfg.Auth)
	r.Use(auth.Middleware(verifier))

	r.Static("/static", cfg.StaticPath)
	r.GET(string(domain.RouteLanding), page(cfg.StaticPath, "index.html"))
	r.GET(string(domain.RouteLogin), page(cfg.StaticPath, "login.html"))
	r.GET(string(domain.RouteSignup), page(cfg.StaticPath, "signup.html"))
	r.GET(string(domain.RouteDashboard), auth.RequirePage(), page(cfg.StaticPath, "dashboard.html"))
	r.GET("/meeting/:code", auth.RequirePage(), func(c *gin.Context) {
		code := domain.NormalizeCode(c.Param("code"))
		if string(code) != c.Param("code") {
			c.Redirect(http.StatusMovedPermanently, string(domain.MeetingRoute(code)))
			return
		}
		c.File(filepath.Join(cfg.StaticPath, "meeting.html"))
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	a := &API{Meetings: meetings, Orch: o, Verifier: verifier}
	ctrl := signal.NewSignalWSController(o, cfg)

	api := r.Group("/api")
	api.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	api.POST("/auth/session", a.createSession)
	api.DELETE("/auth/session", a.deleteSession)

	authed := api.Group("", auth.RequireAuth())
	authed.GET("/me", a.me)
	authed.POST("/meetings", a.createMeeting)
	authed.GET("/meetings/:id", a.getMeeting)
	authed.DELETE("/meetings/:id", a.endByID)
	authed.POST("/meetings/:id/participants", a.join)
	authed.PATCH("/meetings/:id/participants/me", a.leave)
	authed.GET("/codes/:code", a.findByCode)
	authed.DELETE("/codes/:code", a.endByCode)
	authed.GET("/rooms", a.rooms)

	authed.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	return r
}
