package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/applyr/applyr/internal/http/handler"
	"github.com/applyr/applyr/internal/http/middleware"
	"github.com/applyr/applyr/internal/http/response"
	"github.com/applyr/applyr/internal/security"
)

type Dependencies struct {
	// ReadinessCheck reports whether downstream dependencies answer.
	// Nil means always ready.
	ReadinessCheck   func(ctx context.Context) error
	AuthHandler      *handler.AuthHandler
	VacancyHandler   *handler.VacancyHandler
	StageHandler     *handler.StageHandler
	FavoriteHandler  *handler.FavoriteHandler
	BotHandler       *handler.BotHandler
	TokenCodec       *security.TokenCodec
	InternalAPIKey   string
	APIRateLimitRPM  int
	AuthRateLimitRPM int
	Limiter          middleware.Limiter
	FailureMode      middleware.FailureMode
	EnableOTelHTTP   bool
}

func New(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger)

	limiter := dep.Limiter
	if limiter == nil {
		limiter = middleware.NewLocalLimiter()
	}
	apiLimit := middleware.NewRateLimiter(limiter, dep.APIRateLimitRPM, time.Minute, dep.FailureMode, "api").Middleware()
	authLimit := middleware.NewRateLimiter(limiter, dep.AuthRateLimitRPM, time.Minute, dep.FailureMode, "auth").Middleware()
	requireAuth := middleware.Auth(dep.TokenCodec)

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.ReadinessCheck != nil {
			if err := dep.ReadinessCheck(r.Context()); err != nil {
				response.Error(w, http.StatusServiceUnavailable, "NOT_READY", "dependency unavailable")
				return
			}
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", func(r chi.Router) {
		r.With(authLimit).Post("/register", dep.AuthHandler.Register)
		r.With(authLimit).Post("/login", dep.AuthHandler.Login)
		r.With(authLimit).Post("/refresh", dep.AuthHandler.Refresh)
		r.With(authLimit).Post("/logout", dep.AuthHandler.Logout)
		r.With(requireAuth).Put("/update_telegram", dep.AuthHandler.UpdateTelegram)
		r.With(requireAuth).Get("/me", dep.AuthHandler.Me)
	})

	r.Group(func(r chi.Router) {
		r.Use(apiLimit, requireAuth)

		r.Route("/vacancy", func(r chi.Router) {
			r.Post("/", dep.VacancyHandler.Create)
			r.Get("/", dep.VacancyHandler.List)
			r.Get("/{vacancy_id}", dep.VacancyHandler.Get)
			r.Put("/{vacancy_id}", dep.VacancyHandler.Update)
			r.Delete("/{vacancy_id}", dep.VacancyHandler.Delete)
			r.Get("/{vacancy_id}/stages", dep.StageHandler.ListByVacancy)
			r.Get("/{vacancy_id}/notes", dep.FavoriteHandler.GetNotes)
			r.Put("/{vacancy_id}/notes", dep.FavoriteHandler.UpdateNotes)
		})

		r.Route("/stage", func(r chi.Router) {
			r.Post("/", dep.StageHandler.Create)
			r.Get("/{stage_id}", dep.StageHandler.Get)
			r.Put("/{stage_id}", dep.StageHandler.Update)
			r.Delete("/{stage_id}", dep.StageHandler.Delete)
		})
	})

	r.Route("/internal/bot", func(r chi.Router) {
		r.Use(middleware.InternalAPIKey(dep.InternalAPIKey))
		r.Get("/users/by-telegram/{handle}", dep.BotHandler.GetUserByTelegram)
		r.Post("/vacancies", dep.BotHandler.CreateVacancy)
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
