package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	PasswordReset(w http.ResponseWriter, r *http.Request)
}

type UsersHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Detail(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Deactivate(w http.ResponseWriter, r *http.Request)
	Bulk(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health HealthHandler
	Auth   AuthHandler
	Users  UsersHandler

	AuthMW func(http.Handler) http.Handler

	// Per-route rate limiters; nil means unlimited.
	LoginRL    func(http.Handler) http.Handler
	RegisterRL func(http.Handler) http.Handler
	ResetRL    func(http.Handler) http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("nil Users handler")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}

	passthrough := func(next http.Handler) http.Handler { return next }
	if deps.LoginRL == nil {
		deps.LoginRL = passthrough
	}
	if deps.RegisterRL == nil {
		deps.RegisterRL = passthrough
	}
	if deps.ResetRL == nil {
		deps.ResetRL = passthrough
	}

	r := chi.NewRouter()
	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(deps.RegisterRL).Post("/register", deps.Auth.Register)
			r.With(deps.LoginRL).Post("/login", deps.Auth.Login)
			r.Post("/refresh", deps.Auth.Refresh)
			r.Post("/logout", deps.Auth.Logout)
			r.With(deps.ResetRL).Post("/password-reset", deps.Auth.PasswordReset)
			r.With(deps.AuthMW).Get("/me", deps.Auth.Me)
		})

		// Any authenticated user may call the administration routes.
		r.Route("/users", func(r chi.Router) {
			r.Use(deps.AuthMW)

			r.Get("/", deps.Users.List)
			r.Get("/{id}", deps.Users.Detail)
			r.Put("/{id}/update", deps.Users.Update)
			r.Patch("/{id}/update", deps.Users.Update)
			r.Delete("/{id}/deactivate", deps.Users.Deactivate)
			r.Post("/bulk", deps.Users.Bulk)
		})
	})

	return r, nil
}
