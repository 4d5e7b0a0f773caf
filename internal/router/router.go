package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/GregMSThompson/wallet-api/internal/handlers"
	"github.com/GregMSThompson/wallet-api/internal/middleware"
)

// NewRouter mounts every resource. authMW verifies the bearer token and
// guards everything except health checks, signup and login.
func NewRouter(deps *handlers.Deps, authMW func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ush := handlers.NewUserHandlers(deps)
	tsh := handlers.NewTransactionHandlers(deps)
	crh := handlers.NewCardHandlers(deps)
	cth := handlers.NewCatalogHandlers(deps)
	wgh := handlers.NewWidgetHandlers(deps)
	uph := handlers.NewUploadHandlers(deps)

	r.Mount("/auth", ush.AuthRoutes(authMW))

	r.Group(func(r chi.Router) {
		r.Use(authMW)
		r.Mount("/users", ush.UserRoutes())
		r.Mount("/transactions", tsh.TransactionRoutes())
		r.Mount("/cards", crh.CardRoutes())
		r.Mount("/categories", cth.CategoryRoutes())
		r.Mount("/methods", cth.MethodRoutes())
		r.Mount("/widgets", wgh.WidgetRoutes())
		r.Mount("/uploads", uph.UploadRoutes())
	})
	return r
}
