package api

import (
	"net/http"
	"time"

	"github.com/Aniketv10/E-Commerce-Back-End/internal/api/handler"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/app/service"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/common/security"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/domain/repository"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	tokens *security.TokenManager,
	denylist repository.SessionDenylist,
	authService *service.AuthService,
	passwordService *service.PasswordService,
	userService *service.UserService,
	productService *service.ProductService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies the session credential when present and puts its claims in
	// context. Route groups that require auth add middleware.Authenticator
	// on top, which also consults the logout denylist.
	r.Use(jwtauth.Verifier(tokens.Auth()))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		// Auth routes (register/login/forgot/reset public, logout authed)
		authHandler := handler.NewAuthHandler(authService, passwordService, denylist)
		v1.Group(func(auth chi.Router) {
			authHandler.RegisterRoutes(auth)
		})

		// Profile routes (authenticated)
		userHandler := handler.NewUserHandler(userService, passwordService, denylist)
		v1.Group(func(profile chi.Router) {
			userHandler.RegisterRoutes(profile)
		})

		productHandler := handler.NewProductHandler(productService, denylist)

		// Catalog (public)
		v1.Route("/products", productHandler.RegisterRoutes)

		// Reviews (authenticated)
		v1.Group(func(reviews chi.Router) {
			productHandler.RegisterReviewRoutes(reviews)
		})

		// Admin routes (role gated)
		adminHandler := handler.NewAdminHandler(userService, denylist)
		v1.Route("/admin", func(admin chi.Router) {
			admin.Group(func(users chi.Router) {
				adminHandler.RegisterRoutes(users)
			})
			admin.Route("/products", productHandler.RegisterAdminRoutes)
		})
	})

	return r
}
