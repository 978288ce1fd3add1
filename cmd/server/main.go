package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Aniketv10/E-Commerce-Back-End/internal/api"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/app/service"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/common/security"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/domain/repository"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/platform/cache"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/platform/config"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/platform/database"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/platform/mail"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	log.Println("Configuration loaded.")

	// 2. Initialize Database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()
	log.Println("Database connected.")

	// 3. Initialize Redis (session denylist)
	rdb, err := cache.Connect(cfg)
	if err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	defer rdb.Close()
	log.Println("Redis connected.")

	// 4. Initialize session tokens and mail transport
	tokens := security.NewTokenManager(cfg.JWTKey, cfg.JWTExp)
	mailer := mail.NewSMTPMailer(cfg)

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(db)
	productRepo := repository.NewPgProductRepository(db)
	denylist := repository.NewRedisSessionDenylist(rdb)

	// 6. Initialize Services
	authService := service.NewAuthService(userRepo, tokens, denylist)
	passwordService := service.NewPasswordService(userRepo, tokens, mailer, cfg.ResetTokenTTL, cfg.MailTimeout)
	userService := service.NewUserService(userRepo)
	productService := service.NewProductService(productRepo, db)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(tokens, denylist, authService, passwordService, userService, productService)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
