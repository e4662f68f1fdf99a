// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/bazarino/bazarino/internal/config"
	"github.com/bazarino/bazarino/internal/domain"
	"github.com/bazarino/bazarino/internal/handlers"
	"github.com/bazarino/bazarino/internal/middleware"
	"github.com/bazarino/bazarino/internal/ratelimit"
	"github.com/bazarino/bazarino/internal/realtime"
	chatrepo "github.com/bazarino/bazarino/internal/repository/chat"
	listingrepo "github.com/bazarino/bazarino/internal/repository/listing"
	messagerepo "github.com/bazarino/bazarino/internal/repository/message"
	userrepo "github.com/bazarino/bazarino/internal/repository/user"
	"github.com/bazarino/bazarino/internal/services"
	chatservice "github.com/bazarino/bazarino/internal/services/chat"
	"github.com/bazarino/bazarino/internal/services/listing_services"
	"github.com/bazarino/bazarino/internal/services/user_services"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	cfg := config.Load()

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(&domain.User{}, &domain.Listing{}, &domain.Chat{}, &domain.ChatMessage{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	// --- Repositories ---
	userRepo := userrepo.NewGormUserRepository(db)
	listingRepo := listingrepo.NewListingRepository(db)
	chatRepo := chatrepo.NewChatRepository(db)
	messageRepo := messagerepo.NewMessageRepository(db)

	// --- Services ---
	authService := user_services.NewAuthService(userRepo, cfg.JWTSecretKey, cfg.AdminPhone, services.NewLogger("auth"))
	listingService := listing_services.NewListingService(listingRepo, services.NewLogger("listing"))
	chatService := chatservice.NewService(chatRepo, messageRepo, listingRepo, services.NewLogger("chat"))

	// --- Realtime chat core ---
	// The registry is owned here and injected; every connection handler shares it.
	registry := realtime.NewRegistry()
	relay := realtime.NewRelay(
		handlers.NewChatStore(chatRepo),
		handlers.NewMessageStore(messageRepo),
		registry,
		services.NewLogger("relay"),
	)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	listingHandler := handlers.NewListingHandler(listingService)
	chatHandler := handlers.NewChatHandler(chatService)
	wsHandler := handlers.NewWSHandler(
		registry,
		relay,
		handlers.NewJWTVerifier(authService),
		services.NewLogger("websocket"),
		cfg.WSAuthTimeout,
		cfg.WSReadTimeout,
	)

	// --- Router Setup ---
	r := mux.NewRouter()
	authMiddleware := middleware.NewJWTMiddleware(authService)

	r.Use(corsMiddleware)
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.LoggingMiddleware)

	// Brute-force protection on the credential endpoints.
	authLimiter := ratelimit.NewMemoryLimiter(ratelimit.DefaultAuthConfig())
	defer authLimiter.Close()
	limitAuth := middleware.RateLimit(authLimiter, "auth")

	// --- Public Routes ---
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK); _, _ = w.Write([]byte("OK")) }).Methods("GET")
	r.Handle("/register", limitAuth(http.HandlerFunc(authHandler.Register))).Methods("POST")
	r.Handle("/login", limitAuth(http.HandlerFunc(authHandler.Login))).Methods("POST")
	r.HandleFunc("/logout", authHandler.Logout).Methods("POST")
	r.HandleFunc("/api/listings", listingHandler.BrowseListings).Methods("GET")
	r.HandleFunc("/api/listings/{id:[0-9]+}", listingHandler.GetListing).Methods("GET")

	// WebSocket endpoint; clients authenticate with their first frame.
	r.HandleFunc("/ws", wsHandler.Serve).Methods("GET")

	// --- Protected Routes ---
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware)
	api.HandleFunc("/listings", listingHandler.CreateListing).Methods("POST")
	api.HandleFunc("/listings/{id:[0-9]+}/sold", listingHandler.MarkSold).Methods("POST")
	api.HandleFunc("/listings/{id:[0-9]+}", listingHandler.DeleteListing).Methods("DELETE")
	api.HandleFunc("/chats", chatHandler.GetUserChats).Methods("GET")
	api.HandleFunc("/chats", chatHandler.StartChat).Methods("POST")
	api.HandleFunc("/chats/{id:[0-9]+}/messages", chatHandler.GetChatMessages).Methods("GET")

	// --- Server Configuration ---
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Bazarino marketplace starting on port %s", cfg.ServerPort)

	// --- Start Server in Goroutine ---
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}
