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

	"personachat/internal/config"
	"personachat/internal/domain"
	"personachat/internal/handlers"
	"personachat/internal/middleware"
	"personachat/internal/ratelimit"
	botrepo "personachat/internal/repository/bot"
	"personachat/internal/repository/state"
	userrepo "personachat/internal/repository/user"
	"personachat/internal/services"
	"personachat/internal/services/account"
	"personachat/internal/services/ai"
	"personachat/internal/services/convo"
	"personachat/internal/services/geo"
	"personachat/internal/services/marketplace"
	"personachat/internal/services/moderation"
	"personachat/internal/services/proxy"
	"personachat/internal/services/tools"
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
	logger := services.NewLogger("personachat")

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(&domain.User{}, &domain.Bot{}, &state.StateBlob{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	// --- Repositories ---
	users := userrepo.NewUserRepository(db)
	bots := botrepo.NewBotRepository(db)
	stateStore := state.NewStateStore(db)

	// --- Services ---
	aiConfig := ai.DefaultConfig(cfg.OpenAIAPIKey)
	aiConfig.BaseURL = cfg.OpenAIBaseURL
	aiConfig.ChatModel = cfg.ChatModel
	aiConfig.ModerationModel = cfg.ModerationModel
	provider, err := ai.NewOpenAIProvider(aiConfig)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize AI provider: %v", err)
	}

	proxyBaseURL := cfg.ProxyBaseURL
	if proxyBaseURL == "" {
		proxyBaseURL = "http://localhost:" + cfg.ServerPort
	}

	proxyService, err := proxy.NewService(proxy.DefaultConfig(), logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize tool proxy: %v", err)
	}

	executor := tools.NewExecutor(tools.NewProxyClient(proxyBaseURL), tools.NewThemeState(), logger)
	gate := moderation.NewGate(moderation.DefaultPatterns(), logger)
	locator := geo.NewProxyLocator(proxyBaseURL)

	controller, err := convo.NewController(convo.DefaultConfig(), stateStore, provider, executor, gate, locator, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize conversation controller: %v", err)
	}

	market, err := marketplace.NewService(marketplace.DefaultConfig(), bots, provider, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize marketplace service: %v", err)
	}

	accounts, err := account.NewService(users, []byte(cfg.JWTSecretKey), logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize account service: %v", err)
	}

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(accounts)
	botHandler := handlers.NewBotHandler(market, controller)
	chatHandler, err := handlers.NewChatHandler(controller, market)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize chat handler: %v", err)
	}
	proxyHandler := handlers.NewProxyHandler(proxyService)

	// --- Router Setup ---
	r := mux.NewRouter()
	authMiddleware := middleware.NewJWTMiddleware([]byte(cfg.JWTSecretKey))

	authLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultAuthConfig())
	defer authLimiter.Close()
	messageLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.MessageConfig())
	defer messageLimiter.Close()

	r.Use(corsMiddleware)
	r.Use(middleware.RecoverPanic(logger))
	r.Use(middleware.LoggingMiddleware(logger))

	// --- Public Routes ---
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	loginRoute := r.PathPrefix("/login").Subrouter()
	loginRoute.Use(middleware.RateLimitMiddleware(authLimiter, "login"))
	loginRoute.Use(middleware.AuthSuccessMiddleware(authLimiter, "login"))
	loginRoute.HandleFunc("", authHandler.Login).Methods("POST")

	registerRoute := r.PathPrefix("/register").Subrouter()
	registerRoute.Use(middleware.RateLimitMiddleware(authLimiter, "register"))
	registerRoute.HandleFunc("", authHandler.Register).Methods("POST")

	r.HandleFunc("/logout", authHandler.Logout).Methods("POST")

	// Tool endpoints the conversation loop calls back into.
	proxyHandler.RegisterRoutes(r)

	// --- Protected Routes ---
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware)
	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/profile", chatHandler.Profile).Methods("GET")

	api.HandleFunc("/bots", botHandler.Create).Methods("POST")
	api.HandleFunc("/bots", botHandler.ListMine).Methods("GET")
	api.HandleFunc("/bots/marketplace", botHandler.Marketplace).Methods("GET")
	api.HandleFunc("/bots/search", botHandler.Search).Methods("GET")
	api.HandleFunc("/bots/code/{code}", botHandler.GetByShareCode).Methods("GET")
	api.HandleFunc("/bots/{id}", botHandler.Get).Methods("GET")
	api.HandleFunc("/bots/{id}", botHandler.Update).Methods("PUT")
	api.HandleFunc("/bots/{id}", botHandler.Delete).Methods("DELETE")

	api.HandleFunc("/chats", chatHandler.List).Methods("GET")
	api.HandleFunc("/chats", chatHandler.Create).Methods("POST")
	api.HandleFunc("/chats/{id}", chatHandler.Get).Methods("GET")
	api.HandleFunc("/chats/{id}", chatHandler.Delete).Methods("DELETE")

	messageRoute := api.PathPrefix("/chats/{id}/message").Subrouter()
	messageRoute.Use(middleware.RateLimitMiddleware(messageLimiter, "message"))
	messageRoute.HandleFunc("", chatHandler.SendMessage).Methods("POST")

	// --- Server Configuration ---
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("PersonaChat server starting on port %s", cfg.ServerPort)
	log.Printf("Local access: http://localhost:%s", cfg.ServerPort)

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
	log.Println("Server stopped")
}
