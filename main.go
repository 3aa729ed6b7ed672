package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"daoHiveAPI/handlers"
	"daoHiveAPI/internal/store"
	"daoHiveAPI/internal/trigger"
	"daoHiveAPI/middleware"
	"daoHiveAPI/services"

	_ "net/http/pprof"
)

var (
	fsStore             *store.FirestoreStore
	challengeService    *services.ChallengeService
	leaderboardService  *services.LeaderboardService
	notificationService *services.NotificationService
	membershipService   *services.MembershipService
	dispatcher          *trigger.Dispatcher
	triggerSecret       string
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	triggerSecret = os.Getenv("TRIGGER_WEBHOOK_SECRET")
	if triggerSecret == "" {
		log.Fatal("TRIGGER_WEBHOOK_SECRET environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	fsStore, err = store.NewFirestoreStore(ctx, "./serviceAccountKey.json")
	if err != nil {
		log.Fatal("Failed to initialize Firestore:", err)
	}
	log.Println("Successfully connected to Firestore")

	notificationService = services.NewNotificationService(fsStore, os.Getenv("DISCORD_LOG_WEBHOOK_URL"))
	challengeService = services.NewChallengeService(fsStore)
	leaderboardService = services.NewLeaderboardService(fsStore)
	membershipService = services.NewMembershipService(fsStore, notificationService)
	dispatcher = services.NewTriggerDispatcher(challengeService, leaderboardService, notificationService, membershipService)

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing Firestore client...")
		fsStore.Close()
	}()

	triggerHandler := handlers.NewTriggerHandler(dispatcher, triggerSecret)
	roomHandler := handlers.NewRoomHandler(fsStore)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "daoHive-api"}`))
	}).Methods("GET")

	r.HandleFunc("/triggers/firestore", triggerHandler.HandleFirestoreEvent).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER (read side, requires auth)
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/rooms/{roomId}", roomHandler.GetRoom).Methods("GET")
	protected.HandleFunc("/rooms/{roomId}/leaderboard", roomHandler.GetLeaderboard).Methods("GET")
	protected.HandleFunc("/rooms/{roomId}/challenges", roomHandler.GetRoomChallenges).Methods("GET")
	protected.HandleFunc("/challenges/{challengeId}", roomHandler.GetChallenge).Methods("GET")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Trigger-Signature", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
