package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/api/option"

	"myScheduleAPI/handlers"
	"myScheduleAPI/middleware"
	"myScheduleAPI/services"
)

var (
	firestoreClient *firestore.Client
	storeMode       string
	scheduleService *services.ScheduleService
	authService     *services.AuthService
	sessionManager  *services.ViewSessionManager
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	apiKey := os.Getenv("FIREBASE_API_KEY")
	if apiKey == "" {
		log.Println("Warning: FIREBASE_API_KEY is not set; email/password sign-in will be unavailable")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var entryStore services.EntryStore
	var authClient *firebaseauth.Client

	app, err := newFirebaseApp(ctx)
	if err != nil {
		log.Printf("Warning: Could not initialize Firebase: %v", err)
		log.Println("Falling back to the in-memory schedule store; data will not survive a restart")
		entryStore = services.NewMemoryStore()
		storeMode = "memory"
	} else {
		firestoreClient, err = app.Firestore(ctx)
		if err != nil {
			log.Fatal("Failed to create Firestore client:", err)
		}
		authClient, err = app.Auth(ctx)
		if err != nil {
			log.Fatal("Failed to create Auth client:", err)
		}
		entryStore = services.NewFirestoreStore(firestoreClient)
		storeMode = "firestore"
		log.Println("Firebase initialized successfully")
	}

	scheduleService = services.NewScheduleService(entryStore)
	authService = services.NewAuthService(apiKey, authClient)
	sessionManager = services.NewViewSessionManager(scheduleService)

	middleware.InitPrometheus()
	middleware.RegisterViewSessionGauge(sessionManager.Count)
}

// newFirebaseApp initializes the Firebase app. It first attempts to use
// credentials from the FIREBASE_SERVICE_ACCOUNT_JSON environment variable
// (Base64 encoded). If that's not found, it falls back to a local service
// account key file.
func newFirebaseApp(ctx context.Context) (*firebase.App, error) {
	var opt option.ClientOption

	encodedCreds := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if encodedCreds != "" {
		decoded, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 firebase credentials from FIREBASE_SERVICE_ACCOUNT_JSON: %v", err)
		}
		opt = option.WithCredentialsJSON(decoded)
		log.Println("Firebase: Initializing from FIREBASE_SERVICE_ACCOUNT_JSON environment variable.")
	} else {
		localFilePath := "./serviceAccountKey.json"
		if _, err := os.Stat(localFilePath); os.IsNotExist(err) {
			return nil, fmt.Errorf("local firebase file not found: %s, and FIREBASE_SERVICE_ACCOUNT_JSON environment variable is not set", localFilePath)
		}
		opt = option.WithCredentialsFile(localFilePath)
		log.Printf("Firebase: Initializing from local file: %s.", localFilePath)
	}

	conf := &firebase.Config{ProjectID: os.Getenv("FIREBASE_PROJECT_ID")}
	return firebase.NewApp(ctx, conf, opt)
}

func main() {
	defer func() {
		if firestoreClient != nil {
			log.Println("Closing Firestore client...")
			firestoreClient.Close()
		}
	}()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	calendarHandler := handlers.NewCalendarHandler(scheduleService)
	viewSessionHandler := handlers.NewViewSessionHandler(sessionManager)

	r := mux.NewRouter()

	// The WebSocket route lives on the root router: the monitoring wrapper
	// does not implement http.Hijacker, which the upgrade needs.
	r.Handle("/api/v1/schedules/ws",
		middleware.Auth(authService)(http.HandlerFunc(viewSessionHandler.OpenSession)))

	standardRouter := r.PathPrefix("/").Subrouter()

	go middleware.CleanupVisitors()

	standardRouter.Use(middleware.RateLimitMiddleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	standardRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "healthy", "service": "schedule-api", "store": "%s"}`, storeMode)
	}).Methods("GET")

	api := standardRouter.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/signup", authHandler.SignUp).Methods("POST")
	api.HandleFunc("/auth/signin", authHandler.SignIn).Methods("POST")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(authService))

	protected.HandleFunc("/auth/signout", authHandler.SignOut).Methods("POST")

	protected.HandleFunc("/schedules", scheduleHandler.GetSchedules).Methods("GET")
	protected.HandleFunc("/schedules", scheduleHandler.CreateSchedule).Methods("POST")
	protected.HandleFunc("/schedules/upcoming", scheduleHandler.GetUpcomingSchedules).Methods("GET")
	protected.HandleFunc("/schedules/{id}", scheduleHandler.UpdateSchedule).Methods("PUT")
	protected.HandleFunc("/schedules/{id}", scheduleHandler.DeleteSchedule).Methods("DELETE")

	protected.HandleFunc("/calendar", calendarHandler.GetMonth).Methods("GET")

	// CORS configuration
	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorillaHandlers.AllowCredentials(),
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
		WriteTimeout: 10 * time.Second,
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

	// Shutdown does not touch hijacked connections; close the live view
	// sessions explicitly so their subscriptions are released.
	sessionManager.CloseAll()

	log.Println("Server shutdown complete")
}
