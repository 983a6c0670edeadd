package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/akotov/loan-service/internal/config"
	"github.com/akotov/loan-service/internal/handler"
	"github.com/akotov/loan-service/internal/integrations/centralbank"
	"github.com/akotov/loan-service/internal/middleware"
	"github.com/akotov/loan-service/internal/models"
	"github.com/akotov/loan-service/internal/repository"
	"github.com/akotov/loan-service/internal/scheduler"
	"github.com/akotov/loan-service/internal/service"
	"github.com/akotov/loan-service/internal/utils/email"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	_ = godotenv.Load()
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	sender := email.NewSender(cfg, logger)
	svc := service.NewService(repo, logger, cfg, sender)
	h := handler.NewHandler(svc, logger)
	bankClient := centralbank.NewClient(cfg, logger)

	// Background jobs
	sched, err := scheduler.New(svc, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize scheduler: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")

	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))

	// Loan-type catalog
	authRouter.HandleFunc("/loan-types", h.ListLoanTypes).Methods("GET")
	authRouter.HandleFunc("/loan-types/{id:[0-9]+}", h.GetLoanType).Methods("GET")
	authRouter.HandleFunc("/loan-types/{id:[0-9]+}/preview-emi", h.PreviewEmi).Methods("POST")

	adminRouter := authRouter.PathPrefix("/").Subrouter()
	adminRouter.Use(middleware.RequireRoles(models.RoleAdmin))
	adminRouter.HandleFunc("/loan-types", h.CreateLoanType).Methods("POST")
	adminRouter.HandleFunc("/loan-types/{id:[0-9]+}", h.UpdateLoanType).Methods("PUT")
	// Central bank key rate plus margin, as a starting point for new loan types
	adminRouter.HandleFunc("/loan-types/suggested-rate", func(w http.ResponseWriter, r *http.Request) {
		rate, err := bankClient.SuggestedRate()
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get suggested rate: %v", err), http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"suggested_rate": rate.String()})
	}).Methods("GET")

	// Applications
	authRouter.HandleFunc("/applications", h.SubmitApplication).Methods("POST")
	authRouter.HandleFunc("/applications", h.ListMyApplications).Methods("GET")
	authRouter.HandleFunc("/applications/{number}", h.GetApplication).Methods("GET")

	staffRouter := authRouter.PathPrefix("/").Subrouter()
	staffRouter.Use(middleware.RequireRoles(models.RoleManager, models.RoleAdmin))
	staffRouter.HandleFunc("/assigned-applications", h.ListAssignedApplications).Methods("GET")
	staffRouter.HandleFunc("/applications/{number}/review", h.ReviewApplication).Methods("POST")

	// Loans and payments
	authRouter.HandleFunc("/loans", h.ListLoans).Methods("GET")
	authRouter.HandleFunc("/loans/{number}/emis", h.GetDueEmis).Methods("GET")
	authRouter.HandleFunc("/loans/{number}/payments", h.MakePayment).Methods("POST")
	authRouter.HandleFunc("/loans/{number}/payments", h.ListPayments).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
