package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"bank-wallet/internal/config"
	"bank-wallet/internal/credentials"
	"bank-wallet/internal/domain"
	"bank-wallet/internal/handler"
	"bank-wallet/internal/identifier"
	"bank-wallet/internal/middleware"
	"bank-wallet/internal/repository"
	"bank-wallet/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router  *mux.Router
	handler http.Handler
	server  *http.Server
	db      *sql.DB
	logger  *slog.Logger
	port    string
}

// NewServer wires storage, credentials, services and routes from cfg.
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	var (
		db       *sql.DB
		accounts domain.AccountRepository
	)

	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("Using in-memory account storage; data is lost on restart")
		accounts = repository.NewMemoryStore(logger)
	default:
		var err error
		db, err = repository.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("Successfully connected to database", "driver", cfg.DBDriver)

		if cfg.RunMigrations {
			if err := repository.Migrate(ctx, db, logger); err != nil {
				db.Close()
				return nil, err
			}
		}
		accounts = repository.NewStore(db, logger)
	}

	hasher := credentials.NewPasswordHasher(cfg.BcryptCost)
	tokens := credentials.NewTokenManager(cfg.AuthSecret, cfg.AuthExpires, cfg.AuthNotBefore)

	// Initialize services
	accountService := service.NewAccountService(accounts, hasher, tokens, identifier.NewGenerator(), logger)
	transferService := service.NewTransferService(accounts, logger)

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(accountService, logger)
	transferHandler := handler.NewTransferHandler(transferService, logger)

	router := mux.NewRouter()
	router.Use(middleware.Logging(logger))

	users := router.PathPrefix("/users").Subrouter()
	users.HandleFunc("/register", accountHandler.Register).Methods(http.MethodPost)
	users.HandleFunc("/login", accountHandler.Login).Methods(http.MethodPost)

	protected := users.NewRoute().Subrouter()
	protected.Use(middleware.RequireSession(tokens, handler.ErrorWriter(logger)))
	protected.HandleFunc("/me", accountHandler.Me).Methods(http.MethodGet)
	protected.HandleFunc("/send-to-wallet", transferHandler.SendToWallet).Methods(http.MethodPut)
	protected.HandleFunc("/send-to-bank", transferHandler.SendToBank).Methods(http.MethodPut)

	router.HandleFunc("/health", healthHandler(accounts)).Methods(http.MethodGet)

	// CORS wraps the router so preflight requests are answered before route
	// method matching.
	h := cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	})(router)

	return &Server{
		router:  router,
		handler: h,
		db:      db,
		logger:  logger,
	}, nil
}

func healthHandler(accounts domain.AccountRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if err := accounts.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "error": "storage unavailable"})
			return
		}

		json.NewEncoder(w).Encode(map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port string) (string, error) {
	// Create listener first to get actual port
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return "", err
	}

	// Get the actual port being used
	addr := listener.Addr().(*net.TCPAddr)
	s.port = strconv.Itoa(addr.Port)

	s.server = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server", "port", s.port)

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Server failed", "error", err)
		}
	}()

	return s.port, nil
}

// Stop drains in-flight requests, then closes the database.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}

	if s.db != nil {
		s.db.Close()
	}
	return err
}

// GetPort returns the port the server is listening on
func (s *Server) GetPort() string {
	return s.port
}

// GetBaseURL returns the base URL for the server
func (s *Server) GetBaseURL() string {
	return "http://localhost:" + s.port
}

// Handler returns the full handler chain, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// StartServer builds the server from cfg and starts listening on cfg.ServerPort.
func StartServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, string, error) {
	server, err := NewServer(ctx, cfg, logger)
	if err != nil {
		return nil, "", err
	}

	port, err := server.Start(cfg.ServerPort)
	if err != nil {
		server.Stop(ctx)
		return nil, "", err
	}

	return server, port, nil
}
