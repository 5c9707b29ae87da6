package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/customer-registry-service/internal/config"
	"github.com/sangkips/customer-registry-service/internal/db"
	"github.com/sangkips/customer-registry-service/internal/domains/customers"
	"github.com/sangkips/customer-registry-service/internal/handlers"
	"github.com/sangkips/customer-registry-service/internal/health"
	"github.com/sangkips/customer-registry-service/internal/queue"
	"github.com/sangkips/customer-registry-service/web"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	config.SetupLogger(cfg)

	db, err := db.ConnectAndMigrate(cfg.DBURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	var (
		events customers.EventPublisher = queue.Discard{}
		broker health.Pinger
	)
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rabbitMQ.Close()
		events, broker = rabbitMQ, rabbitMQ
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, db, events, broker),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("env", cfg.AppEnv).Msg("server starting on :" + cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("failed to start server")
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

func newRouter(cfg *config.Config, db *sql.DB, events customers.EventPublisher, broker health.Pinger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}))

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			handlers.RespondWithError(w, http.StatusNotFound, "Rota não encontrada")
		})

		r.Get("/", apiIndex)

		healthHandler := health.NewHandler(db, broker)
		r.Get("/health", healthHandler.Health)

		customerHandler := customers.NewHandler(db, events, cfg.IsDevelopment())
		r.Route("/clientes", func(r chi.Router) {
			customerHandler.RegisterCustomerRoutes(r)
		})
	})

	r.Handle("/*", web.Handler())

	return r
}

func apiIndex(w http.ResponseWriter, r *http.Request) {
	handlers.RespondWithSuccess(w, http.StatusOK, "API de Cadastro de Clientes", map[string]interface{}{
		"version": health.Version,
		"endpoints": map[string]interface{}{
			"health": "GET /api/health",
			"clientes": map[string]string{
				"listar":       "GET /api/clientes",
				"buscar":       "GET /api/clientes/:id",
				"criar":        "POST /api/clientes",
				"atualizar":    "PUT /api/clientes/:id",
				"excluir":      "DELETE /api/clientes/:id",
				"restaurar":    "PATCH /api/clientes/:id/restaurar",
				"estatisticas": "GET /api/clientes/estatisticas",
			},
		},
	})
}
