package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/customer-registry-service/internal/config"
	"github.com/sangkips/customer-registry-service/internal/db"
	"github.com/sangkips/customer-registry-service/internal/domains/customers"
	"github.com/sangkips/customer-registry-service/internal/domains/customers/models"
	"github.com/sangkips/customer-registry-service/internal/queue"
)

func main() {
	reset := flag.Bool("reset", false, "truncate the clientes table before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	config.SetupLogger(cfg)

	dbConn, err := db.ConnectAndMigrate(cfg.DBURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer dbConn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *reset {
		if err := models.New(dbConn).DeleteAllCustomers(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to reset clientes table")
		}
		log.Info().Msg("clientes table truncated")
	}

	svc := customers.NewService(customers.NewRepository(dbConn), queue.Discard{})

	created := 0
	for _, payload := range customers.SampleCustomers() {
		customer, err := svc.CreateCustomer(ctx, payload)
		if err != nil {
			if errors.Is(err, customers.ErrDuplicateEmail) {
				log.Info().Str("email", *payload.Email).Msg("customer already present, skipping")
				continue
			}
			log.Fatal().Err(err).Str("email", *payload.Email).Msg("failed to seed customer")
		}
		created++
		log.Info().Int32("customer_id", customer.ID).Str("nome", customer.Nome).Msg("customer created")
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read customer stats")
	}

	log.Info().
		Int("created", created).
		Int64("total", stats.Total).
		Int64("ativos", stats.Ativos).
		Int64("inativos", stats.Inativos).
		Msg("seeding complete")
}
