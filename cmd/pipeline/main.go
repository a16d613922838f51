package main

import (
	"context"
	"flag"

	"innsync/config"
	"innsync/di"
	"innsync/internal/domains/inbound/model"
	"innsync/shared/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	var (
		id     = flag.String("id", "", "process a single inbound email by ID")
		status = flag.String("status", model.ParseStatusPending, "parse status to pick messages from")
		limit  = flag.Int("limit", 0, "maximum number of messages to process, 0 uses the configured default")
		dryRun = flag.Bool("dry-run", false, "parse and persist the payload without touching reservations")
	)

	flag.Parse()

	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	pipeline := di.InitializePipeline()

	ctx := context.Background()

	if *id != "" {
		result, err := pipeline.Process(ctx, *id, *dryRun)
		if err != nil {
			log.Fatal().Err(err).Str("id", *id).Msg("Failed to process inbound email")
		}

		log.Info().
			Str("id", result.InboundEmailID).
			Str("status", result.Status).
			Str("kind", result.Kind).
			Str("externalID", result.ExternalID).
			Msg("Inbound email processed")

		return
	}

	result, err := pipeline.ProcessBatch(ctx, *status, *limit, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to process inbound email batch")
	}

	log.Info().
		Int("total", result.Total).
		Interface("byStatus", result.ByStatus).
		Interface("byKind", result.ByKind).
		Msg("Inbound email batch processed")
}
