// The dripmax daemon runs the feedback worker: the analysis side of the
// outfit pipeline that rates submitted outfits and writes their feedback
// rows. The capture CLI lives in cmd/dripmax.
package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dripmax/dripmax-go/analysis"
	"github.com/dripmax/dripmax-go/config"
	"github.com/dripmax/dripmax-go/storage"
	"github.com/dripmax/dripmax-go/store"
	"github.com/dripmax/dripmax-go/worker"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer client.Disconnect(context.Background())

	objects, err := storage.NewS3Store(ctx, cfg.AWSRegion, cfg.AWSBucket)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create object store")
	}

	analyzer, err := analysis.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create analyzer")
	}

	outfits := store.NewMongoOutfits(client.Database(cfg.MongoDatabase))
	w := worker.New(outfits, objects, analyzer, cfg.WorkerScanInterval, cfg.WorkerBatchSize)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return w.Run(gctx)
	})

	log.Info().
		Dur("interval", cfg.WorkerScanInterval).
		Int64("batch", cfg.WorkerBatchSize).
		Msg("feedback worker started")

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("feedback worker stopped with error")
	}
	log.Info().Msg("feedback worker stopped")
}
