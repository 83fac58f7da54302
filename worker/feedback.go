// Package worker runs the analysis side of the outfit pipeline: it rates
// outfits that have no feedback yet and writes the feedback row the
// client-side polling loop is waiting for.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dripmax/dripmax-go/analysis"
	"github.com/dripmax/dripmax-go/models"
	"github.com/dripmax/dripmax-go/storage"
	"github.com/dripmax/dripmax-go/store"
)

// FeedbackWorker periodically scans for outfits without feedback, runs the
// outfit analyzer on each and persists the result. Outfits that fail to rate
// stay pending and are retried on a later scan.
type FeedbackWorker struct {
	outfits  store.OutfitStore
	objects  storage.ObjectStore
	analyzer analysis.OutfitAnalyzer
	interval time.Duration
	batch    int64
}

func New(outfits store.OutfitStore, objects storage.ObjectStore, analyzer analysis.OutfitAnalyzer, interval time.Duration, batch int64) *FeedbackWorker {
	return &FeedbackWorker{
		outfits:  outfits,
		objects:  objects,
		analyzer: analyzer,
		interval: interval,
		batch:    batch,
	}
}

// Run scans immediately, then on every tick, until the context is cancelled.
func (w *FeedbackWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.scan(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Msg("feedback scan failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *FeedbackWorker) scan(ctx context.Context) error {
	pending, err := w.outfits.ListPendingFeedback(ctx, w.batch)
	if err != nil {
		return err
	}

	for _, outfit := range pending {
		if err := w.rateOne(ctx, outfit); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Str("outfit", outfit.ID.Hex()).Msg("failed to rate outfit")
		}
	}
	return nil
}

func (w *FeedbackWorker) rateOne(ctx context.Context, outfit models.Outfit) error {
	// The row may have appeared since the scan listed this outfit.
	existing, err := w.outfits.GetFeedback(ctx, outfit.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Debug().Str("outfit", outfit.ID.Hex()).Msg("already rated, skipping")
		return nil
	}

	imageURL, err := w.objects.PresignedURL(ctx, outfit.ImageKey)
	if err != nil {
		return fmt.Errorf("presign outfit image: %w", err)
	}

	draft, err := w.analyzer.Rate(ctx, imageURL)
	if err != nil {
		return fmt.Errorf("rate outfit: %w", err)
	}

	fb := &models.Feedback{
		OutfitID:      outfit.ID,
		FeedbackDraft: *draft,
		CreatedAt:     time.Now().UTC(),
	}
	if err := w.outfits.InsertFeedback(ctx, fb); err != nil {
		return err
	}

	log.Info().Str("outfit", outfit.ID.Hex()).Float64("score", draft.Score).Msg("outfit rated")
	return nil
}
