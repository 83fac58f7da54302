// Package workflow implements the capture workflows: turning a local photo
// into a stored, AI-rated record while tolerating the backend's asynchronous
// analysis latency.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dripmax/dripmax-go/cache"
	"github.com/dripmax/dripmax-go/imageutil"
	"github.com/dripmax/dripmax-go/models"
	"github.com/dripmax/dripmax-go/storage"
	"github.com/dripmax/dripmax-go/store"
)

// OutfitWorkflow owns the submit sequence for outfit photos: compress, upload,
// create the record, poll for feedback, reconcile the cache.
type OutfitWorkflow struct {
	objects storage.ObjectStore
	outfits store.OutfitStore
	cache   *cache.Outfits
	opts    Options
}

func NewOutfitWorkflow(objects storage.ObjectStore, outfits store.OutfitStore, outfitCache *cache.Outfits, opts Options) *OutfitWorkflow {
	if outfitCache == nil {
		outfitCache = cache.NewOutfits()
	}
	return &OutfitWorkflow{
		objects: objects,
		outfits: outfits,
		cache:   outfitCache,
		opts:    opts.withDefaults(),
	}
}

// Cache exposes the session cache the workflow reconciles.
func (w *OutfitWorkflow) Cache() *cache.Outfits { return w.cache }

// Submit turns the image at localImagePath into a stored outfit record and
// waits a bounded time for its AI feedback.
//
// Feedback not arriving within the poll bound is degraded success, not
// failure: the outfit is returned with nil Feedback and the feedback can be
// fetched later. Cancelling ctx aborts upload retries and the polling loop;
// if cancellation happens after the record was created, the outfit is
// returned alongside ctx.Err() since the record already exists server-side.
func (w *OutfitWorkflow) Submit(ctx context.Context, ownerID, localImagePath string) (*models.Outfit, error) {
	info, err := os.Stat(localImagePath)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, localImagePath)
	}

	data, err := imageutil.Compress(localImagePath, w.opts.MaxImageDimension, w.opts.JPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	key := "outfits/" + uuid.NewString() + ".jpg"
	publicURL, err := uploadWithRetry(ctx, w.objects, w.opts, key, data)
	if err != nil {
		return nil, err
	}

	outfit := &models.Outfit{
		ID:        primitive.NewObjectID(),
		OwnerID:   ownerID,
		ImageKey:  key,
		ImageURL:  publicURL,
		CreatedAt: time.Now().UTC(),
	}
	if err := w.outfits.Insert(ctx, outfit); err != nil {
		return nil, &RecordCreationError{Err: err}
	}

	// Optimistic insert; an authoritative Refresh may overwrite it later.
	w.cache.Add(*outfit)
	log.Info().Str("outfit", outfit.ID.Hex()).Msg("outfit record created, waiting for feedback")

	fb, polls, found, err := pollUntil(ctx, w.opts.MaxPollAttempts, w.opts.PollInterval, w.opts.Sleep,
		func(ctx context.Context) (*models.Feedback, bool, error) {
			fb, ferr := w.outfits.GetFeedback(ctx, outfit.ID)
			return fb, fb != nil, ferr
		})
	if err != nil {
		return outfit, err
	}

	if found {
		outfit.Feedback = fb
		w.cache.SetFeedback(outfit.ID, fb)
		log.Info().Str("outfit", outfit.ID.Hex()).Int("polls", polls).Msg("feedback attached")
	} else {
		log.Info().Str("outfit", outfit.ID.Hex()).Int("polls", polls).Msg("feedback still pending, returning without it")
	}
	return outfit, nil
}

// Refresh refetches the owner's outfits and replaces the cache wholesale.
func (w *OutfitWorkflow) Refresh(ctx context.Context, ownerID string) ([]models.Outfit, error) {
	outfits, err := w.outfits.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("refresh outfits: %w", err)
	}
	w.cache.Refresh(outfits)
	return outfits, nil
}

// Delete removes an outfit record, its stored image and its cache entry.
// Deleting an id that no longer exists is a no-op.
func (w *OutfitWorkflow) Delete(ctx context.Context, id primitive.ObjectID) error {
	outfit, err := w.outfits.GetWithFeedback(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if outfit != nil && outfit.ImageKey != "" {
		if derr := w.objects.Delete(ctx, outfit.ImageKey); derr != nil {
			// The record still goes away; the orphaned object is only a cost.
			log.Warn().Err(derr).Str("key", outfit.ImageKey).Msg("failed to delete outfit image")
		}
	}

	if err := w.outfits.Delete(ctx, id); err != nil {
		return err
	}
	w.cache.Remove(id)
	return nil
}
