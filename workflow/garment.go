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

	"github.com/dripmax/dripmax-go/analysis"
	"github.com/dripmax/dripmax-go/imageutil"
	"github.com/dripmax/dripmax-go/models"
	"github.com/dripmax/dripmax-go/storage"
	"github.com/dripmax/dripmax-go/store"
)

// GarmentWorkflow is the simpler sibling of OutfitWorkflow: the garment
// analysis endpoint answers in one round trip, so there is no polling.
type GarmentWorkflow struct {
	objects  storage.ObjectStore
	garments store.GarmentStore
	analyzer analysis.GarmentAnalyzer
	opts     Options
}

func NewGarmentWorkflow(objects storage.ObjectStore, garments store.GarmentStore, analyzer analysis.GarmentAnalyzer, opts Options) *GarmentWorkflow {
	return &GarmentWorkflow{
		objects:  objects,
		garments: garments,
		analyzer: analyzer,
		opts:     opts.withDefaults(),
	}
}

// Submit uploads a garment photo, classifies it synchronously and stores the
// complete record.
func (w *GarmentWorkflow) Submit(ctx context.Context, ownerID, localImagePath string) (*models.Garment, error) {
	info, err := os.Stat(localImagePath)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, localImagePath)
	}

	data, err := imageutil.Compress(localImagePath, w.opts.MaxImageDimension, w.opts.JPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	key := "garments/" + uuid.NewString() + ".jpg"
	publicURL, err := uploadWithRetry(ctx, w.objects, w.opts, key, data)
	if err != nil {
		return nil, err
	}

	// The analyzer fetches the image itself, so hand it a time-limited URL.
	imageURL, err := w.objects.PresignedURL(ctx, key)
	if err != nil {
		return nil, &AnalysisError{Err: err}
	}

	attrs, err := w.analyzer.Analyze(ctx, imageURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &AnalysisError{Err: err}
	}

	garment := &models.Garment{
		ID:                primitive.NewObjectID(),
		OwnerID:           ownerID,
		ImageKey:          key,
		ImageURL:          publicURL,
		GarmentAttributes: *attrs,
		CreatedAt:         time.Now().UTC(),
	}
	if err := w.garments.Insert(ctx, garment); err != nil {
		return nil, &RecordCreationError{Err: err}
	}

	log.Info().Str("garment", garment.ID.Hex()).Str("category", garment.Category).Msg("garment classified and stored")
	return garment, nil
}

// Delete removes a garment record and its stored image.
func (w *GarmentWorkflow) Delete(ctx context.Context, id primitive.ObjectID) error {
	garment, err := w.garments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	if garment.ImageKey != "" {
		if derr := w.objects.Delete(ctx, garment.ImageKey); derr != nil {
			log.Warn().Err(derr).Str("key", garment.ImageKey).Msg("failed to delete garment image")
		}
	}
	return w.garments.Delete(ctx, id)
}
