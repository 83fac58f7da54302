package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dripmax/dripmax-go/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("store: not found")

// OutfitStore persists outfits and their one-to-zero/one feedback rows.
type OutfitStore interface {
	Insert(ctx context.Context, outfit *models.Outfit) error
	// GetWithFeedback returns the outfit with its feedback attached when a
	// feedback row exists, nil Feedback otherwise.
	GetWithFeedback(ctx context.Context, id primitive.ObjectID) (*models.Outfit, error)
	// GetFeedback returns the feedback row for an outfit, or (nil, nil) when
	// none has been written yet.
	GetFeedback(ctx context.Context, outfitID primitive.ObjectID) (*models.Feedback, error)
	InsertFeedback(ctx context.Context, fb *models.Feedback) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.Outfit, error)
	// ListPendingFeedback returns the oldest outfits that have no feedback
	// row yet, up to limit.
	ListPendingFeedback(ctx context.Context, limit int64) ([]models.Outfit, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// GarmentStore persists classified wardrobe items.
type GarmentStore interface {
	Insert(ctx context.Context, garment *models.Garment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Garment, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Garment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
