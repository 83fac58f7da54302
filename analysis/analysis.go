// Package analysis classifies garment photos and rates outfit photos with
// Gemini. The workflows and the feedback worker consume the two interfaces;
// tests substitute fakes.
package analysis

import (
	"context"

	"github.com/dripmax/dripmax-go/models"
)

// GarmentAnalyzer classifies a wardrobe item photo into its attributes in a
// single synchronous round trip.
type GarmentAnalyzer interface {
	Analyze(ctx context.Context, imageURL string) (*models.GarmentAttributes, error)
}

// OutfitAnalyzer produces a full outfit critique. It runs in the feedback
// worker, not in the submission path.
type OutfitAnalyzer interface {
	Rate(ctx context.Context, imageURL string) (*models.FeedbackDraft, error)
}
