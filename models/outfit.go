package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Outfit represents a single submitted outfit photo. The record is immutable
// once created; the only thing that changes afterwards is the arrival of its
// Feedback row.
type Outfit struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   string             `bson:"owner_id" json:"owner_id"`
	ImageKey  string             `bson:"image_key" json:"-"` // S3 object key, stored instead of an expiring URL
	ImageURL  string             `bson:"image_url" json:"image_url"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	// Feedback lives in its own collection; it is attached here for callers
	// but never persisted on the outfit document.
	Feedback *Feedback `bson:"-" json:"feedback,omitempty"`
}

// FeedbackDraft is the analyzer-produced portion of a Feedback record.
type FeedbackDraft struct {
	OverallFeedback  string   `bson:"overall_feedback" json:"overall_feedback"`
	FitAnalysis      string   `bson:"fit_analysis" json:"fit_analysis"`
	ColorAnalysis    string   `bson:"color_analysis" json:"color_analysis"`
	EventSuitability []string `bson:"event_suitability" json:"event_suitability"`
	ItemSuggestions  []string `bson:"item_suggestions" json:"item_suggestions"`
	OtherSuggestions string   `bson:"other_suggestions" json:"other_suggestions"`
	Score            float64  `bson:"score" json:"score"`
	FitScore         float64  `bson:"fit_score" json:"fit_score"`
	ColorScore       float64  `bson:"color_score" json:"color_score"`
}

// Feedback is the AI rating attached to an Outfit. At most one per outfit.
type Feedback struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OutfitID      primitive.ObjectID `bson:"outfit_id" json:"outfit_id"`
	FeedbackDraft `bson:",inline"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}
