package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GarmentAttributes holds the AI-classified attributes of a wardrobe item.
type GarmentAttributes struct {
	Category        string   `bson:"category" json:"category"`
	Type            string   `bson:"type" json:"type"`
	Brand           string   `bson:"brand" json:"brand"`
	PrimaryColor    string   `bson:"primary_color" json:"primary_color"`
	SecondaryColors []string `bson:"secondary_colors" json:"secondary_colors"`
	Pattern         string   `bson:"pattern" json:"pattern"`
	Material        string   `bson:"material" json:"material"`
	SizeRange       string   `bson:"size_range" json:"size_range"`
	FitStyle        string   `bson:"fit_style" json:"fit_style"`
	PriceRange      string   `bson:"price_range" json:"price_range"`
	Tags            []string `bson:"tags" json:"tags"`
}

// Garment represents a single wardrobe item photo plus its classified
// attributes. Unlike outfits, a garment is analyzed synchronously before the
// record is written, so it is always complete.
type Garment struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID           string             `bson:"owner_id" json:"owner_id"`
	ImageKey          string             `bson:"image_key" json:"-"`
	ImageURL          string             `bson:"image_url" json:"image_url"`
	GarmentAttributes `bson:",inline"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
}
