package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dripmax/dripmax-go/models"
)

const (
	outfitsCollection  = "outfits"
	feedbackCollection = "feedback"
	garmentsCollection = "garments"

	connectTimeout = 10 * time.Second
)

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, nil
}

// MongoOutfits implements OutfitStore on a MongoDB database.
type MongoOutfits struct {
	outfits  *mongo.Collection
	feedback *mongo.Collection
}

var _ OutfitStore = (*MongoOutfits)(nil)

func NewMongoOutfits(db *mongo.Database) *MongoOutfits {
	return &MongoOutfits{
		outfits:  db.Collection(outfitsCollection),
		feedback: db.Collection(feedbackCollection),
	}
}

func (s *MongoOutfits) Insert(ctx context.Context, outfit *models.Outfit) error {
	if outfit.ID.IsZero() {
		outfit.ID = primitive.NewObjectID()
	}
	if _, err := s.outfits.InsertOne(ctx, outfit); err != nil {
		return fmt.Errorf("insert outfit: %w", err)
	}
	return nil
}

func (s *MongoOutfits) GetWithFeedback(ctx context.Context, id primitive.ObjectID) (*models.Outfit, error) {
	var outfit models.Outfit
	err := s.outfits.FindOne(ctx, bson.M{"_id": id}).Decode(&outfit)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get outfit %s: %w", id.Hex(), err)
	}

	fb, err := s.GetFeedback(ctx, id)
	if err != nil {
		return nil, err
	}
	outfit.Feedback = fb
	return &outfit, nil
}

func (s *MongoOutfits) GetFeedback(ctx context.Context, outfitID primitive.ObjectID) (*models.Feedback, error) {
	var fb models.Feedback
	err := s.feedback.FindOne(ctx, bson.M{"outfit_id": outfitID}).Decode(&fb)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get feedback for outfit %s: %w", outfitID.Hex(), err)
	}
	return &fb, nil
}

func (s *MongoOutfits) InsertFeedback(ctx context.Context, fb *models.Feedback) error {
	// At most one feedback row per outfit.
	existing, err := s.GetFeedback(ctx, fb.OutfitID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("insert feedback: outfit %s already has feedback", fb.OutfitID.Hex())
	}

	if fb.ID.IsZero() {
		fb.ID = primitive.NewObjectID()
	}
	if _, err := s.feedback.InsertOne(ctx, fb); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (s *MongoOutfits) ListByOwner(ctx context.Context, ownerID string) ([]models.Outfit, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.outfits.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list outfits: %w", err)
	}
	defer cur.Close(ctx)

	var outfits []models.Outfit
	if err := cur.All(ctx, &outfits); err != nil {
		return nil, fmt.Errorf("list outfits: %w", err)
	}

	for i := range outfits {
		fb, err := s.GetFeedback(ctx, outfits[i].ID)
		if err != nil {
			return nil, err
		}
		outfits[i].Feedback = fb
	}
	return outfits, nil
}

func (s *MongoOutfits) ListPendingFeedback(ctx context.Context, limit int64) ([]models.Outfit, error) {
	rated, err := s.feedback.Distinct(ctx, "outfit_id", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list pending outfits: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(limit)
	cur, err := s.outfits.Find(ctx, bson.M{"_id": bson.M{"$nin": rated}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list pending outfits: %w", err)
	}
	defer cur.Close(ctx)

	var outfits []models.Outfit
	if err := cur.All(ctx, &outfits); err != nil {
		return nil, fmt.Errorf("list pending outfits: %w", err)
	}
	return outfits, nil
}

func (s *MongoOutfits) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.feedback.DeleteMany(ctx, bson.M{"outfit_id": id}); err != nil {
		return fmt.Errorf("delete feedback for outfit %s: %w", id.Hex(), err)
	}
	// Idempotent: deleting a missing outfit is a no-op.
	if _, err := s.outfits.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete outfit %s: %w", id.Hex(), err)
	}
	return nil
}

// MongoGarments implements GarmentStore on a MongoDB database.
type MongoGarments struct {
	garments *mongo.Collection
}

var _ GarmentStore = (*MongoGarments)(nil)

func NewMongoGarments(db *mongo.Database) *MongoGarments {
	return &MongoGarments{garments: db.Collection(garmentsCollection)}
}

func (s *MongoGarments) Insert(ctx context.Context, garment *models.Garment) error {
	if garment.ID.IsZero() {
		garment.ID = primitive.NewObjectID()
	}
	if _, err := s.garments.InsertOne(ctx, garment); err != nil {
		return fmt.Errorf("insert garment: %w", err)
	}
	return nil
}

func (s *MongoGarments) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Garment, error) {
	var garment models.Garment
	err := s.garments.FindOne(ctx, bson.M{"_id": id}).Decode(&garment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get garment %s: %w", id.Hex(), err)
	}
	return &garment, nil
}

func (s *MongoGarments) ListByOwner(ctx context.Context, ownerID string) ([]models.Garment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.garments.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list garments: %w", err)
	}
	defer cur.Close(ctx)

	var garments []models.Garment
	if err := cur.All(ctx, &garments); err != nil {
		return nil, fmt.Errorf("list garments: %w", err)
	}
	return garments, nil
}

func (s *MongoGarments) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.garments.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete garment %s: %w", id.Hex(), err)
	}
	return nil
}
