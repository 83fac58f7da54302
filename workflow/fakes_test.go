package workflow

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dripmax/dripmax-go/models"
	"github.com/dripmax/dripmax-go/store"
)

// sleepRecorder skips real waiting but still honors cancellation, and records
// the requested durations so tests can assert the backoff schedule.
type sleepRecorder struct {
	mu        sync.Mutex
	durations []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.durations = append(s.durations, d)
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func testOptions(sleep *sleepRecorder) Options {
	return Options{
		UploadBackoff: 10 * time.Millisecond,
		PollInterval:  time.Millisecond,
		Sleep:         sleep.sleep,
	}
}

func writeTestJPEG(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for x := 0; x < 64; x++ {
		for y := 0; y < 48; y++ {
			img.Set(x, y, color.RGBA{R: uint8(4 * x), G: uint8(5 * y), B: 96, A: 255})
		}
	}

	path := filepath.Join(t.TempDir(), "photo.jpg")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, img, nil))
	return path
}

type fakeObjectStore struct {
	mu          sync.Mutex
	failUploads int // fail this many Upload calls before succeeding
	uploads     int
	keys        []string
	deleted     []string
	presignErr  error
}

func (f *fakeObjectStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.uploads++
	if f.uploads <= f.failUploads {
		return "", errors.New("transient storage error")
	}
	f.keys = append(f.keys, key)
	return "https://cdn.test/" + key, nil
}

func (f *fakeObjectStore) PresignedURL(ctx context.Context, key string) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "https://cdn.test/signed/" + key, nil
}

func (f *fakeObjectStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeOutfitStore struct {
	mu       sync.Mutex
	inserted []*models.Outfit

	insertErr error

	// GetFeedback behavior: the first failFetches calls error, and feedback
	// appears on call number feedbackOnFetch (0 = never).
	failFetches     int
	feedbackOnFetch int
	fetches         int
	onFetch         func(n int) // hook, used to cancel contexts mid-poll

	owned   []models.Outfit
	deleted []primitive.ObjectID
}

func (f *fakeOutfitStore) Insert(ctx context.Context, outfit *models.Outfit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, outfit)
	return nil
}

func (f *fakeOutfitStore) GetFeedback(ctx context.Context, outfitID primitive.ObjectID) (*models.Feedback, error) {
	f.mu.Lock()
	f.fetches++
	n := f.fetches
	hook := f.onFetch
	f.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	if n <= f.failFetches {
		return nil, errors.New("transient fetch error")
	}
	if f.feedbackOnFetch > 0 && n >= f.feedbackOnFetch {
		return &models.Feedback{
			ID:       primitive.NewObjectID(),
			OutfitID: outfitID,
			FeedbackDraft: models.FeedbackDraft{
				OverallFeedback: "clean silhouette",
				Score:           8,
			},
		}, nil
	}
	return nil, nil
}

func (f *fakeOutfitStore) GetWithFeedback(ctx context.Context, id primitive.ObjectID) (*models.Outfit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.inserted {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeOutfitStore) InsertFeedback(ctx context.Context, fb *models.Feedback) error {
	return nil
}

func (f *fakeOutfitStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Outfit, error) {
	return f.owned, nil
}

func (f *fakeOutfitStore) ListPendingFeedback(ctx context.Context, limit int64) ([]models.Outfit, error) {
	return nil, nil
}

func (f *fakeOutfitStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	for i, o := range f.inserted {
		if o.ID == id {
			f.inserted = append(f.inserted[:i], f.inserted[i+1:]...)
			break
		}
	}
	return nil
}

type fakeGarmentStore struct {
	mu        sync.Mutex
	inserted  []*models.Garment
	insertErr error
	deleted   []primitive.ObjectID
}

func (f *fakeGarmentStore) Insert(ctx context.Context, garment *models.Garment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, garment)
	return nil
}

func (f *fakeGarmentStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Garment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.inserted {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeGarmentStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Garment, error) {
	return nil, nil
}

func (f *fakeGarmentStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	for i, g := range f.inserted {
		if g.ID == id {
			f.inserted = append(f.inserted[:i], f.inserted[i+1:]...)
			break
		}
	}
	return nil
}

type fakeAnalyzer struct {
	attrs    *models.GarmentAttributes
	err      error
	imageURL string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, imageURL string) (*models.GarmentAttributes, error) {
	f.imageURL = imageURL
	if f.err != nil {
		return nil, f.err
	}
	return f.attrs, nil
}
