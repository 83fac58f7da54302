package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dripmax/dripmax-go/cache"
	"github.com/dripmax/dripmax-go/models"
)

func TestSubmitRejectsMissingFile(t *testing.T) {
	w := NewOutfitWorkflow(&fakeObjectStore{}, &fakeOutfitStore{}, nil, testOptions(&sleepRecorder{}))

	_, err := w.Submit(context.Background(), "user-1", filepath.Join(t.TempDir(), "missing.jpg"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSubmitRejectsNonImageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	w := NewOutfitWorkflow(&fakeObjectStore{}, &fakeOutfitStore{}, nil, testOptions(&sleepRecorder{}))
	_, err := w.Submit(context.Background(), "user-1", path)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSubmitAttachesFeedbackWithinBound(t *testing.T) {
	objects := &fakeObjectStore{}
	outfits := &fakeOutfitStore{feedbackOnFetch: 5}
	c := cache.NewOutfits()
	w := NewOutfitWorkflow(objects, outfits, c, testOptions(&sleepRecorder{}))

	outfit, err := w.Submit(context.Background(), "user-1", writeTestJPEG(t))
	require.NoError(t, err)
	require.NotNil(t, outfit)

	// Exactly 5 polling calls, resolved with feedback attached.
	assert.Equal(t, 5, outfits.fetches)
	require.NotNil(t, outfit.Feedback)
	assert.Equal(t, outfit.ID, outfit.Feedback.OutfitID)
	assert.InDelta(t, 8, outfit.Feedback.Score, 0.001)

	cached, ok := c.Get(outfit.ID)
	require.True(t, ok)
	assert.NotNil(t, cached.Feedback)
}

func TestSubmitDegradedSuccessWhenFeedbackNeverArrives(t *testing.T) {
	objects := &fakeObjectStore{}
	outfits := &fakeOutfitStore{feedbackOnFetch: 0}
	c := cache.NewOutfits()
	w := NewOutfitWorkflow(objects, outfits, c, testOptions(&sleepRecorder{}))

	outfit, err := w.Submit(context.Background(), "user-1", writeTestJPEG(t))

	// Exhausting the bound is degraded success, not an error.
	require.NoError(t, err)
	require.NotNil(t, outfit)
	assert.Nil(t, outfit.Feedback)
	assert.Equal(t, defaultMaxPollAttempts, outfits.fetches)
	assert.NotEmpty(t, outfit.ImageURL)

	// The record is still in the cache for the session list.
	_, ok := c.Get(outfit.ID)
	assert.True(t, ok)
}

func TestSubmitRetriesTransientUploadFailures(t *testing.T) {
	sleeps := &sleepRecorder{}
	objects := &fakeObjectStore{failUploads: 2}
	outfits := &fakeOutfitStore{feedbackOnFetch: 1}
	w := NewOutfitWorkflow(objects, outfits, nil, testOptions(sleeps))

	outfit, err := w.Submit(context.Background(), "user-1", writeTestJPEG(t))
	require.NoError(t, err)
	require.NotNil(t, outfit)

	// 2 transient failures then success: exactly 3 upload attempts with
	// linearly increasing backoff between them.
	assert.Equal(t, 3, objects.uploads)
	require.GreaterOrEqual(t, len(sleeps.durations), 2)
	assert.Equal(t, 10*time.Millisecond, sleeps.durations[0])
	assert.Equal(t, 20*time.Millisecond, sleeps.durations[1])
}

func TestSubmitFailsWithUploadErrorAfterCap(t *testing.T) {
	objects := &fakeObjectStore{failUploads: 10}
	outfits := &fakeOutfitStore{}
	w := NewOutfitWorkflow(objects, outfits, nil, testOptions(&sleepRecorder{}))

	_, err := w.Submit(context.Background(), "user-1", writeTestJPEG(t))

	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, defaultMaxUploadAttempts, uploadErr.Attempts)
	assert.Equal(t, defaultMaxUploadAttempts, objects.uploads)
	assert.Empty(t, outfits.inserted, "no record may be created when the upload failed")
}

func TestSubmitDoesNotRetryRecordCreation(t *testing.T) {
	objects := &fakeObjectStore{}
	outfits := &fakeOutfitStore{insertErr: errors.New("write refused")}
	w := NewOutfitWorkflow(objects, outfits, nil, testOptions(&sleepRecorder{}))

	_, err := w.Submit(context.Background(), "user-1", writeTestJPEG(t))

	var recordErr *RecordCreationError
	require.ErrorAs(t, err, &recordErr)
	assert.Equal(t, 0, outfits.fetches, "polling must not start when the record was never created")
}

func TestSubmitSwallowsIndividualPollFailures(t *testing.T) {
	objects := &fakeObjectStore{}
	outfits := &fakeOutfitStore{failFetches: 2, feedbackOnFetch: 4}
	w := NewOutfitWorkflow(objects, outfits, nil, testOptions(&sleepRecorder{}))

	outfit, err := w.Submit(context.Background(), "user-1", writeTestJPEG(t))
	require.NoError(t, err)
	assert.Equal(t, 4, outfits.fetches)
	assert.NotNil(t, outfit.Feedback)
}

func TestSubmitCancelledMidPollReturnsOutfitAndError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	objects := &fakeObjectStore{}
	outfits := &fakeOutfitStore{}
	outfits.onFetch = func(n int) {
		if n == 3 {
			cancel()
		}
	}
	w := NewOutfitWorkflow(objects, outfits, nil, testOptions(&sleepRecorder{}))

	outfit, err := w.Submit(ctx, "user-1", writeTestJPEG(t))
	require.ErrorIs(t, err, context.Canceled)
	// The record already exists server-side, so it is still handed back.
	require.NotNil(t, outfit)
	assert.Less(t, outfits.fetches, defaultMaxPollAttempts)
}

func TestSubmitAddsOutfitAtCacheHead(t *testing.T) {
	objects := &fakeObjectStore{}
	outfits := &fakeOutfitStore{feedbackOnFetch: 1}
	c := cache.NewOutfits()
	c.Add(models.Outfit{ID: primitive.NewObjectID(), OwnerID: "user-1", CreatedAt: time.Now().Add(-time.Hour)})
	w := NewOutfitWorkflow(objects, outfits, c, testOptions(&sleepRecorder{}))

	outfit, err := w.Submit(context.Background(), "user-1", writeTestJPEG(t))
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, outfit.ID, list[0].ID)
}

func TestRefreshIsAuthoritativeOverOptimisticAdd(t *testing.T) {
	objects := &fakeObjectStore{}
	server := []models.Outfit{{ID: primitive.NewObjectID(), OwnerID: "user-1"}}
	outfits := &fakeOutfitStore{feedbackOnFetch: 1, owned: server}
	c := cache.NewOutfits()
	w := NewOutfitWorkflow(objects, outfits, c, testOptions(&sleepRecorder{}))

	submitted, err := w.Submit(context.Background(), "user-1", writeTestJPEG(t))
	require.NoError(t, err)

	// The server list does not contain the optimistic insert; refresh wins.
	_, err = w.Refresh(context.Background(), "user-1")
	require.NoError(t, err)

	_, ok := c.Get(submitted.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestDeleteRemovesRecordImageAndCacheEntry(t *testing.T) {
	objects := &fakeObjectStore{}
	outfits := &fakeOutfitStore{feedbackOnFetch: 1}
	c := cache.NewOutfits()
	w := NewOutfitWorkflow(objects, outfits, c, testOptions(&sleepRecorder{}))

	outfit, err := w.Submit(context.Background(), "user-1", writeTestJPEG(t))
	require.NoError(t, err)

	require.NoError(t, w.Delete(context.Background(), outfit.ID))
	assert.Contains(t, objects.deleted, outfit.ImageKey)
	assert.Contains(t, outfits.deleted, outfit.ID)
	_, ok := c.Get(outfit.ID)
	assert.False(t, ok)

	// Deleting again is a no-op, not an error.
	require.NoError(t, w.Delete(context.Background(), outfit.ID))
}
