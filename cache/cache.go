// Package cache holds the session-local list of outfits with their feedback.
// It is an explicitly owned value injected into the workflows, not ambient
// global state, so it can be tested and reasoned about in isolation.
package cache

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dripmax/dripmax-go/models"
)

// Outfits is an in-memory, most-recent-first list of outfits. A full Refresh
// is authoritative and overwrites any optimistic Add that raced it.
type Outfits struct {
	mu    sync.Mutex
	items []models.Outfit
}

func NewOutfits() *Outfits {
	return &Outfits{}
}

// Add inserts the outfit at the head of the list. An existing entry with the
// same id is replaced rather than duplicated.
func (c *Outfits) Add(outfit models.Outfit) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = removeByID(c.items, outfit.ID)
	c.items = append([]models.Outfit{outfit}, c.items...)
}

// Remove deletes the outfit by id. Removing an id that is not present is a
// no-op.
func (c *Outfits) Remove(id primitive.ObjectID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = removeByID(c.items, id)
}

// Refresh replaces the whole list with the server's view. Last writer wins.
func (c *Outfits) Refresh(outfits []models.Outfit) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make([]models.Outfit, len(outfits))
	copy(c.items, outfits)
}

// SetFeedback attaches feedback to a cached outfit. Once an outfit has
// non-nil feedback the entry is terminal: later calls cannot clear or replace
// it.
func (c *Outfits) SetFeedback(id primitive.ObjectID, fb *models.Feedback) {
	if fb == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == id {
			if c.items[i].Feedback == nil {
				c.items[i].Feedback = fb
			}
			return
		}
	}
}

// Get returns the cached outfit by id.
func (c *Outfits) Get(id primitive.ObjectID) (models.Outfit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, o := range c.items {
		if o.ID == id {
			return o, true
		}
	}
	return models.Outfit{}, false
}

// List returns a copy of the cached outfits, most recent first.
func (c *Outfits) List() []models.Outfit {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.Outfit, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Outfits) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func removeByID(items []models.Outfit, id primitive.ObjectID) []models.Outfit {
	for i := range items {
		if items[i].ID == id {
			return append(items[:i:i], items[i+1:]...)
		}
	}
	return items
}
