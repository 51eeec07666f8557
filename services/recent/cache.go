// Package recent keeps the bounded most-recent-first list of titles a user
// has opened, persisted through a local key/value store.
package recent

import (
	"encoding/json"
	"log"
	"strings"

	"reelhouse/models"
)

const (
	// StorageKey is the fixed store key holding the serialized list.
	StorageKey = "recently_viewed"
	// MaxRecent caps the list length.
	MaxRecent = 8
)

// Cache reads and records recently viewed titles. Load and store are not
// locked together; two concurrent writers may lose one update.
type Cache struct {
	store Store
}

func NewCache(store Store) *Cache {
	return &Cache{store: store}
}

// Read returns at most MaxRecent stored entries, or an empty list if nothing
// is stored or the stored value is not a list.
func (c *Cache) Read() []models.RecentEntry {
	if c == nil || c.store == nil {
		return []models.RecentEntry{}
	}

	raw, ok, err := c.store.Get(StorageKey)
	if err != nil || !ok || strings.TrimSpace(raw) == "" {
		return []models.RecentEntry{}
	}

	var entries []models.RecentEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil || entries == nil {
		return []models.RecentEntry{}
	}
	if len(entries) > MaxRecent {
		entries = entries[:MaxRecent]
	}
	return entries
}

// Record moves item to the front of the list, dropping any earlier entry with
// the same id and truncating to MaxRecent. Items without an id or title are
// ignored. Store failures are logged and otherwise swallowed.
func (c *Cache) Record(item models.MediaRef) {
	if c == nil || c.store == nil {
		return
	}
	if item.ID == 0 || strings.TrimSpace(item.Title) == "" {
		return
	}

	existing := c.Read()
	next := make([]models.RecentEntry, 0, MaxRecent)
	next = append(next, item)
	for _, entry := range existing {
		if len(next) == MaxRecent {
			break
		}
		if entry.ID == item.ID {
			continue
		}
		next = append(next, entry)
	}

	encoded, err := json.Marshal(next)
	if err != nil {
		log.Printf("[recent] failed to encode list: %v", err)
		return
	}
	if err := c.store.Set(StorageKey, string(encoded)); err != nil {
		log.Printf("[recent] failed to persist list: %v", err)
	}
}
