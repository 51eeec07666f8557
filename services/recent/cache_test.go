package recent_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelhouse/models"
	"reelhouse/services/recent"
)

func ref(id int64) models.MediaRef {
	return models.MediaRef{ID: id, MediaType: models.MediaTypeMovie, Title: fmt.Sprintf("Title %d", id)}
}

func entryIDs(entries []models.RecentEntry) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

type failingStore struct{ recent.Store }

func (failingStore) Set(string, string) error { return errors.New("quota exceeded") }

func TestReadEmptyAndCorrupt(t *testing.T) {
	store := recent.NewMemoryStore()
	cache := recent.NewCache(store)
	assert.Empty(t, cache.Read())

	require.NoError(t, store.Set(recent.StorageKey, "{not json"))
	assert.Empty(t, cache.Read())

	require.NoError(t, store.Set(recent.StorageKey, `{"movie_id": 1}`))
	assert.Empty(t, cache.Read())

	require.NoError(t, store.Set(recent.StorageKey, "null"))
	assert.NotNil(t, cache.Read())
}

func TestRecordPrependsDedupsAndTruncates(t *testing.T) {
	cache := recent.NewCache(recent.NewMemoryStore())

	for id := int64(1); id <= 10; id++ {
		cache.Record(ref(id))
	}
	assert.Equal(t, []int64{10, 9, 8, 7, 6, 5, 4, 3}, entryIDs(cache.Read()))

	cache.Record(ref(5))
	assert.Equal(t, []int64{5, 10, 9, 8, 7, 6, 4, 3}, entryIDs(cache.Read()))

	updated := ref(10)
	updated.Title = "Renamed"
	cache.Record(updated)
	got := cache.Read()
	require.Len(t, got, recent.MaxRecent)
	assert.Equal(t, "Renamed", got[0].Title)
	assert.Equal(t, []int64{10, 5, 9, 8, 7, 6, 4, 3}, entryIDs(got))
}

func TestRecordIgnoresIncompleteItems(t *testing.T) {
	cache := recent.NewCache(recent.NewMemoryStore())
	cache.Record(models.MediaRef{Title: "No id"})
	cache.Record(models.MediaRef{ID: 3, Title: "  "})
	assert.Empty(t, cache.Read())
}

func TestRecordSwallowsWriteFailure(t *testing.T) {
	cache := recent.NewCache(failingStore{recent.NewMemoryStore()})
	assert.NotPanics(t, func() { cache.Record(ref(1)) })
	assert.Empty(t, cache.Read())
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/data/local.json"

	store, err := recent.NewFileStore(fs, path)
	require.NoError(t, err)
	recent.NewCache(store).Record(ref(42))

	reopened, err := recent.NewFileStore(fs, path)
	require.NoError(t, err)
	got := recent.NewCache(reopened).Read()
	require.Len(t, got, 1)
	assert.Equal(t, int64(42), got[0].ID)

	exists, err := afero.Exists(fs, path+".tmp")
	require.NoError(t, err)
	assert.False(t, exists, "temp file should be renamed away")
}

func TestFileStoreMalformedFileStartsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/local.json", []byte("garbage"), 0o644))

	store, err := recent.NewFileStore(fs, "/data/local.json")
	require.NoError(t, err)
	_, ok, err := store.Get(recent.StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreRequiresPath(t *testing.T) {
	_, err := recent.NewFileStore(afero.NewMemMapFs(), " ")
	assert.ErrorIs(t, err, recent.ErrStorePathRequired)
}

func TestReadCapsOversizedList(t *testing.T) {
	store := recent.NewMemoryStore()
	entries := make([]models.RecentEntry, 12)
	for i := range entries {
		entries[i] = ref(int64(i + 1))
	}
	raw, err := json.Marshal(entries)
	require.NoError(t, err)
	require.NoError(t, store.Set(recent.StorageKey, string(raw)))

	got := recent.NewCache(store).Read()
	require.Len(t, got, recent.MaxRecent)
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 8}, entryIDs(got))

	// The next write also keeps the list capped.
	recent.NewCache(store).Record(ref(99))
	assert.Equal(t, []int64{99, 1, 2, 3, 4, 5, 6, 7}, entryIDs(recent.NewCache(store).Read()))
}

func TestRecordSameIDTwiceKeepsOneEntry(t *testing.T) {
	cache := recent.NewCache(recent.NewMemoryStore())
	cache.Record(ref(5))
	cache.Record(ref(5))

	got := cache.Read()
	require.Len(t, got, 1)
	assert.Equal(t, int64(5), got[0].ID)
}

func TestRecordRandomSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))

	for run := 0; run < 20; run++ {
		cache := recent.NewCache(recent.NewMemoryStore())
		for step := 0; step < 60; step++ {
			id := int64(rng.IntN(15) + 1)
			cache.Record(ref(id))

			got := cache.Read()
			require.LessOrEqual(t, len(got), recent.MaxRecent, "run %d step %d", run, step)
			require.NotEmpty(t, got)
			assert.Equal(t, id, got[0].ID, "last recorded id must lead, run %d step %d", run, step)

			seen := make(map[int64]bool, len(got))
			for _, e := range got {
				require.False(t, seen[e.ID], "duplicate id %d, run %d step %d", e.ID, run, step)
				seen[e.ID] = true
			}
		}
	}
}
