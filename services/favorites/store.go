// Package favorites synchronizes a user's favorite titles with the
// persistence backend and tracks the per-title toggle state.
package favorites

//go:generate mockgen -destination=mock_store_test.go -package=favorites_test reelhouse/services/favorites Store

import (
	"context"
	"errors"

	"reelhouse/models"
)

var (
	// ErrConflict reports that the title is already a favorite of the user.
	ErrConflict = errors.New("favorite already exists")
	// ErrUnauthorized reports that the store rejected the caller's identity.
	ErrUnauthorized = errors.New("not authenticated")
)

// Store is the per-user favorites backend. Add must return an error matching
// ErrConflict when (userID, ref.ID) already exists.
type Store interface {
	Add(ctx context.Context, userID string, ref models.MediaRef) error
	Remove(ctx context.Context, userID string, mediaID int64) error
	Exists(ctx context.Context, userID string, mediaID int64) (bool, error)
	List(ctx context.Context, userID string) ([]models.FavoriteRecord, error)
}
