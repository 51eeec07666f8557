package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"reelhouse/models"
)

var (
	// ErrDuplicateFavorite is returned when (user_id, movie_id) already exists.
	ErrDuplicateFavorite = errors.New("favorite already exists")
	ErrUserIDRequired    = errors.New("user id is required")
	ErrMediaIDRequired   = errors.New("media id is required")
)

// Favorite is a favorites table row.
type Favorite struct {
	ID           int64
	UserID       string
	MovieID      int64
	MediaType    models.MediaType
	Title        string
	PosterPath   *string
	BackdropPath *string
	CreatedAt    time.Time
}

// Record converts the row into its API shape.
func (f Favorite) Record() models.FavoriteRecord {
	return models.FavoriteRecord{
		ID:           f.MovieID,
		MediaType:    f.MediaType,
		Title:        f.Title,
		PosterPath:   f.PosterPath,
		BackdropPath: f.BackdropPath,
		CreatedAt:    f.CreatedAt,
	}
}

// FavoriteRepository handles favorites persistence.
type FavoriteRepository struct {
	db *sql.DB
}

func NewFavoriteRepository(db *sql.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Insert stores a favorite for the user. A second insert of the same title
// for the same user fails with ErrDuplicateFavorite.
func (r *FavoriteRepository) Insert(ctx context.Context, userID string, ref models.MediaRef) (*Favorite, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if ref.ID == 0 {
		return nil, ErrMediaIDRequired
	}
	mediaType := ref.MediaType
	if !mediaType.Valid() {
		mediaType = models.MediaTypeMovie
	}

	fav := &Favorite{
		UserID:       userID,
		MovieID:      ref.ID,
		MediaType:    mediaType,
		Title:        ref.Title,
		PosterPath:   ref.PosterPath,
		BackdropPath: ref.BackdropPath,
		CreatedAt:    time.Now().UTC(),
	}

	query := `
		INSERT INTO favorites (user_id, movie_id, media_type, title, poster_path, backdrop_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		fav.UserID, fav.MovieID, string(fav.MediaType), fav.Title,
		fav.PosterPath, fav.BackdropPath, fav.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateFavorite
		}
		return nil, fmt.Errorf("failed to insert favorite: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get favorite id: %w", err)
	}
	fav.ID = id
	return fav, nil
}

// Delete removes the user's favorite for a title. It reports whether a row
// was removed.
func (r *FavoriteRepository) Delete(ctx context.Context, userID string, movieID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND movie_id = ?`, userID, movieID)
	if err != nil {
		return false, fmt.Errorf("failed to delete favorite: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// Exists reports whether the user has favorited the title.
func (r *FavoriteRepository) Exists(ctx context.Context, userID string, movieID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM favorites WHERE user_id = ? AND movie_id = ? LIMIT 1`, userID, movieID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query favorite: %w", err)
	}
	return true, nil
}

// ListByUser returns the user's favorites, most recently added first.
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string) ([]Favorite, error) {
	query := `
		SELECT id, user_id, movie_id, media_type, title, poster_path, backdrop_path, created_at
		FROM favorites
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	favorites := make([]Favorite, 0)
	for rows.Next() {
		var (
			fav          Favorite
			mediaType    string
			posterPath   sql.NullString
			backdropPath sql.NullString
		)
		if err := rows.Scan(&fav.ID, &fav.UserID, &fav.MovieID, &mediaType, &fav.Title,
			&posterPath, &backdropPath, &fav.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		fav.MediaType = models.MediaType(mediaType)
		if posterPath.Valid {
			fav.PosterPath = &posterPath.String
		}
		if backdropPath.Valid {
			fav.BackdropPath = &backdropPath.String
		}
		favorites = append(favorites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorites: %w", err)
	}
	return favorites, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
