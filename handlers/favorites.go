package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"reelhouse/internal/auth"
	"reelhouse/internal/database"
	"reelhouse/models"
)

// uniqueViolationCode is reported alongside 409 so clients can detect duplicates.
const uniqueViolationCode = "23505"

type favoritesRepository interface {
	Insert(ctx context.Context, userID string, ref models.MediaRef) (*database.Favorite, error)
	Delete(ctx context.Context, userID string, movieID int64) (bool, error)
	Exists(ctx context.Context, userID string, movieID int64) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]database.Favorite, error)
}

var _ favoritesRepository = (*database.FavoriteRepository)(nil)

// FavoritesHandler serves the per-account favorites list. Routes sit behind
// the session middleware, which supplies the account ID.
type FavoritesHandler struct {
	Repo favoritesRepository
}

func NewFavoritesHandler(repo favoritesRepository) *FavoritesHandler {
	return &FavoritesHandler{Repo: repo}
}

// List handles GET /api/favorites, newest first.
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAccount(w, r)
	if !ok {
		return
	}

	rows, err := h.Repo.ListByUser(r.Context(), userID)
	if err != nil {
		log.Printf("[favorites] list failed for %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to load favorites")
		return
	}

	items := make([]models.FavoriteRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.Record())
	}
	writeJSON(w, http.StatusOK, items)
}

// Add handles POST /api/favorites with a media snapshot body.
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAccount(w, r)
	if !ok {
		return
	}

	var ref models.MediaRef
	if err := json.NewDecoder(r.Body).Decode(&ref); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ref.Title = strings.TrimSpace(ref.Title)
	if ref.ID <= 0 || !ref.MediaType.Valid() || ref.Title == "" {
		writeError(w, http.StatusBadRequest, "movie_id, media_type and title are required")
		return
	}

	row, err := h.Repo.Insert(r.Context(), userID, ref)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateFavorite) {
			writeJSON(w, http.StatusConflict, map[string]string{
				"error": "already in favorites",
				"code":  uniqueViolationCode,
			})
			return
		}
		log.Printf("[favorites] insert failed for %s/%d: %v", userID, ref.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to add favorite")
		return
	}

	writeJSON(w, http.StatusCreated, row.Record())
}

// Remove handles DELETE /api/favorites/{mediaID}. Removing an absent
// favorite is not an error.
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	mediaID, ok := mediaIDVar(w, r)
	if !ok {
		return
	}

	removed, err := h.Repo.Delete(r.Context(), userID, mediaID)
	if err != nil {
		log.Printf("[favorites] delete failed for %s/%d: %v", userID, mediaID, err)
		writeError(w, http.StatusInternalServerError, "failed to remove favorite")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// Status handles GET /api/favorites/{mediaID}.
func (h *FavoritesHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	mediaID, ok := mediaIDVar(w, r)
	if !ok {
		return
	}

	exists, err := h.Repo.Exists(r.Context(), userID, mediaID)
	if err != nil {
		log.Printf("[favorites] lookup failed for %s/%d: %v", userID, mediaID, err)
		writeError(w, http.StatusInternalServerError, "failed to load favorite")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"favorited": exists})
}

func requireAccount(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := auth.GetAccountID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return userID, true
}

func mediaIDVar(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["mediaID"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid media id")
		return 0, false
	}
	return id, true
}
