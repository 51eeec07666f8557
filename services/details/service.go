// Package details assembles the detail page of a title from concurrent
// provider calls.
package details

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"reelhouse/models"
	"reelhouse/services/trailers"
)

// CastLimit is how many cast members a detail page shows.
const CastLimit = 8

var ErrInvalidTitle = errors.New("title id is required")

type metadataClient interface {
	MovieDetail(ctx context.Context, id int64) (*models.MovieDetail, error)
	TvDetail(ctx context.Context, id int64) (*models.TvDetail, error)
	Credits(ctx context.Context, mediaType models.MediaType, id int64) (models.CreditsResponse, error)
	Videos(ctx context.Context, mediaType models.MediaType, id int64) ([]models.VideoRef, error)
	Recommendations(ctx context.Context, mediaType models.MediaType, id int64) ([]models.ListItem, error)
}

type favoriteChecker interface {
	IsFavorited(ctx context.Context, userID string, mediaID int64) (bool, error)
}

type recentRecorder interface {
	Record(item models.MediaRef)
}

// Service loads detail bundles. favorites and recent are optional.
type Service struct {
	metadata  metadataClient
	favorites favoriteChecker
	recent    recentRecorder
}

func NewService(metadata metadataClient, favorites favoriteChecker, recent recentRecorder) *Service {
	return &Service{metadata: metadata, favorites: favorites, recent: recent}
}

// Load fetches detail, credits, videos, recommendations and favorite state in
// parallel. Only the detail call is required; the others degrade to empty
// values. A loaded title is recorded as recently viewed.
func (s *Service) Load(ctx context.Context, userID string, mediaType models.MediaType, id int64) (*models.DetailsBundle, error) {
	if id <= 0 {
		return nil, ErrInvalidTitle
	}
	if !mediaType.Valid() {
		mediaType = models.MediaTypeMovie
	}

	start := time.Now()
	bundle := &models.DetailsBundle{
		Cast:            []models.CreditPerson{},
		Recommendations: []models.ListItem{},
	}
	var (
		mu        sync.Mutex
		detailErr error
		wg        conc.WaitGroup
	)

	wg.Go(func() {
		var err error
		if mediaType == models.MediaTypeTV {
			var tv *models.TvDetail
			tv, err = s.metadata.TvDetail(ctx, id)
			if err == nil {
				mu.Lock()
				bundle.Tv = tv
				bundle.Ref = tv.Ref()
				mu.Unlock()
			}
		} else {
			var movie *models.MovieDetail
			movie, err = s.metadata.MovieDetail(ctx, id)
			if err == nil {
				mu.Lock()
				bundle.Movie = movie
				bundle.Ref = movie.Ref()
				mu.Unlock()
			}
		}
		if err != nil {
			mu.Lock()
			detailErr = err
			mu.Unlock()
		}
	})

	wg.Go(func() {
		credits, err := s.metadata.Credits(ctx, mediaType, id)
		if err != nil {
			log.Printf("[details] credits %s:%d error: %v", mediaType, id, err)
			return
		}
		cast := credits.Cast
		if len(cast) > CastLimit {
			cast = cast[:CastLimit]
		}
		mu.Lock()
		bundle.Cast = append([]models.CreditPerson(nil), cast...)
		mu.Unlock()
	})

	wg.Go(func() {
		videos, err := s.metadata.Videos(ctx, mediaType, id)
		if err != nil {
			log.Printf("[details] videos %s:%d error: %v", mediaType, id, err)
			return
		}
		trailer := trailers.Select(videos)
		mu.Lock()
		bundle.Trailer = trailer
		bundle.TrailerEmbedURL = trailers.EmbedURL(trailer)
		mu.Unlock()
	})

	wg.Go(func() {
		recs, err := s.metadata.Recommendations(ctx, mediaType, id)
		if err != nil {
			log.Printf("[details] recommendations %s:%d error: %v", mediaType, id, err)
			return
		}
		if recs == nil {
			return
		}
		mu.Lock()
		bundle.Recommendations = recs
		mu.Unlock()
	})

	if s.favorites != nil && strings.TrimSpace(userID) != "" {
		wg.Go(func() {
			favorited, err := s.favorites.IsFavorited(ctx, userID, id)
			if err != nil {
				log.Printf("[details] favorite state %s:%d error: %v", mediaType, id, err)
				return
			}
			mu.Lock()
			bundle.Favorited = &favorited
			mu.Unlock()
		})
	}

	wg.Wait()
	log.Printf("[details] bundle %s:%d assembled in %dms", mediaType, id, time.Since(start).Milliseconds())

	if detailErr != nil {
		return nil, fmt.Errorf("load %s %d: %w", mediaType, id, detailErr)
	}

	if s.recent != nil {
		s.recent.Record(bundle.Ref)
	}
	return bundle, nil
}
