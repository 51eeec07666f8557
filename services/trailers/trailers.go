package trailers

import (
	"fmt"
	"net/url"
	"strings"

	"reelhouse/models"
)

const (
	siteYouTube = "YouTube"
	typeTrailer = "Trailer"
)

// Select picks the trailer to show for a title: among YouTube trailers the
// first one flagged official wins, otherwise the first trailer listed. It
// returns nil when nothing qualifies.
func Select(videos []models.VideoRef) *models.VideoRef {
	var first *models.VideoRef
	for i := range videos {
		v := &videos[i]
		if v.Site != siteYouTube || v.Type != typeTrailer {
			continue
		}
		if v.Official != nil && *v.Official {
			picked := *v
			return &picked
		}
		if first == nil {
			first = v
		}
	}
	if first == nil {
		return nil
	}
	picked := *first
	return &picked
}

// EmbedURL returns the embeddable player URL for a YouTube video.
func EmbedURL(v *models.VideoRef) string {
	if v == nil || strings.TrimSpace(v.Key) == "" {
		return ""
	}
	return fmt.Sprintf("https://www.youtube.com/embed/%s", url.PathEscape(v.Key))
}

// WatchURL returns the public watch page for a YouTube video.
func WatchURL(v *models.VideoRef) string {
	if v == nil || strings.TrimSpace(v.Key) == "" {
		return ""
	}
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", url.QueryEscape(v.Key))
}
