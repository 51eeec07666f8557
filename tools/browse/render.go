package main

import (
	"fmt"
	"io"
	"strings"

	"reelhouse/models"
	"reelhouse/services/credits"
	"reelhouse/services/favorites"
	"reelhouse/services/images"
	"reelhouse/services/trailers"
)

const (
	noPoster   = "(no poster)"
	noBackdrop = "(no backdrop)"
	noProfile  = "(no photo)"
)

func printItems(w io.Writer, items []models.ListItem, mediaType models.MediaType) {
	if len(items) == 0 {
		fmt.Fprintln(w, "  (nothing here)")
		return
	}
	for _, item := range items {
		ref := item.Ref(mediaType)
		poster := images.Resolve(item.PosterPath, images.RolePoster, noPoster)
		fmt.Fprintf(w, "  %-8d %-5s %s  %s\n", ref.ID, ref.MediaType, ref.Title, poster.Default)
	}
}

func printRefs(w io.Writer, refs []models.MediaRef) {
	if len(refs) == 0 {
		fmt.Fprintln(w, "  (nothing here)")
		return
	}
	for _, ref := range refs {
		poster := images.Resolve(ref.PosterPath, images.RolePoster, noPoster)
		fmt.Fprintf(w, "  %-8d %-5s %s  %s\n", ref.ID, ref.MediaType, ref.Title, poster.Default)
	}
}

func printBundle(w io.Writer, b *models.DetailsBundle) {
	fmt.Fprintf(w, "%s [%s %d]\n", b.Ref.Title, b.Ref.MediaType, b.Ref.ID)

	var overview, dates string
	var rating *string
	switch {
	case b.Movie != nil:
		overview, dates, rating = b.Movie.Overview, b.Movie.ReleaseDate, b.Movie.IMDBRating
		if b.Movie.Runtime != nil {
			dates = fmt.Sprintf("%s  %d min", dates, *b.Movie.Runtime)
		}
	case b.Tv != nil:
		overview, rating = b.Tv.Overview, b.Tv.IMDBRating
		dates = fmt.Sprintf("%s to %s  %d seasons", b.Tv.FirstAirDate, b.Tv.LastAirDate, b.Tv.NumberOfSeasons)
		if len(b.Tv.CreatedBy) > 0 {
			names := make([]string, 0, len(b.Tv.CreatedBy))
			for _, c := range b.Tv.CreatedBy {
				names = append(names, c.Name)
			}
			dates += "  created by " + strings.Join(names, ", ")
		}
	}
	if dates != "" {
		fmt.Fprintf(w, "  %s\n", dates)
	}
	if rating != nil {
		fmt.Fprintf(w, "  IMDb %s/10\n", *rating)
	}
	if b.Favorited != nil {
		if *b.Favorited {
			fmt.Fprintln(w, "  ★ in your favorites")
		} else {
			fmt.Fprintln(w, "  ☆ not in your favorites")
		}
	}
	if overview != "" {
		fmt.Fprintf(w, "\n  %s\n", overview)
	}

	poster := images.Resolve(b.Ref.PosterPath, images.RolePoster, noPoster)
	backdrop := images.Resolve(b.Ref.BackdropPath, images.RoleBackdrop, noBackdrop)
	fmt.Fprintf(w, "\n  poster:   %s\n", poster.Default)
	if poster.HasVariants() {
		fmt.Fprintf(w, "  srcset:   %s\n  sizes:    %s\n", images.SrcSet(poster), images.SizesAttr(images.RolePoster))
	}
	fmt.Fprintf(w, "  backdrop: %s\n", backdrop.Default)

	if b.Trailer != nil {
		fmt.Fprintf(w, "\n  trailer:  %s (%s)\n", trailers.WatchURL(b.Trailer), b.Trailer.Name)
	}

	if len(b.Cast) > 0 {
		fmt.Fprintln(w, "\nCast")
		for _, c := range b.Cast {
			photo := images.Resolve(c.ProfilePath, images.RoleProfile, noProfile)
			fmt.Fprintf(w, "  %-8d %s as %s  %s\n", c.ID, c.Name, c.Character, photo.Default)
		}
	}

	if len(b.Recommendations) > 0 {
		fmt.Fprintln(w, "\nYou might also like")
		printItems(w, b.Recommendations, b.Ref.MediaType)
	}
}

func printPerson(w io.Writer, p *models.Person) {
	fmt.Fprintf(w, "%s [person %d]\n", p.Name, p.ID)
	if p.Birthday != nil && *p.Birthday != "" {
		born := *p.Birthday
		if p.PlaceOfBirth != nil && *p.PlaceOfBirth != "" {
			born += ", " + *p.PlaceOfBirth
		}
		fmt.Fprintf(w, "  born %s\n", born)
	}
	photo := images.Resolve(p.ProfilePath, images.RoleProfile, noProfile)
	fmt.Fprintf(w, "  photo: %s\n", photo.Default)
	if p.Biography != nil && *p.Biography != "" {
		fmt.Fprintf(w, "\n  %s\n", *p.Biography)
	}
}

func printCredits(w io.Writer, f *credits.Filter, all []models.Credit) {
	items := f.Apply(all)
	fmt.Fprintf(w, "\n%s credits (year %s", f.Mode(), f.Year())
	if q := strings.TrimSpace(f.Query()); q != "" {
		fmt.Fprintf(w, ", matching %q", q)
	}
	fmt.Fprintf(w, "): %d\n", len(items))
	fmt.Fprintf(w, "  years: %s\n", strings.Join(f.Years(all), " "))
	for i, c := range items {
		date := c.EffectiveDate()
		if date == "" {
			date = "----"
		}
		line := fmt.Sprintf("  %-10s %-8d %s", date, c.ID, credits.DisplayTitle(c))
		if c.Character != "" {
			line += " as " + c.Character
		}
		fmt.Fprintf(w, "%s  [%s]\n", line, credits.ItemKey(c, i))
	}
}

func printFavorites(w io.Writer, page favorites.PageResult[models.FavoriteRecord]) {
	fmt.Fprintf(w, "Favorites page %d of %d\n", page.Page, page.TotalPages)
	refs := make([]models.MediaRef, 0, len(page.Items))
	for _, item := range page.Items {
		refs = append(refs, item.Ref())
	}
	printRefs(w, refs)
}

func printNotice(w io.Writer, out favorites.Outcome) {
	switch out.Result {
	case favorites.OutcomeSkipped:
		fmt.Fprintln(w, "Sign in to manage favorites.")
	case favorites.OutcomeBusy:
		fmt.Fprintln(w, "A favorite update for this title is already in progress.")
	case favorites.OutcomeDiscarded:
		fmt.Fprintln(w, "Cancelled.")
	case favorites.OutcomeDone:
		if out.Notice.Title != "" {
			fmt.Fprintf(w, "%s: %s\n", out.Notice.Message, out.Notice.Title)
		} else {
			fmt.Fprintln(w, out.Notice.Message)
		}
	}
}
