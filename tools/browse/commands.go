package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelhouse/models"
	"reelhouse/services/credits"
	"reelhouse/services/discovery"
	"reelhouse/services/favorites"
	"reelhouse/services/images"
)

var errSignedOut = errors.New("not signed in; run `browse login` first")

// newRootCommand builds the CLI. Fields of opts not bound to flags (fs,
// random, httpc) are passed through to the app.
func newRootCommand(out io.Writer, opts appOptions) *cobra.Command {
	var a *app

	root := &cobra.Command{
		Use:           "browse",
		Short:         "Browse movies and TV shows from a reelhouse server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp(out, opts)
			return err
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.serverURL, "server", "http://localhost:7777", "reelhouse server URL")
	root.PersistentFlags().StringVar(&opts.statePath, "state", defaultStatePath(), "local state file (session and recently viewed)")

	// Subcommands resolve the app lazily because PersistentPreRunE builds it.
	get := func() *app { return a }

	root.AddCommand(
		newRowsCommand(get),
		newSearchCommand(get),
		newShowCommand(get),
		newPersonCommand(get),
		newFavCommand(get),
		newFavoritesCommand(get),
		newRecentCommand(get),
		newAuthCommand(get, "signup", "Create an account and sign in"),
		newAuthCommand(get, "login", "Sign in"),
		newLogoutCommand(get),
		newWhoamiCommand(get),
	)
	return root
}

func parseTitleArgs(args []string) (models.MediaType, int64, error) {
	mediaType := models.MediaType(strings.ToLower(args[0]))
	if !mediaType.Valid() {
		return "", 0, fmt.Errorf("media type must be movie or tv, got %q", args[0])
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("invalid id %q", args[1])
	}
	return mediaType, id, nil
}

func newRowsCommand(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rows [row]",
		Short: "List home rows, or show the titles of one row",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if len(args) == 0 {
				for _, row := range discovery.DefaultRows {
					fmt.Fprintf(a.out, "  %-16s %s\n", row.Key, row.Title)
				}
				return nil
			}

			row, ok := discovery.RowByKey(args[0])
			if !ok {
				return fmt.Errorf("unknown row %q", args[0])
			}
			results, err := a.discovery.FetchRow(cmd.Context(), row)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s (page %d)\n", row.Title, results.Page)
			printItems(a.out, results.Results, models.MediaTypeMovie)
			return nil
		},
	}
}

func newSearchCommand(get func() *app) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search movies, shows and people",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			resp, err := a.discovery.Search(cmd.Context(), strings.Join(args, " "), page)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d results (page %d of %d)\n", resp.TotalResults, resp.Page, resp.TotalPages)
			for _, r := range resp.Results {
				title, path, role := r.Title, r.PosterPath, images.RolePoster
				if title == "" {
					title = r.Name
				}
				if r.MediaType == "person" {
					path, role = r.ProfilePath, images.RoleProfile
				}
				img := images.Resolve(path, role, "-")
				fmt.Fprintf(a.out, "  %-8d %-6s %s  %s\n", r.ID, r.MediaType, title, img.Default)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "results page")
	return cmd
}

func newShowCommand(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <movie|tv> <id>",
		Short: "Open a title page and record it as recently viewed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaType, id, err := parseTitleArgs(args)
			if err != nil {
				return err
			}
			a := get()
			bundle, err := a.details.Load(cmd.Context(), a.userID(), mediaType, id)
			if err != nil {
				return err
			}
			printBundle(a.out, bundle)
			return nil
		},
	}
}

func newPersonCommand(get func() *app) *cobra.Command {
	var mode, year, query string
	cmd := &cobra.Command{
		Use:   "person <id>",
		Short: "Show a person and their filmography",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid id %q", args[0])
			}
			a := get()
			person, err := a.discovery.Person(cmd.Context(), id)
			if err != nil {
				return err
			}
			cast, err := a.discovery.PersonCredits(cmd.Context(), id)
			if err != nil {
				return err
			}

			filter := credits.NewFilter()
			filter.SetMode(models.ParseMediaType(mode))
			filter.SetYear(year)
			filter.SetQuery(query)

			printPerson(a.out, person)
			printCredits(a.out, filter, cast)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(models.MediaTypeMovie), "credit type: movie or tv")
	cmd.Flags().StringVar(&year, "year", credits.AllYears, "release year or \"all\"")
	cmd.Flags().StringVar(&query, "query", "", "filter by title or character")
	return cmd
}

func newFavCommand(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fav <movie|tv> <id>",
		Short: "Add a title to favorites, or remove it if already there",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaType, id, err := parseTitleArgs(args)
			if err != nil {
				return err
			}
			a := get()
			userID := a.userID()
			if userID == "" {
				printNotice(a.out, favorites.Outcome{Result: favorites.OutcomeSkipped})
				return nil
			}

			ref, err := snapshot(cmd.Context(), a, mediaType, id)
			if err != nil {
				return err
			}
			current, err := a.favorites.IsFavorited(cmd.Context(), userID, id)
			if err != nil {
				return err
			}
			printNotice(a.out, a.favorites.Toggle(cmd.Context(), userID, current, &ref))
			return nil
		},
	}
}

// snapshot fetches the display fields stored alongside a favorite.
func snapshot(ctx context.Context, a *app, mediaType models.MediaType, id int64) (models.MediaRef, error) {
	if mediaType == models.MediaTypeTV {
		tv, err := a.discovery.TvDetail(ctx, id)
		if err != nil {
			return models.MediaRef{}, err
		}
		return tv.Ref(), nil
	}
	movie, err := a.discovery.MovieDetail(ctx, id)
	if err != nil {
		return models.MediaRef{}, err
	}
	return movie.Ref(), nil
}

func newFavoritesCommand(get func() *app) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "List your favorites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			userID := a.userID()
			if userID == "" {
				return errSignedOut
			}
			items, err := a.favorites.List(cmd.Context(), userID)
			if err != nil {
				return err
			}
			printFavorites(a.out, favorites.Page(items, page, favorites.PageSize))
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func newRecentCommand(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "List recently viewed titles, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			fmt.Fprintln(a.out, "Recently viewed")
			printRefs(a.out, a.recent.Read())
			return nil
		},
	}
}

func newAuthCommand(get func() *app, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <email> <password>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			s, err := a.authenticate(cmd.Context(), action, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Signed in as %s\n", s.Email)
			return nil
		},
	}
}

func newLogoutCommand(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := a.logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			s, ok := a.session()
			if !ok {
				fmt.Fprintln(a.out, "Not signed in")
				return nil
			}
			fmt.Fprintf(a.out, "%s (%s)\n", s.Email, s.AccountID)
			return nil
		},
	}
}
