// Package credits derives the filmography views of a person's combined
// credits: partitioned by media type, newest first, filtered by year and by a
// free-text query.
package credits

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"reelhouse/models"
)

// AllYears disables the year filter.
const AllYears = "all"

const untitled = "Untitled"

var folder = cases.Fold()

// DisplayTitle returns the series name for tv credits and the title for
// movies, or "Untitled" when the relevant field is empty.
func DisplayTitle(c models.Credit) string {
	name := c.Title
	if c.MediaType == models.MediaTypeTV {
		name = c.Name
	}
	if name == "" {
		return untitled
	}
	return name
}

// ItemKey is a stable list key for a credit at the given position.
func ItemKey(c models.Credit, index int) string {
	suffix := c.CreditID
	if suffix == "" {
		suffix = strconv.Itoa(index)
	}
	return fmt.Sprintf("%s-%d-%s", c.MediaType, c.ID, suffix)
}

// Aggregate returns the credits of the given media type, sorted by effective
// date descending with undated credits last, restricted to dates starting
// with year (unless year is "all" or empty) and to credits whose display
// title or character contains query. The input is not modified.
func Aggregate(cast []models.Credit, mode models.MediaType, year, query string) []models.Credit {
	selected := partition(cast, mode)

	sort.SliceStable(selected, func(i, j int) bool {
		return newerFirst(selected[i].EffectiveDate(), selected[j].EffectiveDate())
	})

	if year != "" && year != AllYears {
		filtered := selected[:0]
		for _, c := range selected {
			if strings.HasPrefix(c.EffectiveDate(), year) {
				filtered = append(filtered, c)
			}
		}
		selected = filtered
	}

	needle := folder.String(strings.TrimSpace(query))
	if needle == "" {
		return selected
	}

	matched := make([]models.Credit, 0, len(selected))
	for _, c := range selected {
		if strings.Contains(folder.String(DisplayTitle(c)), needle) ||
			strings.Contains(folder.String(c.Character), needle) {
			matched = append(matched, c)
		}
	}
	return matched
}

// Years lists the distinct years present among credits of the given media
// type, newest first.
func Years(cast []models.Credit, mode models.MediaType) []string {
	seen := make(map[string]struct{})
	years := make([]string, 0)
	for _, c := range cast {
		if c.MediaType != mode {
			continue
		}
		date := c.EffectiveDate()
		if len(date) > 4 {
			date = date[:4]
		}
		if date == "" {
			continue
		}
		if _, ok := seen[date]; ok {
			continue
		}
		seen[date] = struct{}{}
		years = append(years, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years
}

func partition(cast []models.Credit, mode models.MediaType) []models.Credit {
	out := make([]models.Credit, 0, len(cast))
	for _, c := range cast {
		if c.MediaType == mode {
			out = append(out, c)
		}
	}
	return out
}

// newerFirst orders ISO dates descending; empty dates sort after dated ones.
func newerFirst(a, b string) bool {
	if a == b {
		return false
	}
	if b == "" {
		return true
	}
	if a == "" {
		return false
	}
	return a > b
}
