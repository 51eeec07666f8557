package credits

import "reelhouse/models"

// Filter holds the selection state of a filmography view.
type Filter struct {
	mode  models.MediaType
	year  string
	query string
}

// NewFilter starts on movies with every year shown.
func NewFilter() *Filter {
	return &Filter{mode: models.MediaTypeMovie, year: AllYears}
}

func (f *Filter) Mode() models.MediaType { return f.mode }
func (f *Filter) Year() string           { return f.year }
func (f *Filter) Query() string          { return f.query }

// SetMode switches media type. Changing the mode resets the year, since the
// available years differ per type.
func (f *Filter) SetMode(mode models.MediaType) {
	if !mode.Valid() || mode == f.mode {
		return
	}
	f.mode = mode
	f.year = AllYears
}

func (f *Filter) SetYear(year string) {
	if year == "" {
		year = AllYears
	}
	f.year = year
}

func (f *Filter) SetQuery(query string) { f.query = query }

// ClearQuery drops the free-text filter.
func (f *Filter) ClearQuery() { f.query = "" }

// Apply runs Aggregate with the current selection.
func (f *Filter) Apply(cast []models.Credit) []models.Credit {
	return Aggregate(cast, f.mode, f.year, f.query)
}

// Years lists the selectable years for the current mode.
func (f *Filter) Years(cast []models.Credit) []string {
	return Years(cast, f.mode)
}
