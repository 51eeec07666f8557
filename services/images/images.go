// Package images builds provider image URLs and responsive variant sets from
// the relative paths returned by the metadata provider.
package images

import (
	"fmt"
	"path"
	"strings"
)

const imageBaseURL = "https://image.tmdb.org/t/p"

// Role selects the size table used for an image.
type Role string

const (
	RolePoster   Role = "poster"
	RoleBackdrop Role = "backdrop"
	RoleProfile  Role = "profile"
)

type tier struct {
	size  string
	width int
}

type roleTable struct {
	tiers       []tier // small to large
	defaultSize string
	sizesAttr   string
}

var tables = map[Role]roleTable{
	RolePoster: {
		tiers:       []tier{{"w185", 185}, {"w342", 342}, {"w500", 500}},
		defaultSize: "w500",
		sizesAttr:   "(max-width: 640px) 185px, (max-width: 1024px) 342px, 500px",
	},
	RoleBackdrop: {
		tiers:       []tier{{"w300", 300}, {"w780", 780}, {"w1280", 1280}},
		defaultSize: "w780",
		sizesAttr:   "(max-width: 640px) 300px, (max-width: 1280px) 780px, 1280px",
	},
	RoleProfile: {
		tiers:       []tier{{"w45", 45}, {"w185", 185}},
		defaultSize: "w185",
		sizesAttr:   "(max-width: 640px) 45px, 185px",
	},
}

// Variant is one width-specific URL of an image.
type Variant struct {
	URL   string `json:"url"`
	Width int    `json:"width"`
}

// Resolved is the display reference for an image: the URL to use by default
// and, when a path is known, every size variant ordered small to large.
type Resolved struct {
	Default  string    `json:"default"`
	Variants []Variant `json:"variants,omitempty"`
}

// HasVariants reports whether the image resolved to provider URLs.
func (r Resolved) HasVariants() bool {
	return len(r.Variants) > 0
}

// Resolve maps a possibly absent relative path to a display reference. A nil
// or blank path yields the fallback with no variants. Unknown roles are
// treated as posters.
func Resolve(imagePath *string, role Role, fallback string) Resolved {
	if imagePath == nil {
		return Resolved{Default: fallback}
	}
	trimmed := strings.TrimSpace(*imagePath)
	if trimmed == "" {
		return Resolved{Default: fallback}
	}

	table, ok := tables[role]
	if !ok {
		table = tables[RolePoster]
	}

	variants := make([]Variant, 0, len(table.tiers))
	for _, t := range table.tiers {
		variants = append(variants, Variant{URL: buildURL(trimmed, t.size), Width: t.width})
	}

	return Resolved{
		Default:  buildURL(trimmed, table.defaultSize),
		Variants: variants,
	}
}

// URL returns the single default-size URL for a path, or "" when absent.
func URL(imagePath *string, role Role) string {
	return Resolve(imagePath, role, "").Default
}

// SrcSet renders the variants as an HTML srcset attribute value.
func SrcSet(r Resolved) string {
	if len(r.Variants) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.Variants))
	for _, v := range r.Variants {
		parts = append(parts, fmt.Sprintf("%s %dw", v.URL, v.Width))
	}
	return strings.Join(parts, ", ")
}

// SizesAttr returns the responsive sizes hint paired with a role's srcset.
func SizesAttr(role Role) string {
	if table, ok := tables[role]; ok {
		return table.sizesAttr
	}
	return tables[RolePoster].sizesAttr
}

func buildURL(imagePath, size string) string {
	return fmt.Sprintf("%s/%s", imageBaseURL, path.Join(size, strings.TrimPrefix(imagePath, "/")))
}
