package app

import (
	"strconv"
	"strings"

	"culture_hotspots/internal/domain"
	"culture_hotspots/internal/geo"
)

// noneSentinel is how the CSV export spells SQL NULL.
const noneSentinel = "None"

// Sanitize trims v and collapses blanks and the "None" sentinel to nil.
func Sanitize(v string) *string {
	s := strings.TrimSpace(v)
	if s == "" || strings.EqualFold(s, noneSentinel) {
		return nil
	}
	return &s
}

// Field returns the sanitized value of column name, or nil when the column
// is missing or holds no value.
func Field(row domain.RawRow, name string) *string {
	v, ok := row[name]
	if !ok {
		return nil
	}
	return Sanitize(v)
}

/********** column table (single source of truth) **********/

type setter func(h *domain.Hotspot, v *string)

// columns maps a lower-cased CSV header to the Hotspot field it fills.
var columns = map[string]setter{
	"_id": func(h *domain.Hotspot, v *string) {
		if v != nil {
			h.ID = *v
		}
	},
	"sitename":                func(h *domain.Hotspot, v *string) { h.Name = v },
	"address":                 func(h *domain.Hotspot, v *string) { h.Address = v },
	"tourtype":                func(h *domain.Hotspot, v *string) { h.Type = v },
	"description":             func(h *domain.Hotspot, v *string) { h.Description = v },
	"imageurl":                func(h *domain.Hotspot, v *string) { h.ImageURL = v },
	"geometry":                func(h *domain.Hotspot, v *string) { h.Geometry = v },
	"loopsguide":              func(h *domain.Hotspot, v *string) { h.LoopsGuide = v },
	"loop":                    func(h *domain.Hotspot, v *string) { h.Loop = v },
	"tournum":                 func(h *domain.Hotspot, v *string) { h.TourNum = v },
	"ordernum":                func(h *domain.Hotspot, v *string) { h.OrderNum = v },
	"looptourname":            func(h *domain.Hotspot, v *string) { h.LoopTourName = v },
	"looptoururl":             func(h *domain.Hotspot, v *string) { h.LoopTourURL = v },
	"tourlabel":               func(h *domain.Hotspot, v *string) { h.TourLabel = v },
	"neighbourhood":           func(h *domain.Hotspot, v *string) { h.Neighbourhood = v },
	"duration":                func(h *domain.Hotspot, v *string) { h.Duration = v },
	"entrytype":               func(h *domain.Hotspot, v *string) { h.EntryType = v },
	"interests":               func(h *domain.Hotspot, v *string) { h.Interests = v },
	"directionstransit":       func(h *domain.Hotspot, v *string) { h.DirectionsTransit = v },
	"directionscar":           func(h *domain.Hotspot, v *string) { h.DirectionsCar = v },
	"externallink":            func(h *domain.Hotspot, v *string) { h.ExternalLink = v },
	"imagecredit":             func(h *domain.Hotspot, v *string) { h.ImageCredit = v },
	"imagecreditexternallink": func(h *domain.Hotspot, v *string) { h.ImageCreditExternalLink = v },
	"imagealttext":            func(h *domain.Hotspot, v *string) { h.ImageAltText = v },
	"thumburl":                func(h *domain.Hotspot, v *string) { h.ThumbURL = v },
	"imageorientation":        func(h *domain.Hotspot, v *string) { h.ImageOrientation = v },
	"objectid":                func(h *domain.Hotspot, v *string) { h.ObjectID = v },
}

// Pre-parsed coordinate columns some extracts carry next to geometry.
const (
	colLatitude  = "latitude"
	colLongitude = "longitude"
)

// mapRow builds a Hotspot from a raw CSV row. Every value passes through
// Sanitize; unknown columns land in Extras.
func mapRow(row domain.RawRow) (domain.Hotspot, error) {
	var h domain.Hotspot
	var lat, lon *string
	for col, raw := range row {
		v := Sanitize(raw)
		key := strings.ToLower(strings.TrimSpace(col))
		switch key {
		case colLatitude:
			lat = v
			continue
		case colLongitude:
			lon = v
			continue
		}
		if set, ok := columns[key]; ok {
			set(&h, v)
			continue
		}
		if v != nil {
			if h.Extras == nil {
				h.Extras = map[string]string{}
			}
			h.Extras[col] = *v
		}
	}
	if h.ID == "" {
		return domain.Hotspot{}, domain.ErrMissingID
	}
	h.Location = resolveLocation(lat, lon, h.Geometry)
	return h, nil
}

// resolveLocation prefers explicit lat/lon columns (both must parse) and
// falls back to the embedded geometry. nil means no usable coordinates.
func resolveLocation(lat, lon, geometry *string) *domain.GeometryPoint {
	if lat != nil && lon != nil {
		y, errLat := strconv.ParseFloat(*lat, 64)
		x, errLon := strconv.ParseFloat(*lon, 64)
		if errLat == nil && errLon == nil {
			return &domain.GeometryPoint{X: x, Y: y, Type: "Point"}
		}
	}
	if geometry == nil {
		return nil
	}
	if p, ok := geo.ResolveGeometry(*geometry); ok {
		return &p
	}
	return nil
}
