package domain

import "time"

// RawRow is one CSV line keyed by header name, before sanitization.
type RawRow map[string]string

// GeometryPoint is a single lon/lat pair in GeoJSON axis order.
type GeometryPoint struct {
	X    float64 // longitude
	Y    float64 // latitude
	Type string
}

const GeometryUnknown = "Unknown"

func (p GeometryPoint) Lat() float64 { return p.Y }
func (p GeometryPoint) Lon() float64 { return p.X }

type Hotspot struct {
	ID          string
	Name        *string
	Address     *string
	Type        *string
	Description *string
	ImageURL    *string
	Location    *GeometryPoint // nil when coordinates could not be resolved
	Geometry    *string        // embedded geometry JSON as found in the source

	LoopsGuide              *string
	Loop                    *string
	TourNum                 *string
	OrderNum                *string
	LoopTourName            *string
	LoopTourURL             *string
	TourLabel               *string
	Neighbourhood           *string
	Duration                *string
	EntryType               *string
	Interests               *string
	DirectionsTransit       *string
	DirectionsCar           *string
	ExternalLink            *string
	ImageCredit             *string
	ImageCreditExternalLink *string
	ImageAltText            *string
	ThumbURL                *string
	ImageOrientation        *string
	ObjectID                *string

	Extras map[string]string // source columns outside the mapping table

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Bounds is an inclusive lat/lon rectangle.
type Bounds struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

type IngestionReport struct {
	RunID     string
	Total     int
	Succeeded int
	Failed    int
	Skipped   bool // store already populated
	Existing  int  // row count seen by the guard
}
