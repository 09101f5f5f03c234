// Package sqlrow maps Hotspot values to and from the hotspots table shared by
// the database/sql backed stores.
package sqlrow

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"culture_hotspots/internal/domain"
)

// Columns in the order used by Args and Scan.
var Columns = []string{
	"id", "name", "address", "type", "description", "image_url",
	"latitude", "longitude", "geometry_type", "geometry",
	"loops_guide", "loop_name", "tour_num", "order_num", "loop_tour_name",
	"loop_tour_url", "tour_label", "neighbourhood", "duration", "entry_type",
	"interests", "directions_transit", "directions_car", "external_link",
	"image_credit", "image_credit_external_link", "image_alt_text", "thumb_url",
	"image_orientation", "object_id", "extras", "created_at", "updated_at",
}

// SelectList is Columns joined for a SELECT clause.
var SelectList = strings.Join(Columns, ", ")

// Placeholders returns "?, ?, ..." for every column.
func Placeholders() string {
	return strings.TrimSuffix(strings.Repeat("?, ", len(Columns)), ", ")
}

var fieldColumns = map[domain.Field]string{
	domain.FieldName:          "name",
	domain.FieldAddress:       "address",
	domain.FieldType:          "type",
	domain.FieldNeighbourhood: "neighbourhood",
	domain.FieldLoop:          "loop_name",
	domain.FieldInterests:     "interests",
	domain.FieldTourLabel:     "tour_label",
	domain.FieldEntryType:     "entry_type",
}

// Column resolves f to a column name. Only whitelisted fields ever reach SQL.
func Column(f domain.Field) (string, error) {
	c, ok := fieldColumns[f]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownField, string(f))
	}
	return c, nil
}

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// Args returns the INSERT arguments for h; both timestamps are set to now
// and the upsert statements decide which one survives.
func Args(h domain.Hotspot, now time.Time) ([]any, error) {
	var lat, lon, gtype any
	if h.Location != nil {
		lat, lon, gtype = h.Location.Lat(), h.Location.Lon(), h.Location.Type
	}
	var extras any
	if len(h.Extras) > 0 {
		b, err := json.Marshal(h.Extras)
		if err != nil {
			return nil, fmt.Errorf("marshal extras for %s: %w", h.ID, err)
		}
		extras = string(b)
	}
	ts := now.UTC().UnixMicro()
	return []any{
		h.ID, valStr(h.Name), valStr(h.Address), valStr(h.Type), valStr(h.Description), valStr(h.ImageURL),
		lat, lon, gtype, valStr(h.Geometry),
		valStr(h.LoopsGuide), valStr(h.Loop), valStr(h.TourNum), valStr(h.OrderNum), valStr(h.LoopTourName),
		valStr(h.LoopTourURL), valStr(h.TourLabel), valStr(h.Neighbourhood), valStr(h.Duration), valStr(h.EntryType),
		valStr(h.Interests), valStr(h.DirectionsTransit), valStr(h.DirectionsCar), valStr(h.ExternalLink),
		valStr(h.ImageCredit), valStr(h.ImageCreditExternalLink), valStr(h.ImageAltText), valStr(h.ThumbURL),
		valStr(h.ImageOrientation), valStr(h.ObjectID), extras, ts, ts,
	}, nil
}

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Scan reads one row selected with SelectList.
func Scan(sc Scanner) (domain.Hotspot, error) {
	var h domain.Hotspot
	var (
		str      [26]sql.NullString
		lat, lon sql.NullFloat64
		gtype    sql.NullString
		extras   []byte
		created  int64
		updated  int64
	)
	// column order: id, 5 strings, lat, lon, geometry_type, 21 strings, extras, created, updated
	dest := []any{&h.ID}
	for i := 0; i < 5; i++ {
		dest = append(dest, &str[i])
	}
	dest = append(dest, &lat, &lon, &gtype)
	for i := 5; i < 26; i++ {
		dest = append(dest, &str[i])
	}
	dest = append(dest, &extras, &created, &updated)
	if err := sc.Scan(dest...); err != nil {
		return domain.Hotspot{}, err
	}

	get := func(i int) *string {
		if !str[i].Valid {
			return nil
		}
		s := str[i].String
		return &s
	}
	targets := []**string{
		&h.Name, &h.Address, &h.Type, &h.Description, &h.ImageURL,
		&h.Geometry, &h.LoopsGuide, &h.Loop, &h.TourNum, &h.OrderNum, &h.LoopTourName,
		&h.LoopTourURL, &h.TourLabel, &h.Neighbourhood, &h.Duration, &h.EntryType,
		&h.Interests, &h.DirectionsTransit, &h.DirectionsCar, &h.ExternalLink,
		&h.ImageCredit, &h.ImageCreditExternalLink, &h.ImageAltText, &h.ThumbURL,
		&h.ImageOrientation, &h.ObjectID,
	}
	for i, t := range targets {
		*t = get(i)
	}

	if lat.Valid && lon.Valid {
		typ := domain.GeometryUnknown
		if gtype.Valid {
			typ = gtype.String
		}
		h.Location = &domain.GeometryPoint{X: lon.Float64, Y: lat.Float64, Type: typ}
	}
	if len(extras) > 0 {
		if err := json.Unmarshal(extras, &h.Extras); err != nil {
			return domain.Hotspot{}, fmt.Errorf("decode extras for %s: %w", h.ID, err)
		}
	}
	h.CreatedAt = time.UnixMicro(created).UTC()
	h.UpdatedAt = time.UnixMicro(updated).UTC()
	return h, nil
}

// ScanAll drains rows, closing them.
func ScanAll(rows *sql.Rows) ([]domain.Hotspot, error) {
	defer rows.Close()
	out := make([]domain.Hotspot, 0)
	for rows.Next() {
		h, err := Scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
