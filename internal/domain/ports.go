package domain

import (
	"context"
	"errors"
	"io"
)

var (
	ErrUnknownField = errors.New("unknown hotspot field")
	ErrMissingID    = errors.New("row has no _id")
)

// Field names a queryable hotspot attribute.
type Field string

const (
	FieldName          Field = "name"
	FieldAddress       Field = "address"
	FieldType          Field = "type"
	FieldNeighbourhood Field = "neighbourhood"
	FieldLoop          Field = "loop"
	FieldInterests     Field = "interests"
	FieldTourLabel     Field = "tour_label"
	FieldEntryType     Field = "entry_type"
)

// Fields lists every queryable field.
var Fields = []Field{
	FieldName, FieldAddress, FieldType, FieldNeighbourhood,
	FieldLoop, FieldInterests, FieldTourLabel, FieldEntryType,
}

func (f Field) Valid() bool {
	for _, k := range Fields {
		if k == f {
			return true
		}
	}
	return false
}

// Value returns the hotspot's value for f, or nil when absent.
func (f Field) Value(h Hotspot) *string {
	switch f {
	case FieldName:
		return h.Name
	case FieldAddress:
		return h.Address
	case FieldType:
		return h.Type
	case FieldNeighbourhood:
		return h.Neighbourhood
	case FieldLoop:
		return h.Loop
	case FieldInterests:
		return h.Interests
	case FieldTourLabel:
		return h.TourLabel
	case FieldEntryType:
		return h.EntryType
	}
	return nil
}

type HotspotStore interface {
	// Write paths
	Put(ctx context.Context, h Hotspot) error
	Clear(ctx context.Context) error

	// Read paths
	Count(ctx context.Context) (int, error)
	FindByID(ctx context.Context, id string) (Hotspot, bool, error)
	FindAll(ctx context.Context) ([]Hotspot, error)
	FindByField(ctx context.Context, f Field, value string) ([]Hotspot, error)
	FindByFieldContaining(ctx context.Context, f Field, substr string, caseInsensitive bool) ([]Hotspot, error)
}

// RowSource yields a CSV byte stream with a header row.
type RowSource interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
	// DelPrefix removes every key starting with prefix.
	DelPrefix(ctx context.Context, prefix string) error
}
