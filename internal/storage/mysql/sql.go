package mysql

import (
	_ "embed"
	"fmt"

	"culture_hotspots/internal/storage/sqlrow"
)

//go:embed schema.sql
var schemaSQL string

// created_at is left out of the update list so a re-put keeps the first
// insertion time; seq keeps the first position.
var upsertHotspotSQL = fmt.Sprintf(`
INSERT INTO hotspots
  (%s)
VALUES
  (%s)
ON DUPLICATE KEY UPDATE
  name                       = VALUES(name),
  address                    = VALUES(address),
  type                       = VALUES(type),
  description                = VALUES(description),
  image_url                  = VALUES(image_url),
  latitude                   = VALUES(latitude),
  longitude                  = VALUES(longitude),
  geometry_type              = VALUES(geometry_type),
  geometry                   = VALUES(geometry),
  loops_guide                = VALUES(loops_guide),
  loop_name                  = VALUES(loop_name),
  tour_num                   = VALUES(tour_num),
  order_num                  = VALUES(order_num),
  loop_tour_name             = VALUES(loop_tour_name),
  loop_tour_url              = VALUES(loop_tour_url),
  tour_label                 = VALUES(tour_label),
  neighbourhood              = VALUES(neighbourhood),
  duration                   = VALUES(duration),
  entry_type                 = VALUES(entry_type),
  interests                  = VALUES(interests),
  directions_transit         = VALUES(directions_transit),
  directions_car             = VALUES(directions_car),
  external_link              = VALUES(external_link),
  image_credit               = VALUES(image_credit),
  image_credit_external_link = VALUES(image_credit_external_link),
  image_alt_text             = VALUES(image_alt_text),
  thumb_url                  = VALUES(thumb_url),
  image_orientation          = VALUES(image_orientation),
  object_id                  = VALUES(object_id),
  extras                     = VALUES(extras),
  updated_at                 = VALUES(updated_at)
`, sqlrow.SelectList, sqlrow.Placeholders())

const countSQL = `SELECT COUNT(*) FROM hotspots`

const clearSQL = `DELETE FROM hotspots`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

var (
	selectByIDSQL = `SELECT ` + sqlrow.SelectList + ` FROM hotspots WHERE id = ?`
	selectAllSQL  = `SELECT ` + sqlrow.SelectList + ` FROM hotspots ORDER BY seq`
)

// The table uses a binary collation, so = and INSTR are case-sensitive and
// LOWER() on both sides gives the case-insensitive variant.
func selectByFieldSQL(col string) string {
	return `SELECT ` + sqlrow.SelectList + ` FROM hotspots WHERE ` + col + ` = ? ORDER BY seq`
}

func selectContainingSQL(col string, caseInsensitive bool) string {
	cond := `INSTR(` + col + `, ?) > 0`
	if caseInsensitive {
		cond = `INSTR(LOWER(` + col + `), LOWER(?)) > 0`
	}
	return `SELECT ` + sqlrow.SelectList + ` FROM hotspots WHERE ` + cond + ` ORDER BY seq`
}
