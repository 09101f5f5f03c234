package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"culture_hotspots/internal/app"
	"culture_hotspots/internal/domain"
)

const defaultRadiusKm = 5.0

type Handlers struct{ Q *app.QueryService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/api", func(r chi.Router) {
		r.Get("/cultural-hotspots", h.listHotspots)
		r.Get("/cultural-hotspots/{id}", h.getHotspot)
		r.Get("/map/points", h.mapPoints)
		r.Get("/map/points/bounds", h.pointsInBounds)
		r.Get("/map/points/nearby", h.pointsNearby)
		r.Get("/map/geojson", h.geoJSON)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeInternal(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("request failed")
	writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

// writeCached writes v as contentType with a weak ETag, answering 304 when
// the client already holds that version.
func writeCached(w http.ResponseWriter, r *http.Request, status int, contentType string, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "encode response")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func writeList[T any](w http.ResponseWriter, r *http.Request, msg string, items []T) {
	writeCached(w, r, http.StatusOK, "application/json", envelope{
		Status:   "success",
		Message:  msg,
		Data:     items,
		Metadata: &metadata{TotalCount: len(items)},
	})
}

func (h *Handlers) listHotspots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		hs  []domain.Hotspot
		err error
	)
	switch {
	case strings.TrimSpace(q.Get("q")) != "":
		hs, err = h.Q.SearchByName(r.Context(), q.Get("q"))
	case q.Get("type") != "":
		hs, err = h.Q.ByType(r.Context(), q.Get("type"))
	case q.Get("neighbourhood") != "":
		hs, err = h.Q.ByNeighbourhood(r.Context(), q.Get("neighbourhood"))
	case q.Get("interest") != "":
		hs, err = h.Q.ByInterest(r.Context(), q.Get("interest"))
	default:
		hs, err = h.Q.All(r.Context())
	}
	if errors.Is(err, domain.ErrUnknownField) {
		writeProblem(w, http.StatusBadRequest, "Invalid field", err.Error())
		return
	}
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeList(w, r, "Cultural hotspots retrieved", toDTOs(hs))
}

func (h *Handlers) getHotspot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	hs, found, err := h.Q.GetByID(r.Context(), id)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if !found {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(envelope{Status: "error", Message: "Cultural hotspot " + id + " not found"})
		return
	}
	writeCached(w, r, http.StatusOK, "application/json", envelope{
		Status: "success", Message: "Cultural hotspot retrieved", Data: toDTO(hs),
	})
}

func (h *Handlers) mapPoints(w http.ResponseWriter, r *http.Request) {
	pts, err := h.Q.MapPoints(r.Context())
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeList(w, r, "Map points retrieved", pts)
}

func (h *Handlers) pointsInBounds(w http.ResponseWriter, r *http.Request) {
	var p floatParams
	b := domain.Bounds{
		MinLat: p.required(r, "minLat"),
		MaxLat: p.required(r, "maxLat"),
		MinLon: p.required(r, "minLon"),
		MaxLon: p.required(r, "maxLon"),
	}
	if p.err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid parameters", p.err.Error())
		return
	}
	pts, err := h.Q.InBounds(r.Context(), b)
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeList(w, r, "Map points in bounds retrieved", pts)
}

func (h *Handlers) pointsNearby(w http.ResponseWriter, r *http.Request) {
	var p floatParams
	lat := p.required(r, "lat")
	lon := p.required(r, "lon")
	radius := p.optional(r, "radiusKm", defaultRadiusKm)
	if p.err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid parameters", p.err.Error())
		return
	}
	pts, err := h.Q.Nearby(r.Context(), lat, lon, radius)
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeList(w, r, "Nearby map points retrieved", pts)
}

func (h *Handlers) geoJSON(w http.ResponseWriter, r *http.Request) {
	fc, err := h.Q.GeoJSON(r.Context())
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeCached(w, r, http.StatusOK, "application/geo+json", fc)
}

// floatParams collects the first query parameter error.
type floatParams struct{ err error }

func (p *floatParams) required(r *http.Request, name string) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		p.fail(errors.New(name + " is required"))
		return 0
	}
	return p.parse(name, raw)
}

func (p *floatParams) optional(r *http.Request, name string, def float64) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	return p.parse(name, raw)
}

func (p *floatParams) parse(name, raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		p.fail(errors.New(name + " must be a number"))
		return 0
	}
	return v
}

func (p *floatParams) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}
