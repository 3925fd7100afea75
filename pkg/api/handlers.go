package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/http"

	"fastroute/pkg/routing"
)

const maxRequestBody = 1024

// Handlers serves the JSON API on top of a route engine.
type Handlers struct {
	router routing.Router
	stats  StatsResponse
}

func NewHandlers(router routing.Router, stats StatsResponse) *Handlers {
	return &Handlers{router: router, stats: stats}
}

// HandleRoute serves POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}
	if field := badCoordinate(req); field != "" {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", field)
		return
	}

	result, err := h.router.Route(r.Context(),
		routing.LatLng{Lat: req.Start.Lat, Lng: req.Start.Lng},
		routing.LatLng{Lat: req.End.Lat, Lng: req.End.Lng},
	)
	if err != nil {
		status, code := routeErrorStatus(err)
		writeError(w, status, code, "")
		return
	}

	writeJSON(w, routeResponse(result))
}

// HandleHealth serves GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, HealthResponse{Status: "ok"})
}

// HandleStats serves GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.stats)
}

// badCoordinate returns the name of the first invalid endpoint, or "".
func badCoordinate(req RouteRequest) string {
	if !validCoordinate(req.Start) {
		return "start"
	}
	if !validCoordinate(req.End) {
		return "end"
	}
	return ""
}

func validCoordinate(c Coordinate) bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

func routeErrorStatus(err error) (status int, code string) {
	switch {
	case errors.Is(err, routing.ErrPointTooFar):
		return http.StatusUnprocessableEntity, "point_too_far_from_road"
	case errors.Is(err, routing.ErrNoRoute):
		return http.StatusNotFound, "no_route_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request_timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func routeResponse(result *routing.RouteResult) RouteResponse {
	resp := RouteResponse{TotalDistanceMeters: result.TotalDistanceMeters}
	for _, seg := range result.Segments {
		geom := make([]Coordinate, len(seg.Geometry))
		for i, p := range seg.Geometry {
			geom[i] = Coordinate{Lat: p.Lat, Lng: p.Lng}
		}
		resp.Segments = append(resp.Segments, RouteSegment{
			DistanceMeters: seg.DistanceMeters,
			Geometry:       geom,
		})
	}
	return resp
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorBody{Error: code, Field: field})
}
