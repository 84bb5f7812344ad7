package api

import (
	"context"
	"net/http"
	"time"

	"socialmap/api/middleware"
	"socialmap/service"

	log "github.com/sirupsen/logrus"
)

// Resolution makes two upstream calls with a mandatory pause between them
const locationRequestTimeout = 30 * time.Second

type LocationHandler struct {
	locations service.LocationService
}

func NewLocationHandler(locations service.LocationService) *LocationHandler {
	return &LocationHandler{locations: locations}
}

// SetLocationRequest carries the raw coordinates a user submitted
type SetLocationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// ListLocations returns every pin on the map
func (h *LocationHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	pins, err := h.locations.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to load locations")
		return
	}
	writeSuccess(w, pins)
}

// SetLocation resolves the submitted coordinates and moves the caller's pin there
func (h *LocationHandler) SetLocation(w http.ResponseWriter, r *http.Request) {
	uid := middleware.GetUserID(r.Context())
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req SetLocationRequest
	if err := decodeJSON(w, r, &req, 1<<10); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeError(w, http.StatusBadRequest, "lat and lng are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), locationRequestTimeout)
	defer cancel()

	pin, err := h.locations.SetLocation(ctx, uid, *req.Lat, *req.Lng)
	if err != nil {
		writeServiceError(w, r, err, "Failed to save location")
		return
	}

	log.WithFields(log.Fields{
		"uid":       uid,
		"placeName": pin.PlaceName,
	}).Info("Location set")
	writeSuccess(w, pin)
}

// RemoveLocation deletes the caller's pin; removing a missing pin succeeds
func (h *LocationHandler) RemoveLocation(w http.ResponseWriter, r *http.Request) {
	uid := middleware.GetUserID(r.Context())
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	found, err := h.locations.Remove(r.Context(), uid)
	if err != nil {
		writeServiceError(w, r, err, "Failed to remove location")
		return
	}
	writeSuccess(w, map[string]bool{"removed": found})
}
