package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"socialmap/service"

	log "github.com/sirupsen/logrus"
)

// Response is the JSON envelope every endpoint returns
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("Failed to write response")
	}
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Error: message})
}

// serviceErrors maps domain errors to HTTP statuses; anything else is a 500
var serviceErrors = []struct {
	err     error
	status  int
	message string
}{
	{service.ErrInvalidCoordinates, http.StatusBadRequest, "Coordinates are out of range"},
	{service.ErrInvalidAvatar, http.StatusBadRequest, "Avatar must be a base64 image data URL"},
	{service.ErrPlaceNotResolved, http.StatusUnprocessableEntity, "Could not find a place for these coordinates"},
	{service.ErrAccountNotFound, http.StatusNotFound, "Account not found"},
}

// writeServiceError translates err and logs the ones we cannot explain
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	for _, e := range serviceErrors {
		if errors.Is(err, e.err) {
			writeError(w, e.status, e.message)
			return
		}
	}

	log.WithFields(log.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"error":  err,
	}).Error("Request failed")
	writeError(w, http.StatusInternalServerError, fallback)
}

// decodeJSON reads a size-capped JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
