package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jmcleod/authbox/storage"
)

const (
	// maxAuthBodySize bounds login bodies.
	maxAuthBodySize = 4 << 10
	// maxSmallBodySize bounds plain JSON bodies (start, gps, otp, mail).
	maxSmallBodySize = 64 << 10
	// maxImageBodySize bounds base64 image payloads (face, signature, uploads).
	maxImageBodySize = 16 << 20
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Detail: msg})
}

func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "verification log not found")
	case errors.Is(err, errUnknownUser), errors.Is(err, errBadPassword):
		// Same message for both so login probes learn nothing.
		writeError(w, http.StatusUnauthorized, "invalid id or password")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeJSON reads and parses a bounded JSON body. On failure it writes the
// error response itself and returns ok=false.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, limit int64) (T, bool) {
	var v T
	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return v, false
	}
	if int64(len(body)) > limit {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return v, false
	}
	if err := json.Unmarshal(body, &v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return v, false
	}
	return v, true
}
