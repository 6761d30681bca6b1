package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

const msgInternal = "Internal Server Error"

// failure is the flat error envelope the front end expects.
type failure struct {
	Succeeded bool   `json:"succeeded"`
	Error     string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, failure{Succeeded: false, Error: msg})
}

// writeInternal logs err and answers with the fixed 500 envelope.
func writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	logger.Error("request failed",
		slog.String("path", r.URL.Path),
		slog.String("request_id", RequestID(r.Context())),
		slog.Any("err", err),
	)
	writeFailure(w, http.StatusInternalServerError, msgInternal)
}

// decodeJSON reads a single JSON document from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return fmt.Errorf("request body larger than %d bytes", tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return errors.New("request body is empty")
		default:
			return errors.New("invalid JSON body")
		}
	}
	return nil
}
