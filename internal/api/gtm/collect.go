package gtm

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/storefront/internal/metrics"
)

const maxCollectBytes = 1 << 20

// Collect accepts an opaque JSON event and logs it. Bodies that are empty,
// not JSON or larger than maxCollectBytes are treated as an empty object.
func (h *Handler) Collect(w http.ResponseWriter, r *http.Request) {
	metrics.CollectRequestsTotal.Inc()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCollectBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if !errors.As(err, &tooLarge) {
			log.Error().Err(err).Msg("collect: read body")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		log.Warn().Int64("limit", tooLarge.Limit).Str("remote_addr", r.RemoteAddr).
			Msg("collect: payload over limit, recorded as empty")
		body = nil
	}

	encoded := []byte("{}")
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && json.Valid(trimmed) && !bytes.Equal(trimmed, []byte("null")) {
		var compact bytes.Buffer
		if err := json.Compact(&compact, trimmed); err != nil {
			log.Error().Err(err).Msg("collect: compact payload")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		encoded = compact.Bytes()
	}

	log.Info().RawJSON("payload", encoded).Str("remote_addr", r.RemoteAddr).Msg("collect")
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
