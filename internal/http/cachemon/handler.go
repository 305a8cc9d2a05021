// Package cachemon exposes read-cache hit statistics for operators.
package cachemon

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dgraph-io/ristretto"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	cache *ristretto.Cache
}

func NewHandler(cache *ristretto.Cache) *Handler {
	return &Handler{cache: cache}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/stats", h.stats)
}

type statsResponse struct {
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	HitRatio  float64 `json:"hit_ratio"`
	KeysAdded uint64  `json:"keys_added"`
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	m := h.cache.Metrics

	resp := statsResponse{
		Hits:      m.Hits(),
		Misses:    m.Misses(),
		HitRatio:  m.Ratio(),
		KeysAdded: m.KeysAdded(),
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
