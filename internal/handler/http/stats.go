package http

import (
	"QRLink-Backend/internal/repository"
	"net/http"

	"go.uber.org/zap"
)

// StatsHandler обработчик агрегированной статистики сканирований
type StatsHandler struct {
	storage repository.Storage
	log     *zap.Logger
}

// NewStatsHandler создает новый обработчик статистики
func NewStatsHandler(storage repository.Storage, log *zap.Logger) *StatsHandler {
	return &StatsHandler{
		storage: storage,
		log:     log,
	}
}

// GetStats возвращает агрегированные счетчики по всем ссылкам.
// Endpoint только для наблюдаемости, не является частью горячего пути.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats, err := h.storage.GetAggregateStats(r.Context())
	if err != nil {
		h.log.Error("failed to get aggregate stats", zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
