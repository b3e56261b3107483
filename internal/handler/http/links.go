package http

import (
	"QRLink-Backend/internal/domain"
	"QRLink-Backend/internal/repository"
	"QRLink-Backend/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LinksHandler обработчик CRUD коротких ссылок
type LinksHandler struct {
	links *service.LinkService
	log   *zap.Logger
}

// NewLinksHandler создает новый обработчик ссылок
func NewLinksHandler(links *service.LinkService, log *zap.Logger) *LinksHandler {
	return &LinksHandler{
		links: links,
		log:   log,
	}
}

// CreateLinkRequest структура запроса создания ссылки
type CreateLinkRequest struct {
	DestinationURL string `json:"destination_url"`
	CustomCode     string `json:"custom_code,omitempty"`
	LinkType       string `json:"link_type,omitempty"`
	ExpiresAt      string `json:"expires_at,omitempty"`
	MaxScans       *int64 `json:"max_scans,omitempty"`
}

// UpdateLinkRequest структура запроса обновления ссылки
type UpdateLinkRequest struct {
	DestinationURL *string `json:"destination_url,omitempty"`
	IsActive       *bool   `json:"is_active,omitempty"`
	ExpiresAt      *string `json:"expires_at,omitempty"` // пустая строка сбрасывает срок
	MaxScans       *int64  `json:"max_scans,omitempty"`
}

// CreateLink создает новую короткую ссылку
func (h *LinksHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid create link request", zap.Error(err))
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if req.DestinationURL == "" {
		writeError(w, "destination_url is required", http.StatusBadRequest)
		return
	}
	if req.LinkType != "" && req.LinkType != domain.LinkTypeStatic && req.LinkType != domain.LinkTypeDynamic {
		writeError(w, "link_type must be 'static' or 'dynamic'", http.StatusBadRequest)
		return
	}

	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			writeError(w, "expires_at must be RFC3339", http.StatusBadRequest)
			return
		}
		expiresAt = &parsed
	}

	link, err := h.links.Create(r.Context(), service.CreateLinkParams{
		DestinationURL: req.DestinationURL,
		CustomCode:     req.CustomCode,
		LinkType:       req.LinkType,
		ExpiresAt:      expiresAt,
		MaxScans:       req.MaxScans,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidFormat):
			writeError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, repository.ErrCodeExists):
			writeError(w, "Short code already taken", http.StatusConflict)
		case errors.Is(err, service.ErrGenerationExhausted):
			h.log.Error("code generation exhausted", zap.Error(err))
			writeError(w, "Could not allocate a short code", http.StatusInternalServerError)
		default:
			h.log.Error("failed to create short link", zap.Error(err))
			writeError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, link)
}

// HandleLink обрабатывает /api/links/{code} с разными HTTP методами
func (h *LinksHandler) HandleLink(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimPrefix(r.URL.Path, "/api/links/")
	if code == "" || strings.Contains(code, "/") {
		writeError(w, "Short code is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPatch:
		h.updateLink(w, r, code)
	case http.MethodDelete:
		h.deleteLink(w, r, code)
	default:
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// updateLink применяет частичное обновление ссылки
func (h *LinksHandler) updateLink(w http.ResponseWriter, r *http.Request, code string) {
	var req UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	updates := repository.LinkUpdates{
		DestinationURL: req.DestinationURL,
		IsActive:       req.IsActive,
		MaxScans:       req.MaxScans,
	}
	if req.ExpiresAt != nil {
		if *req.ExpiresAt == "" {
			updates.ClearExpiresAt = true
		} else {
			parsed, err := time.Parse(time.RFC3339, *req.ExpiresAt)
			if err != nil {
				writeError(w, "expires_at must be RFC3339", http.StatusBadRequest)
				return
			}
			updates.ExpiresAt = &parsed
		}
	}

	link, err := h.links.Update(r.Context(), code, updates)
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			writeError(w, "Short link not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to update short link", zap.String("short_code", code), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, link)
}

// deleteLink удаляет ссылку
func (h *LinksHandler) deleteLink(w http.ResponseWriter, r *http.Request, code string) {
	if err := h.links.Delete(r.Context(), code); err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			writeError(w, "Short link not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to delete short link", zap.String("short_code", code), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeJSON сериализует ответ в JSON
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError отправляет JSON-ошибку
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
