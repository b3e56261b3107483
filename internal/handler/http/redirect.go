package http

import (
	"QRLink-Backend/internal/service"
	"QRLink-Backend/internal/tracker"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// RedirectHandler обработчик редиректов — горячий путь
type RedirectHandler struct {
	resolver *service.Resolver
	tracker  *tracker.Tracker
	log      *zap.Logger
}

// NewRedirectHandler создает новый обработчик редиректов
func NewRedirectHandler(resolver *service.Resolver, scanTracker *tracker.Tracker, log *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		resolver: resolver,
		tracker:  scanTracker,
		log:      log,
	}
}

// HandleRedirect обрабатывает редирект по короткому коду
func (h *RedirectHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	// Извлекаем короткий код из URL path
	code := strings.TrimPrefix(r.URL.Path, "/")

	// Проверяем, что это не системные endpoints
	if code == "" || strings.HasPrefix(code, "api/") ||
		strings.HasPrefix(code, "health") || strings.HasPrefix(code, "ready") ||
		strings.HasPrefix(code, "metrics") || strings.HasPrefix(code, "track/") {
		http.NotFound(w, r)
		return
	}

	res := h.resolver.Resolve(r.Context(), code)

	switch res.Outcome {
	case service.OutcomeFound:
		// Сначала отвечаем клиенту, затем отдаем скан трекеру:
		// запись аналитики никогда не задерживает редирект
		http.Redirect(w, r, res.DestinationURL, http.StatusFound)

		scan := &tracker.Scan{
			ShortCode:   code,
			ShortLinkID: res.ShortLinkID,
			IPAddress:   extractIPAddress(r),
			UserAgent:   r.UserAgent(),
			Referer:     r.Referer(),
		}
		if err := h.tracker.Track(scan); err != nil {
			h.log.Warn("failed to enqueue scan", zap.String("short_code", code), zap.Error(err))
		}

	case service.OutcomeNotFound:
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":      "short link not found",
			"short_code": code,
		})

	case service.OutcomeGone:
		writeJSON(w, http.StatusGone, map[string]string{
			"error":      "short link no longer available",
			"short_code": code,
			"reason":     res.GoneReason,
		})

	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}
}

// extractIPAddress извлекает IP адрес из запроса с учетом прокси
func extractIPAddress(r *http.Request) string {
	// Проверяем заголовки прокси в порядке приоритета
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		// X-Forwarded-For может содержать список IP через запятую
		ips := strings.Split(ip, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	// Fallback к RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
