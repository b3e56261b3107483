package http

import (
	"QRLink-Backend/internal/repository"
	"QRLink-Backend/internal/service"
	"QRLink-Backend/internal/tracker"
	"net/http"

	"go.uber.org/zap"
)

// Server HTTP сервер с обработчиками
type Server struct {
	redirectHandler *RedirectHandler
	linksHandler    *LinksHandler
	statsHandler    *StatsHandler
	healthHandler   *HealthHandler
	log             *zap.Logger
}

// NewServer создает новый HTTP сервер
func NewServer(
	storage repository.Storage,
	resolver *service.Resolver,
	links *service.LinkService,
	scanTracker *tracker.Tracker,
	log *zap.Logger,
) *Server {
	return &Server{
		redirectHandler: NewRedirectHandler(resolver, scanTracker, log),
		linksHandler:    NewLinksHandler(links, log),
		statsHandler:    NewStatsHandler(storage, log),
		healthHandler:   NewHealthHandler(storage, scanTracker, log),
		log:             log,
	}
}

// SetupRoutes настраивает маршруты
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Health checks
	mux.HandleFunc("/health", s.healthHandler.Health)
	mux.HandleFunc("/ready", s.healthHandler.Ready)
	mux.HandleFunc("/metrics", s.healthHandler.Metrics)

	// Агрегированная статистика сканирований
	mux.HandleFunc("/track/stats", s.statsHandler.GetStats)

	// CRUD ссылок
	mux.HandleFunc("/api/links", s.linksHandler.CreateLink)
	mux.HandleFunc("/api/links/", s.linksHandler.HandleLink)

	// Redirect endpoint - должен быть последним
	mux.HandleFunc("/", s.redirectHandler.HandleRedirect)

	return mux
}
