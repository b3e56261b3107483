package memory

import (
	"QRLink-Backend/internal/domain"
	"QRLink-Backend/internal/repository"
	"context"
	"sync"
	"time"
)

type MemStorage struct {
	mu           sync.RWMutex
	links        map[string]*domain.ShortLink
	linksByID    map[int64]*domain.ShortLink
	events       []*domain.ScanEvent
	linkCounter  int64
	eventCounter int64
}

func New() *MemStorage {
	return &MemStorage{
		links:     make(map[string]*domain.ShortLink),
		linksByID: make(map[int64]*domain.ShortLink),
	}
}

// --- Link Methods ---

func (s *MemStorage) FindByShortCode(_ context.Context, code string) (*domain.ShortLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	link, ok := s.links[code]
	if !ok {
		return nil, repository.ErrCodeNotFound
	}
	cp := *link
	return &cp, nil
}

func (s *MemStorage) Create(_ context.Context, link *domain.ShortLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Проверяем, занят ли уже короткий код
	if _, exists := s.links[link.ShortCode]; exists {
		return repository.ErrCodeExists
	}
	if link.ID == 0 {
		s.linkCounter++
		link.ID = s.linkCounter
	}
	now := time.Now()
	link.CreatedAt = now
	link.UpdatedAt = now
	cp := *link
	s.links[cp.ShortCode] = &cp
	s.linksByID[cp.ID] = &cp
	return nil
}

func (s *MemStorage) UpdateLink(_ context.Context, code string, updates repository.LinkUpdates) (*domain.ShortLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[code]
	if !ok {
		return nil, repository.ErrCodeNotFound
	}
	if updates.DestinationURL != nil {
		link.DestinationURL = *updates.DestinationURL
	}
	if updates.IsActive != nil {
		link.IsActive = *updates.IsActive
	}
	if updates.ExpiresAt != nil {
		link.ExpiresAt = updates.ExpiresAt
	}
	if updates.ClearExpiresAt {
		link.ExpiresAt = nil
	}
	if updates.MaxScans != nil {
		link.MaxScans = updates.MaxScans
	}
	link.UpdatedAt = time.Now()
	cp := *link
	return &cp, nil
}

func (s *MemStorage) Delete(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[code]
	if !ok {
		return repository.ErrCodeNotFound
	}
	delete(s.links, code)
	delete(s.linksByID, link.ID)
	return nil
}

func (s *MemStorage) ExistsByShortCode(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.links[code]
	return ok, nil
}

// --- Scan Tracking Methods ---

func (s *MemStorage) IncrementScan(_ context.Context, linkID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.linksByID[linkID]
	if !ok {
		return repository.ErrCodeNotFound
	}
	link.TotalScans++
	now := time.Now()
	link.LastScannedAt = &now
	return nil
}

func (s *MemStorage) InsertScanEvent(_ context.Context, event *domain.ScanEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventCounter++
	event.ID = s.eventCounter
	event.CreatedAt = time.Now()
	cp := *event
	s.events = append(s.events, &cp)
	return nil
}

// ScanEvents возвращает копию записанных событий (для тестов)
func (s *MemStorage) ScanEvents() []*domain.ScanEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.ScanEvent, len(s.events))
	copy(out, s.events)
	return out
}

// --- Aggregate Stats ---

func (s *MemStorage) GetAggregateStats(_ context.Context) (*domain.AggregateStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &domain.AggregateStats{}
	for _, link := range s.links {
		stats.TotalQRCodes++
		stats.TotalScans += link.TotalScans
		if link.IsActive {
			stats.ActiveQRCodes++
		}
	}
	if stats.TotalQRCodes > 0 {
		stats.AvgScansPerQR = float64(stats.TotalScans) / float64(stats.TotalQRCodes)
	}
	return stats, nil
}
