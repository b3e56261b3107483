package postgres

import (
	"QRLink-Backend/internal/domain"
	"QRLink-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostgresStorage реализует интерфейс Storage для PostgreSQL
type PostgresStorage struct {
	db  *gorm.DB
	log *zap.Logger
}

// New создает новый экземпляр PostgreSQL storage
func New(db *gorm.DB, log *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:  db,
		log: log,
	}
}

// --- Link Methods ---

// FindByShortCode получает ссылку по короткому коду
func (s *PostgresStorage) FindByShortCode(ctx context.Context, code string) (*domain.ShortLink, error) {
	var link domain.ShortLink

	err := s.db.WithContext(ctx).Where("short_code = ?", code).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrCodeNotFound
	}
	if err != nil {
		s.log.Error("failed to find short link", zap.String("short_code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to find short link: %w", err)
	}

	return &link, nil
}

// Create сохраняет новую короткую ссылку
func (s *PostgresStorage) Create(ctx context.Context, link *domain.ShortLink) error {
	// Проверяем, занят ли уже короткий код
	exists, err := s.ExistsByShortCode(ctx, link.ShortCode)
	if err != nil {
		return err
	}
	if exists {
		return repository.ErrCodeExists
	}

	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		s.log.Error("failed to create short link", zap.String("short_code", link.ShortCode), zap.Error(err))
		return fmt.Errorf("failed to create short link: %w", err)
	}

	s.log.Info("created short link",
		zap.String("short_code", link.ShortCode),
		zap.String("link_type", link.LinkType))
	return nil
}

// UpdateLink выполняет частичное обновление ссылки и возвращает свежую запись
func (s *PostgresStorage) UpdateLink(ctx context.Context, code string, updates repository.LinkUpdates) (*domain.ShortLink, error) {
	fields := make(map[string]interface{})
	if updates.DestinationURL != nil {
		fields["destination_url"] = *updates.DestinationURL
	}
	if updates.IsActive != nil {
		fields["is_active"] = *updates.IsActive
	}
	if updates.ExpiresAt != nil {
		fields["expires_at"] = *updates.ExpiresAt
	}
	if updates.ClearExpiresAt {
		fields["expires_at"] = nil
	}
	if updates.MaxScans != nil {
		fields["max_scans"] = *updates.MaxScans
	}
	if len(fields) == 0 {
		return s.FindByShortCode(ctx, code)
	}

	result := s.db.WithContext(ctx).Model(&domain.ShortLink{}).
		Where("short_code = ?", code).
		Updates(fields)
	if result.Error != nil {
		s.log.Error("failed to update short link", zap.String("short_code", code), zap.Error(result.Error))
		return nil, fmt.Errorf("failed to update short link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrCodeNotFound
	}

	return s.FindByShortCode(ctx, code)
}

// Delete удаляет ссылку по короткому коду
func (s *PostgresStorage) Delete(ctx context.Context, code string) error {
	result := s.db.WithContext(ctx).Where("short_code = ?", code).Delete(&domain.ShortLink{})
	if result.Error != nil {
		s.log.Error("failed to delete short link", zap.String("short_code", code), zap.Error(result.Error))
		return fmt.Errorf("failed to delete short link: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrCodeNotFound
	}

	s.log.Info("deleted short link", zap.String("short_code", code))
	return nil
}

// ExistsByShortCode проверяет, существует ли короткий код
func (s *PostgresStorage) ExistsByShortCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.ShortLink{}).Where("short_code = ?", code).Count(&count).Error
	if err != nil {
		s.log.Error("failed to check short code existence", zap.String("short_code", code), zap.Error(err))
		return false, fmt.Errorf("failed to check short code: %w", err)
	}

	return count > 0, nil
}

// --- Scan Tracking Methods ---

// IncrementScan увеличивает счетчик сканирований одним атомарным UPDATE.
// Чтение-изменение-запись на уровне приложения потеряло бы обновления
// при конкурентных сканированиях одного кода.
func (s *PostgresStorage) IncrementScan(ctx context.Context, linkID int64) error {
	result := s.db.WithContext(ctx).Model(&domain.ShortLink{}).
		Where("id = ?", linkID).
		Updates(map[string]interface{}{
			"total_scans":     gorm.Expr("total_scans + 1"),
			"last_scanned_at": time.Now(),
		})
	if result.Error != nil {
		s.log.Error("failed to increment scan count", zap.Int64("link_id", linkID), zap.Error(result.Error))
		return fmt.Errorf("failed to increment scan count: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrCodeNotFound
	}

	return nil
}

// InsertScanEvent записывает событие сканирования
func (s *PostgresStorage) InsertScanEvent(ctx context.Context, event *domain.ScanEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		s.log.Error("failed to insert scan event", zap.Int64("link_id", event.ShortLinkID), zap.Error(err))
		return fmt.Errorf("failed to insert scan event: %w", err)
	}

	return nil
}

// --- Aggregate Stats ---

// GetAggregateStats возвращает агрегированные счетчики по всем ссылкам
func (s *PostgresStorage) GetAggregateStats(ctx context.Context) (*domain.AggregateStats, error) {
	var result struct {
		TotalQRCodes  int64
		TotalScans    int64
		ActiveQRCodes int64
	}

	err := s.db.WithContext(ctx).Model(&domain.ShortLink{}).
		Select("count(*) as total_qr_codes, coalesce(sum(total_scans), 0) as total_scans, count(*) filter (where is_active) as active_qr_codes").
		Scan(&result).Error
	if err != nil {
		s.log.Error("failed to get aggregate stats", zap.Error(err))
		return nil, fmt.Errorf("failed to get aggregate stats: %w", err)
	}

	stats := &domain.AggregateStats{
		TotalQRCodes:  result.TotalQRCodes,
		TotalScans:    result.TotalScans,
		ActiveQRCodes: result.ActiveQRCodes,
	}
	if stats.TotalQRCodes > 0 {
		stats.AvgScansPerQR = float64(stats.TotalScans) / float64(stats.TotalQRCodes)
	}

	return stats, nil
}
