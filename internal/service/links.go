package service

import (
	"QRLink-Backend/internal/cache"
	"QRLink-Backend/internal/domain"
	"QRLink-Backend/internal/repository"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CreateLinkParams параметры создания короткой ссылки
type CreateLinkParams struct {
	DestinationURL string
	CustomCode     string
	LinkType       string
	ExpiresAt      *time.Time
	MaxScans       *int64
}

// LinkService управляет жизненным циклом коротких ссылок. Каждая
// мутация, затрагивающая резолюцию, инвалидирует запись кэша как часть
// той же логической операции (best-effort, не транзакционно).
type LinkService struct {
	storage   repository.Storage
	cache     cache.ResolutionCache
	generator *CodeGenerator
	log       *zap.Logger
}

// NewLinkService создает новый сервис ссылок
func NewLinkService(storage repository.Storage, resolutionCache cache.ResolutionCache, generator *CodeGenerator, log *zap.Logger) *LinkService {
	return &LinkService{
		storage:   storage,
		cache:     resolutionCache,
		generator: generator,
		log:       log,
	}
}

// Create выделяет короткий код и сохраняет новую ссылку
func (s *LinkService) Create(ctx context.Context, params CreateLinkParams) (*domain.ShortLink, error) {
	var code string
	var err error

	if params.CustomCode != "" {
		code, err = s.generator.ReserveCustom(ctx, params.CustomCode)
	} else {
		code, err = s.generator.GenerateUnique(ctx)
	}
	if err != nil {
		return nil, err
	}

	linkType := params.LinkType
	if linkType == "" {
		linkType = domain.LinkTypeStatic
	}

	link := &domain.ShortLink{
		ShortCode:      code,
		DestinationURL: params.DestinationURL,
		LinkType:       linkType,
		IsActive:       true,
		ExpiresAt:      params.ExpiresAt,
		MaxScans:       params.MaxScans,
	}

	if err := s.storage.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to save short link: %w", err)
	}

	return link, nil
}

// Update применяет частичное обновление и инвалидирует кэш резолюции
func (s *LinkService) Update(ctx context.Context, code string, updates repository.LinkUpdates) (*domain.ShortLink, error) {
	link, err := s.storage.UpdateLink(ctx, code, updates)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, code)
	s.log.Info("updated short link", zap.String("short_code", code))

	return link, nil
}

// Delete удаляет ссылку и инвалидирует кэш резолюции
func (s *LinkService) Delete(ctx context.Context, code string) error {
	if err := s.storage.Delete(ctx, code); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, code)
	return nil
}
