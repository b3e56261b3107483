package service

import (
	"QRLink-Backend/internal/cache"
	"QRLink-Backend/internal/repository"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// storeTimeout ограничивает чтение из хранилища на горячем пути.
// Таймауты кэша живут внутри его адаптера и деградируют в промах.
const storeTimeout = 300 * time.Millisecond

// Outcome результат резолюции короткого кода
type Outcome int

const (
	OutcomeFound Outcome = iota
	OutcomeNotFound
	OutcomeGone
	OutcomeError
)

// Resolution результат Resolve. ShortLinkID заполнен только при промахе
// кэша: на кэшированном пути известен лишь URL назначения.
type Resolution struct {
	Outcome        Outcome
	DestinationURL string
	GoneReason     string // inactive, expired, scan_limit_reached
	ShortLinkID    int64
}

// Resolver обрабатывает горячий путь редиректа: кэш, затем хранилище
type Resolver struct {
	storage repository.Storage
	cache   cache.ResolutionCache
	log     *zap.Logger
}

// NewResolver создает новый резолвер редиректов
func NewResolver(storage repository.Storage, resolutionCache cache.ResolutionCache, log *zap.Logger) *Resolver {
	return &Resolver{
		storage: storage,
		cache:   resolutionCache,
		log:     log,
	}
}

// Resolve разрешает короткий код в URL назначения.
//
// Попадание в кэш считается авторитетным: правила жизненного цикла на
// этом пути не перепроверяются, поэтому деактивированная после
// кэширования ссылка продолжает отвечать до истечения TTL или явной
// инвалидации мутирующим путем записи.
func (r *Resolver) Resolve(ctx context.Context, code string) Resolution {
	if url, ok := r.cache.Get(ctx, code); ok {
		r.log.Debug("cache hit", zap.String("short_code", code))
		return Resolution{Outcome: OutcomeFound, DestinationURL: url}
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	link, err := r.storage.FindByShortCode(storeCtx, code)
	if errors.Is(err, repository.ErrCodeNotFound) {
		r.log.Debug("short code not found", zap.String("short_code", code))
		return Resolution{Outcome: OutcomeNotFound}
	}
	if err != nil {
		r.log.Error("failed to resolve short code", zap.String("short_code", code), zap.Error(err))
		return Resolution{Outcome: OutcomeError}
	}

	if reason := link.RefusalReason(time.Now()); reason != "" {
		// Неразрешимая ссылка не кэшируется
		r.log.Debug("short link not resolvable",
			zap.String("short_code", code),
			zap.String("reason", reason))
		return Resolution{Outcome: OutcomeGone, GoneReason: reason}
	}

	r.cache.Set(ctx, code, link.DestinationURL)

	return Resolution{
		Outcome:        OutcomeFound,
		DestinationURL: link.DestinationURL,
		ShortLinkID:    link.ID,
	}
}
