package service

import (
	"QRLink-Backend/internal/config"
	"QRLink-Backend/internal/repository"
	"QRLink-Backend/pkg/shortcode"
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrGenerationExhausted означает maxRetries коллизий подряд. При
	// пространстве 62^6 это сигнал системной проблемы, а не невезения,
	// поэтому ошибка фатальна для запроса и не ретраится дальше.
	ErrGenerationExhausted = errors.New("short code generation exhausted retries")

	// ErrInvalidFormat означает, что кастомный код не прошел проверку формата
	ErrInvalidFormat = errors.New("custom code must be 3-10 alphanumeric characters")
)

var customCodePattern = regexp.MustCompile(`^[a-zA-Z0-9]{3,10}$`)

// ExistsFunc проверяет занятость кода в хранилище
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// CodeGenerator выделяет уникальные короткие коды. Генератор никогда не
// пишет в хранилище сам: выделение кода отделено от персистентности.
type CodeGenerator struct {
	exists ExistsFunc
	cfg    *config.ShortCode
}

// NewCodeGenerator создает новый генератор коротких кодов
func NewCodeGenerator(exists ExistsFunc, cfg *config.ShortCode) *CodeGenerator {
	return &CodeGenerator{
		exists: exists,
		cfg:    cfg,
	}
}

// GenerateUnique генерирует случайный код и проверяет его уникальность,
// повторяя до MaxRetries попыток при коллизиях
func (g *CodeGenerator) GenerateUnique(ctx context.Context) (string, error) {
	for i := 0; i < g.cfg.MaxRetries; i++ {
		code, err := shortcode.Generate(g.cfg.Length)
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}

		exists, err := g.exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check code existence: %w", err)
		}
		if !exists {
			return code, nil
		}
	}

	return "", fmt.Errorf("%w after %d attempts", ErrGenerationExhausted, g.cfg.MaxRetries)
}

// ReserveCustom валидирует кастомный код и проверяет его доступность
func (g *CodeGenerator) ReserveCustom(ctx context.Context, candidate string) (string, error) {
	if !customCodePattern.MatchString(candidate) {
		return "", ErrInvalidFormat
	}

	exists, err := g.exists(ctx, candidate)
	if err != nil {
		return "", fmt.Errorf("failed to check code existence: %w", err)
	}
	if exists {
		return "", repository.ErrCodeExists
	}

	return candidate, nil
}
