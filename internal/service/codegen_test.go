package service

import (
	"QRLink-Backend/internal/config"
	"QRLink-Backend/internal/repository"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(exists ExistsFunc) *CodeGenerator {
	return NewCodeGenerator(exists, &config.ShortCode{Length: 6, MaxRetries: 5})
}

func TestCodeGenerator_GenerateUnique(t *testing.T) {
	ctx := context.Background()

	t.Run("first_candidate_free", func(t *testing.T) {
		calls := 0
		gen := newTestGenerator(func(ctx context.Context, code string) (bool, error) {
			calls++
			return false, nil
		})

		code, err := gen.GenerateUnique(ctx)

		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.Equal(t, 1, calls)
	})

	t.Run("two_collisions_then_free", func(t *testing.T) {
		calls := 0
		gen := newTestGenerator(func(ctx context.Context, code string) (bool, error) {
			calls++
			return calls <= 2, nil
		})

		code, err := gen.GenerateUnique(ctx)

		require.NoError(t, err)
		assert.NotEmpty(t, code)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausted_after_max_retries", func(t *testing.T) {
		calls := 0
		gen := newTestGenerator(func(ctx context.Context, code string) (bool, error) {
			calls++
			return true, nil
		})

		code, err := gen.GenerateUnique(ctx)

		assert.Empty(t, code)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrGenerationExhausted)
		assert.Equal(t, 5, calls)
	})

	t.Run("exists_check_error_propagates", func(t *testing.T) {
		storeErr := errors.New("connection refused")
		gen := newTestGenerator(func(ctx context.Context, code string) (bool, error) {
			return false, storeErr
		})

		_, err := gen.GenerateUnique(ctx)

		require.Error(t, err)
		assert.ErrorIs(t, err, storeErr)
	})
}

func TestCodeGenerator_ReserveCustom(t *testing.T) {
	ctx := context.Background()

	t.Run("valid_and_free", func(t *testing.T) {
		gen := newTestGenerator(func(ctx context.Context, code string) (bool, error) {
			return false, nil
		})

		code, err := gen.ReserveCustom(ctx, "promo2026")

		require.NoError(t, err)
		assert.Equal(t, "promo2026", code)
	})

	t.Run("already_taken", func(t *testing.T) {
		gen := newTestGenerator(func(ctx context.Context, code string) (bool, error) {
			return true, nil
		})

		_, err := gen.ReserveCustom(ctx, "promo2026")

		assert.ErrorIs(t, err, repository.ErrCodeExists)
	})

	t.Run("invalid_format", func(t *testing.T) {
		checked := false
		gen := newTestGenerator(func(ctx context.Context, code string) (bool, error) {
			checked = true
			return false, nil
		})

		for _, candidate := range []string{"", "ab", "waytoolongcode1", "has space", "under_score", "дво"} {
			_, err := gen.ReserveCustom(ctx, candidate)
			assert.ErrorIs(t, err, ErrInvalidFormat, "candidate %q", candidate)
		}
		// Формат проверяется до обращения к хранилищу
		assert.False(t, checked)
	})
}
