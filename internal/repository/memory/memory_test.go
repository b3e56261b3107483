package memory

import (
	"QRLink-Backend/internal/domain"
	"QRLink-Backend/internal/repository"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStorage_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	storage := New()

	link := &domain.ShortLink{
		ShortCode:      "abc123",
		DestinationURL: "https://x.example/page",
		IsActive:       true,
	}
	require.NoError(t, storage.Create(ctx, link))
	assert.NotZero(t, link.ID)

	found, err := storage.FindByShortCode(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://x.example/page", found.DestinationURL)

	exists, err := storage.ExistsByShortCode(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, exists)

	// Дубликат кода отклоняется
	err = storage.Create(ctx, &domain.ShortLink{ShortCode: "abc123", DestinationURL: "https://other.example"})
	assert.ErrorIs(t, err, repository.ErrCodeExists)

	_, err = storage.FindByShortCode(ctx, "zzzzzz")
	assert.ErrorIs(t, err, repository.ErrCodeNotFound)
}

func TestMemStorage_UpdateLink(t *testing.T) {
	ctx := context.Background()
	storage := New()
	require.NoError(t, storage.Create(ctx, &domain.ShortLink{ShortCode: "abc123", DestinationURL: "https://a.example", IsActive: true}))

	newURL := "https://b.example"
	inactive := false
	updated, err := storage.UpdateLink(ctx, "abc123", repository.LinkUpdates{
		DestinationURL: &newURL,
		IsActive:       &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://b.example", updated.DestinationURL)
	assert.False(t, updated.IsActive)

	_, err = storage.UpdateLink(ctx, "zzzzzz", repository.LinkUpdates{DestinationURL: &newURL})
	assert.ErrorIs(t, err, repository.ErrCodeNotFound)
}

func TestMemStorage_IncrementScanConcurrent(t *testing.T) {
	ctx := context.Background()
	storage := New()
	link := &domain.ShortLink{ShortCode: "abc123", DestinationURL: "https://x.example", IsActive: true}
	require.NoError(t, storage.Create(ctx, link))

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = storage.IncrementScan(ctx, link.ID)
		}()
	}
	wg.Wait()

	found, err := storage.FindByShortCode(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(n), found.TotalScans)
	assert.NotNil(t, found.LastScannedAt)
}

func TestMemStorage_GetAggregateStats(t *testing.T) {
	ctx := context.Background()
	storage := New()

	require.NoError(t, storage.Create(ctx, &domain.ShortLink{ShortCode: "aaa111", DestinationURL: "https://a.example", IsActive: true, TotalScans: 4}))
	require.NoError(t, storage.Create(ctx, &domain.ShortLink{ShortCode: "bbb222", DestinationURL: "https://b.example", IsActive: false, TotalScans: 2}))

	stats, err := storage.GetAggregateStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalQRCodes)
	assert.Equal(t, int64(6), stats.TotalScans)
	assert.Equal(t, int64(1), stats.ActiveQRCodes)
	assert.InDelta(t, 3.0, stats.AvgScansPerQR, 0.001)
}
