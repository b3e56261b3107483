package tracker

import (
	"QRLink-Backend/internal/domain"
	"QRLink-Backend/internal/repository/memory"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	cfg.ShutdownTimeout = 5 * time.Second
	return cfg
}

func startTracker(t *testing.T, storage *memory.MemStorage) *Tracker {
	t.Helper()
	tr := New(storage, zap.NewNop(), testConfig())
	require.NoError(t, tr.Start())
	t.Cleanup(func() { _ = tr.Stop() })
	return tr
}

func createLink(t *testing.T, storage *memory.MemStorage, code string) *domain.ShortLink {
	t.Helper()
	link := &domain.ShortLink{
		ShortCode:      code,
		DestinationURL: "https://x.example/page",
		LinkType:       domain.LinkTypeStatic,
		IsActive:       true,
	}
	require.NoError(t, storage.Create(context.Background(), link))
	return link
}

func TestTracker_RecordsScanEvent(t *testing.T) {
	storage := memory.New()
	tr := startTracker(t, storage)
	link := createLink(t, storage, "abc123")

	ua := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	require.NoError(t, tr.Track(&Scan{
		ShortCode:   "abc123",
		ShortLinkID: link.ID,
		IPAddress:   "203.0.113.7",
		UserAgent:   ua,
		Referer:     "https://news.example/post?utm_source=newsletter&utm_medium=email&utm_campaign=spring",
	}))

	require.Eventually(t, func() bool {
		return len(storage.ScanEvents()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	events := storage.ScanEvents()
	event := events[0]
	assert.Equal(t, link.ID, event.ShortLinkID)
	assert.Equal(t, "mobile", event.DeviceType)
	assert.Equal(t, "iOS", event.OS)
	assert.Equal(t, "Safari", event.Browser)
	require.NotNil(t, event.UTMSource)
	assert.Equal(t, "newsletter", *event.UTMSource)
	require.NotNil(t, event.UTMMedium)
	assert.Equal(t, "email", *event.UTMMedium)
	require.NotNil(t, event.UTMCampaign)
	assert.Equal(t, "spring", *event.UTMCampaign)

	updated, err := storage.FindByShortCode(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.TotalScans)
	assert.NotNil(t, updated.LastScannedAt)
}

func TestTracker_MalformedRefererDropsAttribution(t *testing.T) {
	storage := memory.New()
	tr := startTracker(t, storage)
	link := createLink(t, storage, "abc123")

	require.NoError(t, tr.Track(&Scan{
		ShortCode:   "abc123",
		ShortLinkID: link.ID,
		UserAgent:   "curl/8.1",
		Referer:     "ht tp://%%%broken",
	}))

	require.Eventually(t, func() bool {
		return len(storage.ScanEvents()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	event := storage.ScanEvents()[0]
	assert.Nil(t, event.UTMSource)
	assert.Nil(t, event.UTMMedium)
	assert.Nil(t, event.UTMCampaign)
	assert.Equal(t, "desktop", event.DeviceType)
}

func TestTracker_CacheHitScanResolvesLinkByCode(t *testing.T) {
	storage := memory.New()
	tr := startTracker(t, storage)
	link := createLink(t, storage, "abc123")

	// Редирект с кэшированного пути не знает ID ссылки
	require.NoError(t, tr.Track(&Scan{ShortCode: "abc123"}))

	require.Eventually(t, func() bool {
		return len(storage.ScanEvents()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, link.ID, storage.ScanEvents()[0].ShortLinkID)
}

func TestTracker_ConcurrentScansExactCount(t *testing.T) {
	storage := memory.New()
	tr := startTracker(t, storage)
	link := createLink(t, storage, "abc123")

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tr.Track(&Scan{ShortCode: "abc123", ShortLinkID: link.ID, UserAgent: "curl/8.1"})
		}()
	}
	wg.Wait()

	// Инкремент атомарен на уровне хранилища: ровно N, без потерянных обновлений
	require.Eventually(t, func() bool {
		updated, err := storage.FindByShortCode(context.Background(), "abc123")
		return err == nil && updated.TotalScans == n
	}, 5*time.Second, 10*time.Millisecond)

	assert.Len(t, storage.ScanEvents(), n)
}

func TestTracker_NotStarted(t *testing.T) {
	tr := New(memory.New(), zap.NewNop(), testConfig())
	err := tr.Track(&Scan{ShortCode: "abc123"})
	assert.Error(t, err)
}

func TestTracker_DeletedLinkScanDropped(t *testing.T) {
	storage := memory.New()
	tr := startTracker(t, storage)

	// Ссылка удалена между редиректом и записью скана
	require.NoError(t, tr.Track(&Scan{ShortCode: "ghost1"}))

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, storage.ScanEvents())
}

func TestParseUTM(t *testing.T) {
	t.Run("all_params", func(t *testing.T) {
		source, medium, campaign := parseUTM("https://a.example/p?utm_source=s&utm_medium=m&utm_campaign=c")
		require.NotNil(t, source)
		require.NotNil(t, medium)
		require.NotNil(t, campaign)
		assert.Equal(t, "s", *source)
		assert.Equal(t, "m", *medium)
		assert.Equal(t, "c", *campaign)
	})

	t.Run("partial", func(t *testing.T) {
		source, medium, campaign := parseUTM("https://a.example/p?utm_source=s")
		require.NotNil(t, source)
		assert.Equal(t, "s", *source)
		assert.Nil(t, medium)
		assert.Nil(t, campaign)
	})

	t.Run("empty_referer", func(t *testing.T) {
		source, medium, campaign := parseUTM("")
		assert.Nil(t, source)
		assert.Nil(t, medium)
		assert.Nil(t, campaign)
	})
}
