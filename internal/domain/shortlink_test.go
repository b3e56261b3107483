package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

func TestShortLink_RefusalReason(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("resolvable", func(t *testing.T) {
		future := now.Add(time.Hour)
		link := &ShortLink{
			IsActive:   true,
			ExpiresAt:  &future,
			MaxScans:   int64Ptr(10),
			TotalScans: 9,
		}
		assert.True(t, link.IsResolvable(now))
		assert.Empty(t, link.RefusalReason(now))
	})

	t.Run("no_limits", func(t *testing.T) {
		link := &ShortLink{IsActive: true}
		assert.True(t, link.IsResolvable(now))
	})

	t.Run("inactive", func(t *testing.T) {
		link := &ShortLink{IsActive: false}
		assert.Equal(t, RefusalInactive, link.RefusalReason(now))
	})

	t.Run("expired_strict_boundary", func(t *testing.T) {
		// expiresAt ровно равный now уже считается истекшим
		boundary := now
		link := &ShortLink{IsActive: true, ExpiresAt: &boundary}
		assert.Equal(t, RefusalExpired, link.RefusalReason(now))

		justBefore := now.Add(time.Nanosecond)
		link.ExpiresAt = &justBefore
		assert.True(t, link.IsResolvable(now))
	})

	t.Run("scan_limit_reached", func(t *testing.T) {
		link := &ShortLink{IsActive: true, MaxScans: int64Ptr(2), TotalScans: 2}
		assert.Equal(t, RefusalScanLimitReached, link.RefusalReason(now))

		link.TotalScans = 1
		assert.True(t, link.IsResolvable(now))
	})

	t.Run("inactive_wins_over_expired", func(t *testing.T) {
		past := now.Add(-time.Hour)
		link := &ShortLink{IsActive: false, ExpiresAt: &past}
		assert.Equal(t, RefusalInactive, link.RefusalReason(now))
	})
}
