package domain

import "time"

// Типы ссылок. Метка без поведенческих различий при резолве.
const (
	LinkTypeStatic  = "static"
	LinkTypeDynamic = "dynamic"
)

// Причины отказа в редиректе для неразрешимой ссылки
const (
	RefusalInactive         = "inactive"
	RefusalExpired          = "expired"
	RefusalScanLimitReached = "scan_limit_reached"
)

// ShortLink представляет короткую ссылку QR-кода
type ShortLink struct {
	ID             int64      `gorm:"primaryKey;column:id" json:"id"`
	ShortCode      string     `gorm:"column:short_code;size:16;uniqueIndex;not null" json:"short_code"`
	DestinationURL string     `gorm:"column:destination_url;type:text;not null" json:"destination_url"`
	LinkType       string     `gorm:"column:link_type;size:10;not null;default:static" json:"link_type"` // 'static', 'dynamic'
	IsActive       bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	ExpiresAt      *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`
	MaxScans       *int64     `gorm:"column:max_scans" json:"max_scans,omitempty"`
	TotalScans     int64      `gorm:"column:total_scans;not null;default:0" json:"total_scans"`
	LastScannedAt  *time.Time `gorm:"column:last_scanned_at" json:"last_scanned_at,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName возвращает название таблицы для GORM
func (ShortLink) TableName() string {
	return "short_links"
}

// IsResolvable проверяет, разрешима ли ссылка в момент now.
// Срок действия сравнивается строго: expiresAt == now уже считается истекшим.
func (l *ShortLink) IsResolvable(now time.Time) bool {
	return l.RefusalReason(now) == ""
}

// RefusalReason возвращает причину отказа или пустую строку для разрешимой ссылки
func (l *ShortLink) RefusalReason(now time.Time) string {
	if !l.IsActive {
		return RefusalInactive
	}
	if l.ExpiresAt != nil && !now.Before(*l.ExpiresAt) {
		return RefusalExpired
	}
	if l.MaxScans != nil && l.TotalScans >= *l.MaxScans {
		return RefusalScanLimitReached
	}
	return ""
}

// AggregateStats агрегированные счетчики по всем ссылкам
type AggregateStats struct {
	TotalQRCodes  int64   `json:"total_qr_codes"`
	TotalScans    int64   `json:"total_scans"`
	AvgScansPerQR float64 `json:"avg_scans_per_qr"`
	ActiveQRCodes int64   `json:"active_qr_codes"`
}
