package domain

import "time"

// ScanEvent представляет одно сканирование короткой ссылки.
// Записи создаются только трекером и никогда не изменяются.
type ScanEvent struct {
	ID          int64     `gorm:"primaryKey;column:id" json:"id"`
	ShortLinkID int64     `gorm:"column:short_link_id;not null;index" json:"short_link_id"`
	IPAddress   *string   `gorm:"column:ip_address;size:45" json:"ip_address,omitempty"`
	UserAgent   *string   `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`
	Referer     *string   `gorm:"column:referer;size:500" json:"referer,omitempty"`
	DeviceType  string    `gorm:"column:device_type;size:10" json:"device_type"` // 'mobile', 'tablet', 'desktop'
	OS          string    `gorm:"column:os;size:50" json:"os"`
	Browser     string    `gorm:"column:browser;size:50" json:"browser"`
	UTMSource   *string   `gorm:"column:utm_source;size:100" json:"utm_source,omitempty"`
	UTMMedium   *string   `gorm:"column:utm_medium;size:100" json:"utm_medium,omitempty"`
	UTMCampaign *string   `gorm:"column:utm_campaign;size:100" json:"utm_campaign,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

// TableName возвращает название таблицы для GORM
func (ScanEvent) TableName() string {
	return "scan_events"
}
