// Package useragent classifies User-Agent strings into the device, OS
// and browser attributes recorded with every scan.
package useragent

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ua-parser/uap-go/uaparser"
	"go.uber.org/zap"
)

// Device types recorded on scan events
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
)

const unknown = "unknown"

// DeviceInfo represents classified device information
type DeviceInfo struct {
	DeviceType string // mobile, tablet, desktop
	OS         string // Windows, macOS, Android, iOS, Linux, unknown
	Browser    string // Chrome, Safari, Firefox, Edge, unknown
}

// Parser wraps the uap-go parser with a substring fallback
type Parser struct {
	parser *uaparser.Parser
	log    *zap.Logger
}

var (
	globalParser *Parser
	once         sync.Once
)

// NewParser creates a parser from the uap regexes file
func NewParser(regexFilePath string, log *zap.Logger) (*Parser, error) {
	regexBytes, err := os.ReadFile(regexFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read regexes file: %w", err)
	}

	parser, err := uaparser.NewFromBytes(regexBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create User-Agent parser: %w", err)
	}

	log.Info("User-Agent parser initialized", zap.String("regexes_file", regexFilePath))

	return &Parser{
		parser: parser,
		log:    log,
	}, nil
}

// InitGlobalParser initializes the singleton parser instance. The
// tracker works without it, falling back to substring classification.
func InitGlobalParser(regexFilePath string, log *zap.Logger) error {
	var err error
	once.Do(func() {
		globalParser, err = NewParser(regexFilePath, log)
	})
	return err
}

// Classify classifies a User-Agent using the global parser when
// initialized, otherwise via substring matching.
func Classify(userAgent string) *DeviceInfo {
	if globalParser != nil {
		return globalParser.Classify(userAgent)
	}
	return ClassifyFallback(userAgent)
}

// Classify classifies a User-Agent string
func (p *Parser) Classify(userAgent string) *DeviceInfo {
	if userAgent == "" {
		return &DeviceInfo{DeviceType: DeviceDesktop, OS: unknown, Browser: unknown}
	}

	client := p.parser.Parse(userAgent)
	info := &DeviceInfo{
		DeviceType: detectDeviceType(userAgent),
		OS:         canonicalOS(client.Os.Family, userAgent),
		Browser:    canonicalBrowser(client.UserAgent.Family, userAgent),
	}

	p.log.Debug("classified User-Agent",
		zap.String("device_type", info.DeviceType),
		zap.String("os", info.OS),
		zap.String("browser", info.Browser))

	return info
}

// ClassifyFallback classifies a User-Agent by substring matching alone
func ClassifyFallback(userAgent string) *DeviceInfo {
	if userAgent == "" {
		return &DeviceInfo{DeviceType: DeviceDesktop, OS: unknown, Browser: unknown}
	}

	return &DeviceInfo{
		DeviceType: detectDeviceType(userAgent),
		OS:         detectOS(userAgent),
		Browser:    detectBrowser(userAgent),
	}
}

// detectDeviceType определяет тип устройства по User-Agent.
// Планшеты проверяются первыми: iPad UA может содержать "Mobile".
func detectDeviceType(userAgent string) string {
	ua := strings.ToLower(userAgent)

	if strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad") {
		return DeviceTablet
	}
	if strings.Contains(ua, "mobile") {
		return DeviceMobile
	}

	return DeviceDesktop
}

// detectOS определяет операционную систему по подстрокам.
// iOS проверяется раньше macOS: UA iPhone содержит "like Mac OS X".
// Android раньше Linux: UA Android содержит "Linux".
func detectOS(userAgent string) string {
	ua := strings.ToLower(userAgent)

	switch {
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"), strings.Contains(ua, "ipod"):
		return "iOS"
	case strings.Contains(ua, "windows"):
		return "Windows"
	case strings.Contains(ua, "android"):
		return "Android"
	case strings.Contains(ua, "mac os"), strings.Contains(ua, "macintosh"):
		return "macOS"
	case strings.Contains(ua, "linux"):
		return "Linux"
	}

	return unknown
}

// detectBrowser определяет браузер по подстрокам. Edge проверяется
// раньше Chrome, а Chrome раньше Safari: UA Edge содержит "Chrome",
// UA Chrome содержит "Safari".
func detectBrowser(userAgent string) string {
	ua := strings.ToLower(userAgent)

	switch {
	case strings.Contains(ua, "edg"):
		return "Edge"
	case strings.Contains(ua, "firefox"):
		return "Firefox"
	case strings.Contains(ua, "chrome"):
		return "Chrome"
	case strings.Contains(ua, "safari"):
		return "Safari"
	}

	return unknown
}

// canonicalOS сводит семейство ОС из uap-go к каноническим названиям
func canonicalOS(family, userAgent string) string {
	switch {
	case family == "" || family == "Other":
		return detectOS(userAgent)
	case strings.Contains(family, "iOS"):
		return "iOS"
	case strings.Contains(family, "Windows"):
		return "Windows"
	case strings.Contains(family, "Android"):
		return "Android"
	case strings.Contains(family, "Mac OS"), strings.Contains(family, "macOS"):
		return "macOS"
	case strings.Contains(family, "Linux"), strings.Contains(family, "Ubuntu"):
		return "Linux"
	}
	return detectOS(userAgent)
}

// canonicalBrowser сводит семейство браузера из uap-go к каноническим названиям
func canonicalBrowser(family, userAgent string) string {
	switch {
	case family == "" || family == "Other":
		return detectBrowser(userAgent)
	case strings.Contains(family, "Edge"):
		return "Edge"
	case strings.Contains(family, "Firefox"):
		return "Firefox"
	case strings.Contains(family, "Chrome"), strings.Contains(family, "Chromium"):
		return "Chrome"
	case strings.Contains(family, "Safari"):
		return "Safari"
	}
	return detectBrowser(userAgent)
}
