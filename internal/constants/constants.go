package constants

import "time"

var CacheTTL = struct {
	ProfilePage time.Duration
	ImageIndex  time.Duration
	ListCatalog time.Duration
}{
	ProfilePage: 60 * time.Second,
	ImageIndex:  60 * time.Second,
	ListCatalog: 5 * time.Minute,
}

var SourceConfig = struct {
	MaxItems            int
	RequestTimeout      time.Duration
	GenericListTemplate int
}{
	MaxItems:            5000,
	RequestTimeout:      30 * time.Second,
	GenericListTemplate: 100,
}

var RetryConfig = struct {
	MaxAttempts uint
	BaseDelay   time.Duration
	Jitter      time.Duration
}{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	Jitter:      250 * time.Millisecond,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	HealthCheckInterval time.Duration
}{
	FailureThreshold:    3,
	ResetTimeout:        30 * time.Second,
	HealthCheckInterval: 10 * time.Minute,
}

var PhotoConfig = struct {
	IdentityPhotoPath string
	PreviewPath       string
	AvatarCSSPx       int
	DetailPx          int
	AvatarDPRCap      float64
	MaxDPR            float64
}{
	IdentityPhotoPath: "/_layouts/15/userphoto.aspx",
	PreviewPath:       "/_layouts/15/getpreview.ashx",
	AvatarCSSPx:       96,
	DetailPx:          600,
	AvatarDPRCap:      2,
	MaxDPR:            3,
}

var ViewConfig = struct {
	DefaultItemCap  int
	DefaultAccent   string
	DefaultTitle    string
	DefaultSubtitle string
}{
	DefaultItemCap:  36,
	DefaultAccent:   "#114461",
	DefaultTitle:    "Team Member Profiles",
	DefaultSubtitle: "Get to know more about our team!",
}

var ServerConfig = struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	WSWriteTimeout  time.Duration
	WSPongTimeout   time.Duration
}{
	ReadTimeout:     15 * time.Second,
	WriteTimeout:    30 * time.Second,
	ShutdownTimeout: 10 * time.Second,
	WSWriteTimeout:  10 * time.Second,
	WSPongTimeout:   60 * time.Second,
}
