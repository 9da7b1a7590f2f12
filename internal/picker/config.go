package picker

import (
	"slices"
	"time"
)

// Defaults for the options left empty in Config
const (
	DefaultCookieExpires = 180
	DefaultCookieName    = "openid_provider"
	DefaultCookiePath    = "/"
	DefaultImgPath       = "images/"
	DefaultImageTitle    = "{provider}"
)

// Config holds the widget options
type Config struct {
	Demo     bool   `json:"demo,omitempty"`
	DemoText string `json:"demo_text,omitempty"`

	// CookieExpires is the lifetime of the remembered choice in days.
	// Nil means the default; 0 expires the cookie as soon as it is written.
	CookieExpires *int   `json:"cookie_expires,omitempty"`
	CookieName    string `json:"cookie_name,omitempty"`
	CookiePath    string `json:"cookie_path,omitempty"`

	ImgPath    string `json:"img_path,omitempty"`
	Locale     string `json:"locale,omitempty"`
	Sprite     string `json:"sprite,omitempty"`
	SigninText string `json:"signin_text,omitempty"`

	AllSmall   bool   `json:"all_small,omitempty"`
	NoSprite   bool   `json:"no_sprite,omitempty"`
	ImageTitle string `json:"image_title,omitempty"`

	// ShowProviders restricts rendering to these ids when non-empty.
	ShowProviders []string `json:"show_providers,omitempty"`
}

// DefaultConfig returns a Config with every default applied
func DefaultConfig() Config {
	return Config{}.WithDefaults()
}

// WithDefaults fills unset options
func (c Config) WithDefaults() Config {
	if c.CookieExpires == nil {
		c.CookieExpires = ExpiresIn(DefaultCookieExpires)
	}
	if c.CookieName == "" {
		c.CookieName = DefaultCookieName
	}
	if c.CookiePath == "" {
		c.CookiePath = DefaultCookiePath
	}
	if c.ImgPath == "" {
		c.ImgPath = DefaultImgPath
	}
	if c.ImageTitle == "" {
		c.ImageTitle = DefaultImageTitle
	}
	if c.Sprite == "" {
		c.Sprite = c.Locale
	}
	return c
}

// ExpiresIn returns a CookieExpires value of the given number of days
func ExpiresIn(days int) *int {
	return &days
}

// CookieLifetime converts CookieExpires to a duration
func (c Config) CookieLifetime() time.Duration {
	days := DefaultCookieExpires
	if c.CookieExpires != nil {
		days = *c.CookieExpires
	}
	return time.Duration(days) * 24 * time.Hour
}

func (c Config) wants(id string) bool {
	if len(c.ShowProviders) == 0 {
		return true
	}
	return slices.Contains(c.ShowProviders, id)
}
