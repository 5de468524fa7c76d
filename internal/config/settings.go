package config

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/rshade/jirafocus/internal/duration"
)

// Default setting values.
const (
	DefaultHost        = "https://issues.apache.org/jira"
	DefaultAPIBasePath = "/rest/api/latest"
	DefaultCacheTime   = "15m"
)

// Settings keys, as used in the YAML file, the SQLite backend and `config set`.
const (
	KeyHost               = "host"
	KeyAuthenticationType = "authentication_type"
	KeyUsername           = "username"
	KeyPassword           = "password"
	KeyBearerToken        = "bearer_token"
	KeyAPIBasePath        = "api_base_path"
	KeyCacheTime          = "cache_time"
	KeyDarkMode           = "dark_mode"
)

// maskedSecret replaces secret values in listings.
const maskedSecret = "********"

// Settings is the persisted configuration record.
//
// Only the fields of the active AuthenticationType are meaningful; the
// others are kept as entered.
type Settings struct {
	Host               string             `yaml:"host"                   json:"host"`
	AuthenticationType AuthenticationType `yaml:"authentication_type"    json:"authentication_type"`
	Username           string             `yaml:"username,omitempty"     json:"username,omitempty"`
	Password           string             `yaml:"password,omitempty"     json:"password,omitempty"`
	BearerToken        string             `yaml:"bearer_token,omitempty" json:"bearer_token,omitempty"`
	APIBasePath        string             `yaml:"api_base_path"          json:"api_base_path"`
	CacheTime          string             `yaml:"cache_time"             json:"cache_time"`
	DarkMode           bool               `yaml:"dark_mode"              json:"dark_mode"`

	// StatusColorCache maps issue status names to colors. It is derived
	// from server responses and never persisted.
	StatusColorCache map[string]string `yaml:"-" json:"-"`
}

// Default returns the built-in settings record.
func Default() Settings {
	return Settings{
		Host:               DefaultHost,
		AuthenticationType: AuthOpen,
		APIBasePath:        DefaultAPIBasePath,
		CacheTime:          DefaultCacheTime,
		StatusColorCache:   map[string]string{},
	}
}

// Keys lists the settings keys in display order.
func Keys() []string {
	return []string{
		KeyHost, KeyAuthenticationType, KeyUsername, KeyPassword,
		KeyBearerToken, KeyAPIBasePath, KeyCacheTime, KeyDarkMode,
	}
}

// Clone returns a copy that shares no mutable state with s.
func (s Settings) Clone() Settings {
	c := s
	c.StatusColorCache = maps.Clone(s.StatusColorCache)
	if c.StatusColorCache == nil {
		c.StatusColorCache = map[string]string{}
	}
	return c
}

// TTL parses CacheTime.
func (s Settings) TTL() (time.Duration, error) {
	return duration.ParsePositive(s.CacheTime)
}

// APIURL joins the host, the API base path and path.
func (s Settings) APIURL(path string) string {
	return strings.TrimRight(s.Host, "/") + "/" +
		strings.Trim(s.APIBasePath, "/") + "/" +
		strings.TrimLeft(path, "/")
}

// Get returns the string form of the setting named key.
func (s Settings) Get(key string) (string, error) {
	switch key {
	case KeyHost:
		return s.Host, nil
	case KeyAuthenticationType:
		return string(s.AuthenticationType), nil
	case KeyUsername:
		return s.Username, nil
	case KeyPassword:
		return s.Password, nil
	case KeyBearerToken:
		return s.BearerToken, nil
	case KeyAPIBasePath:
		return s.APIBasePath, nil
	case KeyCacheTime:
		return s.CacheTime, nil
	case KeyDarkMode:
		return strconv.FormatBool(s.DarkMode), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
}

// Set assigns the setting named key from its string form.
// Values are converted but not validated; see Validate.
func (s *Settings) Set(key, value string) error {
	switch key {
	case KeyHost:
		s.Host = strings.TrimSpace(value)
	case KeyAuthenticationType:
		auth, err := ParseAuthenticationType(value)
		if err != nil {
			return err
		}
		s.AuthenticationType = auth
	case KeyUsername:
		s.Username = value
	case KeyPassword:
		s.Password = value
	case KeyBearerToken:
		s.BearerToken = value
	case KeyAPIBasePath:
		s.APIBasePath = strings.TrimSpace(value)
	case KeyCacheTime:
		s.CacheTime = strings.TrimSpace(value)
	case KeyDarkMode:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", KeyDarkMode, value, err)
		}
		s.DarkMode = b
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}

// Masked returns the settings as key/value pairs with secrets hidden.
func (s Settings) Masked() map[string]string {
	out := make(map[string]string, len(Keys()))
	for _, key := range Keys() {
		v, _ := s.Get(key)
		if isSecret(key) && v != "" {
			v = maskedSecret
		}
		out[key] = v
	}
	return out
}

// samePersisted reports whether a and b agree on every persisted field.
func samePersisted(a, b Settings) bool {
	for _, key := range Keys() {
		av, _ := a.Get(key)
		bv, _ := b.Get(key)
		if av != bv {
			return false
		}
	}
	return true
}

func isSecret(key string) bool {
	return key == KeyPassword || key == KeyBearerToken
}
