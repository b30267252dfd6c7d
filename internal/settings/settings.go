// Package settings persists the user settings and per-domain sync rules
// in a YAML file and keeps an in-memory snapshot current.
package settings

import (
	"errors"
	"strings"

	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	"github.com/Filatest/sync-your-cookie/internal/kv"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DomainConfig holds the sync rules for one domain key.
type DomainConfig struct {
	AutoPush   bool   `yaml:"autoPush" json:"autoPush"`
	AutoPull   bool   `yaml:"autoPull" json:"autoPull"`
	SourceURL  string `yaml:"sourceUrl,omitempty" json:"sourceUrl,omitempty"`
	FavIconURL string `yaml:"favIconUrl,omitempty" json:"favIconUrl,omitempty"`
}

// Settings is the document stored in settings.yaml.
type Settings struct {
	StorageKey              string   `yaml:"storageKey" json:"storageKey" validate:"required"`
	IncognitoStorageKey     string   `yaml:"incognitoStorageKey" json:"incognitoStorageKey" validate:"required,nefield=StorageKey"`
	StorageKeyList          []string `yaml:"storageKeyList,omitempty" json:"storageKeyList,omitempty"`
	IncognitoStorageKeyList []string `yaml:"incognitoStorageKeyList,omitempty" json:"incognitoStorageKeyList,omitempty"`
	ProtobufEncoding        bool     `yaml:"protobufEncoding" json:"protobufEncoding"`
	IncludeLocalStorage     bool     `yaml:"includeLocalStorage" json:"includeLocalStorage"`
	EnableIncognitoSync     bool     `yaml:"enableIncognitoSync" json:"enableIncognitoSync"`
	ForceIncognitoSync      bool     `yaml:"forceIncognitoSync" json:"forceIncognitoSync"`
	ContextMenu             bool     `yaml:"contextMenu" json:"contextMenu"`

	Domains map[string]DomainConfig `yaml:"domains,omitempty" json:"domains,omitempty"`
}

// Defaults returns the settings used when no file exists.
func Defaults() Settings {
	return Settings{
		StorageKey:              kv.DefaultKey,
		IncognitoStorageKey:     kv.DefaultIncognitoKey,
		StorageKeyList:          []string{kv.DefaultKey},
		IncognitoStorageKeyList: []string{kv.DefaultIncognitoKey},
		ProtobufEncoding:        true,
	}
}

// Encoding returns the blob encoding selected by ProtobufEncoding.
func (s Settings) Encoding() cookiemap.Encoding {
	return cookiemap.EncodingFor(s.ProtobufEncoding)
}

// Keys returns the remote keys for both planes.
func (s Settings) Keys() kv.Keys {
	return kv.Keys{Normal: s.StorageKey, Incognito: s.IncognitoStorageKey}.WithDefaults()
}

// Validate checks the invariants of s.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return err
	}
	for k := range s.Domains {
		if strings.TrimSpace(k) == "" {
			return errors.New("settings: empty domain key")
		}
	}
	return nil
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	out := s
	out.StorageKeyList = append([]string(nil), s.StorageKeyList...)
	out.IncognitoStorageKeyList = append([]string(nil), s.IncognitoStorageKeyList...)
	if s.Domains != nil {
		out.Domains = make(map[string]DomainConfig, len(s.Domains))
		for k, v := range s.Domains {
			out.Domains[k] = v
		}
	}
	return out
}

// Domain returns the rules stored for key.
func (s Settings) Domain(key string) (DomainConfig, bool) {
	c, ok := s.Domains[key]
	return c, ok
}

// AutoPushKeyFor returns the first configured key with autoPush set that
// domain ends with.
func (s Settings) AutoPushKeyFor(domain string) (string, bool) {
	for key, c := range s.Domains {
		if c.AutoPush && cookiemap.SuffixMatch(domain, key) {
			return key, true
		}
	}
	return "", false
}

// AutoPullKeyFor returns the first configured key with autoPull set that
// host ends with.
func (s Settings) AutoPullKeyFor(host string) (string, bool) {
	for key, c := range s.Domains {
		if c.AutoPull && cookiemap.SuffixMatch(host, key) {
			return key, true
		}
	}
	return "", false
}

// rememberKey moves key to the front of list.
func rememberKey(list []string, key string) []string {
	if key == "" {
		return list
	}
	out := []string{key}
	for _, k := range list {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}
