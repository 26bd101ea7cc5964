package storage

import (
	"net/url"
	"path/filepath"
	"strings"

	"conclave.io/conclave/lib/errors"
)

// Config describes the storage backend, parsed from a URI:
//
//	memory://
//	file:///var/lib/conclave/db
type Config struct {
	Scheme string
	Path   string
}

func NewConfigFromString(s string) (config *Config, err error) {
	var u *url.URL
	if u, err = url.Parse(s); err != nil {
		err = errors.InvalidStorageConfig.Clone().SetData("error", err.Error())
		return
	}

	return NewConfigFromURL(u)
}

func NewConfigFromURL(u *url.URL) (config *Config, err error) {
	switch u.Scheme {
	case "memory":
		config = &Config{Scheme: "memory"}
	case "file":
		path := filepath.Join(u.Host, u.Path)
		if len(strings.TrimSpace(path)) < 1 {
			err = errors.InvalidStorageConfig.Clone().SetData("error", "empty path")
			return
		}
		if path, err = filepath.Abs(path); err != nil {
			err = errors.InvalidStorageConfig.Clone().SetData("error", err.Error())
			return
		}
		config = &Config{Scheme: "file", Path: path}
	default:
		err = errors.InvalidStorageConfig.Clone().SetData("scheme", u.Scheme)
	}

	return
}

func (c *Config) String() string {
	u := url.URL{Scheme: c.Scheme, Path: c.Path}
	return u.String()
}
