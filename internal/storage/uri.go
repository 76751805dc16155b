package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// SupportedSchemes lists all currently supported storage URI schemes
var SupportedSchemes = []string{"file", "sqlite", "postgres", "postgresql"}

// StorageURI represents a parsed storage backend URI
type StorageURI struct {
	Scheme string // Storage backend type (e.g., "file", "sqlite")
	Host   string // Host for network backends
	Path   string // Path to storage resource (file path or database name)
	Raw    string // Original URI string for logging/debugging
}

// NormalizeStorageURI ensures the URI has a scheme, prepending "file://" if missing
func NormalizeStorageURI(uri string) string {
	if uri == "" {
		return uri
	}
	if !strings.Contains(uri, "://") {
		return "file://" + uri
	}
	return uri
}

// ParseStorageURI parses a storage URI string into its components
func ParseStorageURI(uri string) (*StorageURI, error) {
	if uri == "" {
		return nil, fmt.Errorf("storage URI cannot be empty")
	}

	normalized := NormalizeStorageURI(uri)

	parsed, err := url.Parse(normalized)
	if err != nil {
		return nil, fmt.Errorf("invalid URI format: %w", err)
	}

	if parsed.Scheme == "" {
		return nil, fmt.Errorf("URI must have a scheme (e.g., file://)")
	}

	if err := validateScheme(parsed.Scheme); err != nil {
		return nil, err
	}

	if parsed.Scheme == "postgres" || parsed.Scheme == "postgresql" {
		if parsed.Host == "" {
			return nil, fmt.Errorf("postgres URI must include a host: postgres://<host>/<database>")
		}
		database := strings.TrimPrefix(parsed.Path, "/")
		if database == "" {
			return nil, fmt.Errorf("postgres URI must include a database: postgres://<host>/<database>")
		}
		return &StorageURI{
			Scheme: parsed.Scheme,
			Host:   parsed.Host,
			Path:   database,
			Raw:    uri,
		}, nil
	}

	// file:// and sqlite:// both point at a local path
	path := parsed.Path
	if path == "" && parsed.Opaque != "" {
		path = parsed.Opaque
	}
	// For file://./path format, the path starts with ./
	if parsed.Host == "." && strings.HasPrefix(path, "/") {
		path = "./" + strings.TrimPrefix(path, "/")
	} else if parsed.Host != "" && path != "" {
		// Windows drive letter: file://C:/path
		if len(parsed.Host) == 1 && strings.ToUpper(parsed.Host) >= "A" && strings.ToUpper(parsed.Host) <= "Z" {
			path = parsed.Host + ":" + path
		} else if parsed.Host != "." {
			// Relative path without ./ prefix: sqlite://data/staged.db
			path = parsed.Host + path
		}
	}

	if path == "" {
		return nil, fmt.Errorf("storage URI must have a path")
	}

	return &StorageURI{
		Scheme: parsed.Scheme,
		Host:   parsed.Host,
		Path:   path,
		Raw:    uri,
	}, nil
}

// validateScheme checks if the scheme is supported
func validateScheme(scheme string) error {
	for _, s := range SupportedSchemes {
		if scheme == s {
			return nil
		}
	}

	return fmt.Errorf("unsupported storage scheme %q; supported schemes: %s",
		scheme, strings.Join(SupportedSchemes, ", "))
}

// IsFileScheme returns true if this is a file:// URI
func (u *StorageURI) IsFileScheme() bool {
	return u.Scheme == "file"
}

// IsSQLScheme returns true for database-backed URIs
func (u *StorageURI) IsSQLScheme() bool {
	return u.Scheme == "sqlite" || u.Scheme == "postgres" || u.Scheme == "postgresql"
}

// String returns the original URI string
func (u *StorageURI) String() string {
	return u.Raw
}
