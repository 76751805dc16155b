package reference

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"unicode/utf8"
)

// TypeFile is the type tag carried by references built from files
const TypeFile = "file"

// ErrNotUTF8 is returned when file content cannot be decoded as UTF-8
var ErrNotUTF8 = errors.New("content is not valid UTF-8")

// Reference summarizes a resolved file prepared for upload
type Reference struct {
	Type        string `json:"type" yaml:"type"`
	ContentHash string `json:"content_hash" yaml:"content_hash"`
	Text        string `json:"text" yaml:"text"`
	SizeBytes   int    `json:"size_bytes" yaml:"size_bytes"`
	Path        string `json:"path" yaml:"path"`
}

// Hash returns the hex-encoded SHA-256 digest of data
func Hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// NewFile builds a file reference from the raw bytes read at path
func NewFile(path string, data []byte) (Reference, error) {
	if !utf8.Valid(data) {
		return Reference{}, ErrNotUTF8
	}
	return Reference{
		Type:        TypeFile,
		ContentHash: Hash(data),
		Text:        string(data),
		SizeBytes:   len(data),
		Path:        path,
	}, nil
}

// ShortHash returns the first 12 characters of the content hash
func (r Reference) ShortHash() string {
	if len(r.ContentHash) <= 12 {
		return r.ContentHash
	}
	return r.ContentHash[:12]
}
