package models

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mindflowai/mindflow/internal/reference"
)

// StagedReference is a reference waiting in the local outbox for upload
type StagedReference struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	AbsPath     string    `json:"abs_path" gorm:"uniqueIndex;not null"`
	Path        string    `json:"path" gorm:"not null"`
	Type        string    `json:"type" gorm:"not null"`
	ContentHash string    `json:"content_hash" gorm:"index;size:64;not null"`
	Text        string    `json:"text"`
	SizeBytes   int       `json:"size_bytes"`
	StagedAt    time.Time `json:"staged_at"`
}

// TableName pins the table name used by SQL backends
func (StagedReference) TableName() string {
	return "staged_references"
}

// NewStagedReference wraps ref with a fresh id and staging time
func NewStagedReference(ref reference.Reference, now time.Time) *StagedReference {
	return &StagedReference{
		ID:          uuid.NewString(),
		AbsPath:     StagingKey(ref.Path),
		Path:        ref.Path,
		Type:        ref.Type,
		ContentHash: ref.ContentHash,
		Text:        ref.Text,
		SizeBytes:   ref.SizeBytes,
		StagedAt:    now.UTC(),
	}
}

// StagingKey returns the absolute form of path, which identifies a staged
// entry regardless of the directory it was resolved from
func StagingKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// Reference returns the upload record for this staged entry
func (s *StagedReference) Reference() reference.Reference {
	return reference.Reference{
		Type:        s.Type,
		ContentHash: s.ContentHash,
		Text:        s.Text,
		SizeBytes:   s.SizeBytes,
		Path:        s.Path,
	}
}

// Outbox is the root structure of the file backend
type Outbox struct {
	References map[string]*StagedReference `json:"references"`
}

// NewOutbox creates an empty outbox
func NewOutbox() *Outbox {
	return &Outbox{
		References: make(map[string]*StagedReference),
	}
}
