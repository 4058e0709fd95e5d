package evidence

import (
	"context"
	"io"
	"itad/bizerror"
	"itad/session"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const keyPrefix = "evidences/"

// Storage persists an object and returns the URL it can be fetched from.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

type EvidenceRef struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

var (
	ActiveStorage Storage

	UploadEvidenceFunc = UploadEvidence
)

var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".heic": true, ".pdf": true, ".mp4": true,
}

// UploadEvidence stores a photo or document backing a decision such as an irreparable verdict.
func UploadEvidence(filename, contentType string, r io.Reader, s *session.Session) (*EvidenceRef, error) {
	if s == nil || !s.Perms.HasAnyRole(session.PermTechnician, session.PermSupervisor) {
		return nil, bizerror.ErrForbidden
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, bizerror.NewValidationError("file", "unsupported file type '"+ext+"'")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := keyPrefix + uuid.New().String() + ext
	url, err := ActiveStorage.Put(s.Ctx(), key, r, contentType)
	if err != nil {
		return nil, err
	}
	return &EvidenceRef{Key: key, URL: url}, nil
}
