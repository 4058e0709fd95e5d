package evidence

import (
	"fmt"
	"itad/client/s3"
	"itad/config"
	"strings"
)

const (
	BackendOSS = "oss"
	BackendS3  = "s3"
)

// NewStorage builds the object storage selected by evidence.backend.
func NewStorage(cfg config.Config) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Evidence.Backend)) {
	case BackendOSS:
		storage, err := s3.NewOSSStorage(cfg.OSS)
		if err != nil {
			return nil, err
		}
		return storage, nil
	case BackendS3:
		uploader, err := s3.NewUploader(cfg.S3)
		if err != nil {
			return nil, err
		}
		return uploader, nil
	default:
		return nil, fmt.Errorf("unknown evidence backend '%s'", cfg.Evidence.Backend)
	}
}
