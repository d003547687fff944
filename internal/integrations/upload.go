package integrations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrNotConfigured marks a provider that is missing its configuration. The
// chain skips such providers instead of failing the whole upload.
var ErrNotConfigured = errors.New("provider not configured")

// UploadRequest carries either raw file bytes or a base64 data payload.
type UploadRequest struct {
	FileName    string
	ContentType string
	Data        []byte
	Base64      string
}

// UploadResult is the normalized outcome of an upload.
type UploadResult struct {
	FileURL  string         `json:"file_url"`
	Provider string         `json:"provider"`
	Raw      map[string]any `json:"raw,omitempty"`
}

// UploadProvider is one way of getting a file to public storage.
type UploadProvider interface {
	Name() string
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)
}

// Uploader tries an ordered list of providers until one succeeds.
type Uploader struct {
	providers []UploadProvider
}

// NewUploader builds an upload chain; providers are tried in argument order.
func NewUploader(providers ...UploadProvider) *Uploader {
	return &Uploader{providers: providers}
}

// Upload runs the provider chain. Unconfigured providers are skipped; a
// failing provider is logged and the next one is tried. When every provider
// has been exhausted the collected reasons are returned in one error.
func (u *Uploader) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if len(req.Data) == 0 && req.Base64 == "" {
		return nil, errors.New("no file provided")
	}

	var reasons []string
	for _, p := range u.providers {
		res, err := p.Upload(ctx, req)
		if err == nil {
			res.Provider = p.Name()
			return res, nil
		}
		if errors.Is(err, ErrNotConfigured) {
			reasons = append(reasons, p.Name()+": not configured")
			continue
		}
		log.Warn().Err(err).Str("provider", p.Name()).Msg("Upload provider failed")
		reasons = append(reasons, p.Name()+": "+err.Error())
	}
	return nil, fmt.Errorf("all upload providers failed: %s", strings.Join(reasons, "; "))
}
