package integrations

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"github.com/go-resty/resty/v2"

	"together-backend/internal/config"
)

// CloudinaryProvider uploads through Cloudinary's unsigned upload endpoint
// using a public cloud name and upload preset.
type CloudinaryProvider struct {
	cloudName    string
	uploadPreset string
	client       *resty.Client
}

// NewCloudinaryProvider creates the provider; with empty settings every
// upload returns ErrNotConfigured.
func NewCloudinaryProvider(cfg config.CloudinaryConfig) *CloudinaryProvider {
	return &CloudinaryProvider{
		cloudName:    cfg.CloudName,
		uploadPreset: cfg.UploadPreset,
		client:       resty.New(),
	}
}

func (p *CloudinaryProvider) Name() string { return "cloudinary" }

func (p *CloudinaryProvider) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if p.cloudName == "" || p.uploadPreset == "" {
		return nil, ErrNotConfigured
	}

	url := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/auto/upload", p.cloudName)

	r := p.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{"upload_preset": p.uploadPreset})

	if len(req.Data) > 0 {
		name := req.FileName
		if name == "" {
			name = "upload"
		}
		r = r.SetFileReader("file", name, bytes.NewReader(req.Data))
	} else {
		payload := req.Base64
		if req.ContentType != "" && !isDataURI(payload) {
			payload = fmt.Sprintf("data:%s;base64,%s", req.ContentType, payload)
		}
		r = r.SetFormData(map[string]string{"file": payload})
	}

	var body map[string]any
	resp, err := r.SetResult(&body).SetError(&body).Post(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("cloudinary upload failed: %s", cloudinaryError(body))
	}

	fileURL, _ := body["secure_url"].(string)
	if fileURL == "" {
		return nil, fmt.Errorf("cloudinary response missing secure_url")
	}
	return &UploadResult{FileURL: fileURL, Raw: body}, nil
}

func isDataURI(s string) bool {
	return len(s) > 5 && s[:5] == "data:"
}

func cloudinaryError(body map[string]any) string {
	if e, ok := body["error"].(map[string]any); ok {
		if msg, ok := e["message"].(string); ok {
			return msg
		}
	}
	return "unknown error"
}

// decodePayload returns the raw bytes of the request, decoding base64 when
// no binary payload was supplied.
func decodePayload(req UploadRequest) ([]byte, error) {
	if len(req.Data) > 0 {
		return req.Data, nil
	}
	payload := req.Base64
	if isDataURI(payload) {
		if i := bytes.IndexByte([]byte(payload), ','); i >= 0 {
			payload = payload[i+1:]
		}
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 payload: %w", err)
	}
	return data, nil
}
