package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"together-backend/internal/integrations"
	"together-backend/internal/middleware"

	"github.com/rs/zerolog/log"
)

// maxUploadBytes caps the in-memory multipart buffer.
const maxUploadBytes = 25 << 20 // 25 MiB

// UploadHandler accepts a multipart file or a base64 payload and runs the
// upload provider chain.
type UploadHandler struct {
	uploader *integrations.Uploader
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploader *integrations.Uploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// Base64UploadRequest is the JSON alternative to a multipart upload.
type Base64UploadRequest struct {
	Base64      string `json:"base64"`
	FileName    string `json:"file_name,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// Upload handles POST /api/v1/uploads
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req integrations.UploadRequest

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			respondError(w, "invalid multipart body", http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			respondError(w, "file is required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			respondError(w, "failed to read file", http.StatusBadRequest)
			return
		}
		req = integrations.UploadRequest{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
	default:
		var body Base64UploadRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if body.Base64 == "" {
			respondError(w, "base64 is required", http.StatusBadRequest)
			return
		}
		req = integrations.UploadRequest{
			FileName:    body.FileName,
			ContentType: body.ContentType,
			Base64:      body.Base64,
		}
	}

	result, err := h.uploader.Upload(ctx, req)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("file_name", req.FileName).
			Msg("Upload failed")
		respondError(w, err.Error(), http.StatusBadGateway)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("provider", result.Provider).
		Str("file_url", result.FileURL).
		Msg("File uploaded")

	respondJSON(w, http.StatusOK, result)
}
