package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/h2non/filetype/types"
	"go.uber.org/zap"

	"github.com/lkhn/wealth-backend/internal/services"
)

const (
	maxUploadSize = 10 << 20
	sniffLen      = 261
)

type UploadResponse struct {
	URL string `json:"url"`
}

func allowedAttachment(kind types.Type) bool {
	switch kind {
	case matchers.TypeJpeg, matchers.TypePng, matchers.TypeGif, matchers.TypeWebp, matchers.TypePdf:
		return true
	}
	return false
}

// UploadAttachment stores a forum attachment on Cloudinary and returns its URL.
// The type is sniffed from content, not from the filename or Content-Type.
func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	if h.Uploader == nil {
		writeError(w, http.StatusServiceUnavailable, "Uploads are not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Failed to read file")
		return
	}
	kind, _ := filetype.Match(head[:n])
	if !allowedAttachment(kind) {
		writeError(w, http.StatusUnsupportedMediaType, "Only JPEG, PNG, GIF, WebP and PDF files are allowed")
		return
	}

	url, err := h.Uploader.UploadFileFromHeader(r.Context(), header, services.ForumAttachmentFolder)
	if err != nil {
		zap.S().Errorw("upload failed", "filename", header.Filename, "type", kind.MIME.Value, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{URL: url})
}
