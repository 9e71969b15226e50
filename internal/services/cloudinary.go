package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ForumAttachmentFolder is where forum post attachments are uploaded.
const ForumAttachmentFolder = "lkhn/forum"

type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryService{cld: cld}, nil
}

// forumAttachmentFormats are the file types accepted as forum attachments.
var forumAttachmentFormats = api.CldAPIArray{"jpg", "jpeg", "png", "gif", "webp", "pdf"}

// UploadFileFromHeader uploads a forum attachment and returns its secure URL.
// Formats outside forumAttachmentFormats are rejected by Cloudinary.
func (s *CloudinaryService) UploadFileFromHeader(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	res, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         folder,
		ResourceType:   "auto",
		AllowedFormats: forumAttachmentFormats,
		UniqueFilename: api.Bool(true),
		Overwrite:      api.Bool(false),
		Tags:           api.CldAPIArray{"forum"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected %q: %s", fileHeader.Filename, res.Error.Message)
	}
	return res.SecureURL, nil
}
