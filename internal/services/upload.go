package services

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/GregMSThompson/wallet-api/internal/dto"
	"github.com/GregMSThompson/wallet-api/internal/errs"
	"github.com/GregMSThompson/wallet-api/pkg/logger"
)

const (
	maxReceiptSize = 10 << 20
	maxAvatarSize  = 5 << 20
)

var uploadTypes = map[dto.UploadKind]map[string]string{
	dto.UploadReceipt: {
		"image/jpeg":      ".jpg",
		"image/png":       ".png",
		"application/pdf": ".pdf",
	},
	dto.UploadAvatar: {
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
	},
}

type objectUploader interface {
	Upload(ctx context.Context, object, contentType string, size int64, r io.Reader, progress func(pct int)) (string, error)
}

type photoSetter interface {
	SetPhotoURL(ctx context.Context, uid, url string) error
}

type uploadService struct {
	storage objectUploader
	users   photoSetter
}

func NewUploadService(storage objectUploader, users photoSetter) *uploadService {
	return &uploadService{storage: storage, users: users}
}

// Upload stores a receipt or avatar under the owner's prefix and returns its
// download URL. An avatar also becomes the profile photo.
func (s *uploadService) Upload(ctx context.Context, uid string, up dto.Upload) (*dto.UploadResponse, error) {
	log := logger.FromContext(ctx)

	if !up.Kind.Valid() {
		return nil, errs.NewFieldError("kind", "upload kind must be receipt or avatar")
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.SplitN(up.ContentType, ";", 2)[0]))
	ext, ok := uploadTypes[up.Kind][contentType]
	if !ok {
		return nil, errs.NewFieldError("file", "unsupported file type")
	}
	limit := int64(maxReceiptSize)
	if up.Kind == dto.UploadAvatar {
		limit = maxAvatarSize
	}
	if up.Size <= 0 || up.Size > limit {
		return nil, errs.NewFieldError("file", "file is empty or too large")
	}

	object := string(up.Kind) + "s/" + uid + "/" + uuid.NewString() + ext

	last := -1
	url, err := s.storage.Upload(ctx, object, contentType, up.Size, io.LimitReader(up.Body, limit), func(pct int) {
		if pct != last {
			last = pct
			log.Debug("upload progress", "object", object, "percent", pct)
		}
	})
	if err != nil {
		log.Error("failed to upload file", "object", object, "error", err)
		return nil, err
	}

	if up.Kind == dto.UploadAvatar {
		if err := s.users.SetPhotoURL(ctx, uid, url); err != nil {
			return nil, err
		}
	}

	log.Info("file uploaded", "object", object, "kind", up.Kind, "size", up.Size)
	return &dto.UploadResponse{URL: url}, nil
}
