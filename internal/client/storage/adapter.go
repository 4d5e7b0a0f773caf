package storageclient

import (
	"context"
	"fmt"
	"io"
	"net/url"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/GregMSThompson/wallet-api/internal/errs"
)

const chunkSize = 256 * 1024

// Adapter writes objects to the Firebase Storage bucket and returns the
// token-protected download URL that Firebase clients use.
type Adapter struct {
	bucket     *gcs.BucketHandle
	bucketName string
	newToken   func() string
}

func NewAdapter(bucket *gcs.BucketHandle, bucketName string) *Adapter {
	return &Adapter{bucket: bucket, bucketName: bucketName, newToken: uuid.NewString}
}

// Upload streams r into object. progress, when set, receives percentages
// from 0 to 100.
func (a *Adapter) Upload(ctx context.Context, object, contentType string, size int64, r io.Reader, progress func(pct int)) (string, error) {
	token := a.newToken()

	w := a.bucket.Object(object).NewWriter(ctx)
	w.ContentType = contentType
	w.ChunkSize = chunkSize
	w.Metadata = map[string]string{"firebaseStorageDownloadTokens": token}
	if progress != nil {
		progress(0)
		w.ProgressFunc = func(written int64) {
			progress(percent(written, size))
		}
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", errs.NewExternalServiceError("storage", "failed to upload file", true, err)
	}
	if err := w.Close(); err != nil {
		return "", errs.NewExternalServiceError("storage", "failed to upload file", true, err)
	}
	if progress != nil {
		progress(100)
	}

	return DownloadURL(a.bucketName, object, token), nil
}

func (a *Adapter) Delete(ctx context.Context, object string) error {
	if err := a.bucket.Object(object).Delete(ctx); err != nil {
		return errs.NewExternalServiceError("storage", "failed to delete file", false, err)
	}
	return nil
}

func DownloadURL(bucket, object, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(object), url.QueryEscape(token))
}

func percent(written, size int64) int {
	if size <= 0 {
		return 0
	}
	p := int(written * 100 / size)
	return min(max(p, 0), 100)
}
