package dto

import "io"

type UploadKind string

const (
	UploadReceipt UploadKind = "receipt"
	UploadAvatar  UploadKind = "avatar"
)

func (k UploadKind) Valid() bool {
	return k == UploadReceipt || k == UploadAvatar
}

type Upload struct {
	Kind        UploadKind
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type UploadResponse struct {
	URL string `json:"url"`
}
