package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// File is the metadata record of one uploaded object.
type File struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Filename     string             `bson:"filename" json:"filename"`
	URL          string             `bson:"url" json:"url"`
	StorageID    string             `bson:"storage_id" json:"-"`
	Size         int64              `bson:"size" json:"size"`
	ContentType  string             `bson:"content_type,omitempty" json:"contentType,omitempty"`
	Category     string             `bson:"category,omitempty" json:"category,omitempty"`
	Downloads    int64              `bson:"downloads" json:"downloads"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	ExpiresAt    *time.Time         `bson:"expires_at,omitempty" json:"expiresAt,omitempty"`
	PasswordHash *string            `bson:"password_hash,omitempty" json:"-"`
	Owner        string             `bson:"owner" json:"owner"`
}

// HasPassword reports whether downloading the file requires a password.
func (f *File) HasPassword() bool {
	return f.PasswordHash != nil && *f.PasswordHash != ""
}

// FileUpdate lists the fields a rename may change. The owner is deliberately
// absent so no update path can reassign it.
type FileUpdate struct {
	Filename  *string
	URL       *string
	StorageID *string
}

// UploadView is returned to the uploader.
type UploadView struct {
	ID          string    `json:"_id"`
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"createdAt"`
	HasPassword bool      `json:"hasPassword"`
}

// ListView is the owner-facing shape used by listings and rename. URL is nil
// for protected files.
type ListView struct {
	ID          string    `json:"_id"`
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
	Downloads   int64     `json:"downloads"`
	URL         *string   `json:"url"`
	HasPassword bool      `json:"hasPassword"`
}

// DownloadView is the transfer descriptor handed out after a granted download.
type DownloadView struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
}

func (f *File) UploadView() UploadView {
	return UploadView{
		ID:          f.ID.Hex(),
		Filename:    f.Filename,
		Size:        f.Size,
		URL:         f.URL,
		CreatedAt:   f.CreatedAt,
		HasPassword: f.HasPassword(),
	}
}

func (f *File) ListView() ListView {
	v := ListView{
		ID:          f.ID.Hex(),
		Filename:    f.Filename,
		Size:        f.Size,
		CreatedAt:   f.CreatedAt,
		Downloads:   f.Downloads,
		HasPassword: f.HasPassword(),
	}
	if !v.HasPassword {
		url := f.URL
		v.URL = &url
	}
	return v
}

func (f *File) DownloadView() DownloadView {
	return DownloadView{Filename: f.Filename, Size: f.Size, URL: f.URL}
}
