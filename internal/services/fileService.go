package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/arzan03/FileShare/internal/db"
	"github.com/arzan03/FileShare/internal/metrics"
	"github.com/arzan03/FileShare/internal/models"
	"github.com/arzan03/FileShare/internal/storage"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// RecentLimit caps how many uploads ListRecent returns.
const RecentLimit = 10

const (
	defaultStorageTimeout = 30 * time.Second
	defaultDownloadURLTTL = 15 * time.Minute
)

// FileStore is the record store the file service works against.
type FileStore interface {
	Create(ctx context.Context, file *models.File) error
	FindByID(ctx context.Context, id string) (*models.File, error)
	ListByOwner(ctx context.Context, owner string, limit int64) ([]models.File, error)
	Update(ctx context.Context, id string, update models.FileUpdate) (*models.File, error)
	IncrementDownloads(ctx context.Context, id string) (*models.File, error)
	Delete(ctx context.Context, id string) error
	CountAll(ctx context.Context) (int64, error)
	SumSize(ctx context.Context, owner string) (int64, error)
}

// UploadInput carries one multipart upload.
type UploadInput struct {
	OwnerID     string
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
	Password    string
}

// FileService runs the upload, listing, rename, delete and download flows.
// Storage is always mutated before the matching record.
type FileService struct {
	files          FileStore
	backend        storage.Backend
	log            zerolog.Logger
	metrics        *metrics.Metrics
	storageTimeout time.Duration
	downloadTTL    time.Duration
}

type FileServiceOption func(*FileService)

func WithStorageTimeout(d time.Duration) FileServiceOption {
	return func(s *FileService) {
		if d > 0 {
			s.storageTimeout = d
		}
	}
}

// WithDownloadURLTTL sets how long a granted download link stays valid.
func WithDownloadURLTTL(d time.Duration) FileServiceOption {
	return func(s *FileService) {
		if d > 0 {
			s.downloadTTL = d
		}
	}
}

func WithMetrics(m *metrics.Metrics) FileServiceOption {
	return func(s *FileService) { s.metrics = m }
}

func NewFileService(files FileStore, backend storage.Backend, log zerolog.Logger, opts ...FileServiceOption) *FileService {
	s := &FileService{
		files:          files,
		backend:        backend,
		log:            log.With().Str("service", "files").Logger(),
		storageTimeout: defaultStorageTimeout,
		downloadTTL:    defaultDownloadURLTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FileService) Upload(ctx context.Context, in UploadInput) (models.UploadView, error) {
	if len(in.Data) == 0 {
		return models.UploadView{}, newError(KindInvalidInput, "No file uploaded", nil)
	}
	if strings.TrimSpace(in.Filename) == "" {
		return models.UploadView{}, newError(KindInvalidInput, "File name is required", nil)
	}

	dest := storage.Classify(in.ContentType)

	// A blank password means the file is public. A real one is hashed as
	// typed, since downloads compare against the raw input.
	var passwordHash *string
	if strings.TrimSpace(in.Password) != "" {
		hash, err := HashSecret(in.Password)
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return models.UploadView{}, newError(KindInvalidInput, "Password is too long", err)
		}
		if err != nil {
			return models.UploadView{}, newError(KindInternal, "Upload failed", err)
		}
		passwordHash = &hash
	}

	size := in.Size
	if size <= 0 {
		size = int64(len(in.Data))
	}

	sctx, cancel := context.WithTimeout(ctx, s.storageTimeout)
	obj, err := s.backend.Put(sctx, dest, in.Filename, bytes.NewReader(in.Data), int64(len(in.Data)), in.ContentType)
	cancel()
	if err != nil {
		s.metrics.StorageError("put")
		s.log.Error().Err(err).Str("owner", in.OwnerID).Str("filename", in.Filename).Msg("storage upload failed")
		return models.UploadView{}, newError(KindStorageUnavailable, "Upload failed", err)
	}

	file := &models.File{
		Filename:     in.Filename,
		URL:          obj.URL,
		StorageID:    obj.Key,
		Size:         size,
		ContentType:  in.ContentType,
		Category:     dest.Category,
		PasswordHash: passwordHash,
		Owner:        in.OwnerID,
	}
	if err := s.files.Create(ctx, file); err != nil {
		s.log.Error().Err(err).Str("key", obj.Key).Msg("saving file metadata failed, removing stored object")
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.storageTimeout)
		if derr := s.backend.Delete(cctx, obj.Key); derr != nil {
			s.log.Error().Err(derr).Str("key", obj.Key).Msg("cleanup of stored object failed")
		}
		cancel()
		return models.UploadView{}, newError(KindInternal, "Upload failed", err)
	}

	s.metrics.Upload(dest.Category)
	s.log.Info().
		Str("file_id", file.ID.Hex()).
		Str("owner", file.Owner).
		Str("category", dest.Category).
		Int64("size", file.Size).
		Bool("protected", file.HasPassword()).
		Msg("file uploaded")

	return file.UploadView(), nil
}

// ListRecent returns the owner's newest uploads. Direct links of protected
// files are withheld.
func (s *FileService) ListRecent(ctx context.Context, owner string, limit int) ([]models.ListView, error) {
	if limit <= 0 || limit > RecentLimit {
		limit = RecentLimit
	}

	files, err := s.files.ListByOwner(ctx, owner, int64(limit))
	if err != nil {
		return nil, newError(KindInternal, "Failed to fetch uploads", err)
	}

	views := make([]models.ListView, 0, len(files))
	for i := range files {
		if files[i].Owner != owner {
			continue
		}
		views = append(views, files[i].ListView())
	}
	return views, nil
}

// Rename gives the file a new base name, keeping its extension.
func (s *FileService) Rename(ctx context.Context, owner, id, newBaseName string) (models.ListView, error) {
	newBaseName = strings.TrimSpace(newBaseName)
	if newBaseName == "" {
		return models.ListView{}, newError(KindInvalidInput, "New name is required", nil)
	}
	if strings.ContainsAny(newBaseName, "/\\") {
		return models.ListView{}, newError(KindInvalidInput, "New name must not contain path separators", nil)
	}

	file, err := s.loadOwned(ctx, owner, id)
	if err != nil {
		return models.ListView{}, err
	}

	filename := RenamedFilename(file.Filename, newBaseName)

	sctx, cancel := context.WithTimeout(ctx, s.storageTimeout)
	obj, err := s.backend.Rename(sctx, file.StorageID, storage.RenamedKey(file.StorageID, filename))
	cancel()
	if err != nil {
		s.metrics.StorageError("rename")
		s.log.Error().Err(err).Str("file_id", id).Msg("storage rename failed")
		return models.ListView{}, newError(KindStorageUnavailable, "Rename failed", err)
	}

	updated, err := s.files.Update(ctx, id, models.FileUpdate{
		Filename:  &filename,
		URL:       &obj.URL,
		StorageID: &obj.Key,
	})
	if err != nil {
		s.undoRename(ctx, id, obj.Key, file.StorageID, errors.Is(err, db.ErrNotFound))
		if errors.Is(err, db.ErrNotFound) {
			return models.ListView{}, newError(KindNotFound, "File not found", err)
		}
		s.log.Error().Err(err).Str("file_id", id).Str("key", obj.Key).Msg("record update after rename failed")
		return models.ListView{}, newError(KindInternal, "Rename failed", err)
	}

	s.metrics.Rename()
	s.log.Info().Str("file_id", id).Str("filename", filename).Msg("file renamed")
	return updated.ListView(), nil
}

// undoRename puts storage back in line with the record after a failed
// update. When the record is gone the moved object is removed, otherwise it
// is moved back to the key the record still holds.
func (s *FileService) undoRename(ctx context.Context, id, movedKey, originalKey string, recordGone bool) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.storageTimeout)
	defer cancel()

	if recordGone {
		if err := s.backend.Delete(cctx, movedKey); err != nil {
			s.metrics.StorageError("delete")
			s.log.Error().Err(err).Str("file_id", id).Str("key", movedKey).Msg("cleanup of renamed object failed")
		}
		return
	}
	if _, err := s.backend.Rename(cctx, movedKey, originalKey); err != nil {
		s.metrics.StorageError("rename")
		s.log.Error().Err(err).Str("file_id", id).Str("key", movedKey).Str("original_key", originalKey).Msg("rollback of storage rename failed")
	}
}

// RenamedFilename joins newBaseName with the extension of current, taken as
// the text after its last dot. A name without a dot is its own extension,
// so "README" renamed to "notes" becomes "notes.README".
func RenamedFilename(current, newBaseName string) string {
	return newBaseName + "." + current[strings.LastIndex(current, ".")+1:]
}

// Delete removes the object and then its record. When the backend refuses the
// delete the record is kept so the operation can be retried.
func (s *FileService) Delete(ctx context.Context, owner, id string) error {
	file, err := s.loadOwned(ctx, owner, id)
	if err != nil {
		return err
	}

	sctx, cancel := context.WithTimeout(ctx, s.storageTimeout)
	err = s.backend.Delete(sctx, file.StorageID)
	cancel()
	if err != nil {
		s.metrics.StorageError("delete")
		s.log.Error().Err(err).Str("file_id", id).Msg("storage delete failed")
		return newError(KindStorageUnavailable, "Delete failed", err)
	}

	if err := s.files.Delete(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return newError(KindNotFound, "File not found", err)
		}
		return newError(KindInternal, "Delete failed", err)
	}

	s.metrics.Delete()
	s.log.Info().Str("file_id", id).Str("owner", owner).Msg("file deleted")
	return nil
}

// Download checks the password of a protected file, counts the download and
// returns a short-lived signed link to the bytes. Anyone holding the file id
// may call it.
func (s *FileService) Download(ctx context.Context, id string, password *string) (models.DownloadView, error) {
	file, err := s.files.FindByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return models.DownloadView{}, newError(KindNotFound, "File not found", err)
	}
	if err != nil {
		return models.DownloadView{}, newError(KindInternal, "Download failed", err)
	}

	if file.HasPassword() {
		if password == nil || *password == "" {
			s.metrics.Denied("password_required")
			return models.DownloadView{}, newError(KindPasswordRequired, "Password required", nil)
		}
		if !VerifySecret(*password, *file.PasswordHash) {
			s.metrics.Denied("invalid_password")
			s.log.Warn().Str("file_id", id).Msg("download with incorrect password")
			return models.DownloadView{}, newError(KindInvalidPassword, "Incorrect password", nil)
		}
	}

	sctx, cancel := context.WithTimeout(ctx, s.storageTimeout)
	link, err := s.backend.PresignGet(sctx, file.StorageID, s.downloadTTL)
	cancel()
	if err != nil {
		s.metrics.StorageError("presign")
		s.log.Error().Err(err).Str("file_id", id).Msg("signing download link failed")
		return models.DownloadView{}, newError(KindStorageUnavailable, "Download failed", err)
	}

	updated, err := s.files.IncrementDownloads(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return models.DownloadView{}, newError(KindNotFound, "File not found", err)
	}
	if err != nil {
		return models.DownloadView{}, newError(KindInternal, "Download failed", err)
	}

	s.metrics.Download()
	s.log.Debug().Str("file_id", id).Int64("downloads", updated.Downloads).Msg("download granted")

	view := updated.DownloadView()
	view.URL = link
	return view, nil
}

func (s *FileService) loadOwned(ctx context.Context, owner, id string) (*models.File, error) {
	file, err := s.files.FindByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, newError(KindNotFound, "File not found", err)
	}
	if err != nil {
		return nil, newError(KindInternal, "Failed to load file", err)
	}
	if file.Owner != owner {
		return nil, newError(KindForbidden, "Not authorized", nil)
	}
	return file, nil
}
