package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/arzan03/FileShare/internal/db"
	"github.com/arzan03/FileShare/internal/models"
	"github.com/arzan03/FileShare/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memFileStore struct {
	mu        sync.Mutex
	files     map[string]models.File
	clock     time.Time
	createErr error
	updateErr error
	updates   int
}

func newMemFileStore() *memFileStore {
	return &memFileStore{
		files: make(map[string]models.File),
		clock: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *memFileStore) Create(_ context.Context, f *models.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.clock = s.clock.Add(time.Second)
	f.ID = primitive.NewObjectID()
	f.CreatedAt = s.clock
	f.Downloads = 0
	s.files[f.ID.Hex()] = *f
	return nil
}

func (s *memFileStore) FindByID(_ context.Context, id string) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &f, nil
}

func (s *memFileStore) ListByOwner(_ context.Context, owner string, limit int64) ([]models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.File, 0)
	for _, f := range s.files {
		if f.Owner == owner {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memFileStore) Update(_ context.Context, id string, u models.FileUpdate) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	f, ok := s.files[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	if u.Filename != nil {
		f.Filename = *u.Filename
	}
	if u.URL != nil {
		f.URL = *u.URL
	}
	if u.StorageID != nil {
		f.StorageID = *u.StorageID
	}
	s.files[id] = f
	s.updates++
	return &f, nil
}

func (s *memFileStore) IncrementDownloads(_ context.Context, id string) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	f.Downloads++
	s.files[id] = f
	return &f, nil
}

func (s *memFileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.files, id)
	return nil
}

func (s *memFileStore) CountAll(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.files)), nil
}

func (s *memFileStore) SumSize(_ context.Context, owner string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, f := range s.files {
		if owner == "" || f.Owner == owner {
			total += f.Size
		}
	}
	return total, nil
}

// fakeBackend records stored objects and can be told to fail.
type fakeBackend struct {
	mu         sync.Mutex
	objects    map[string][]byte
	lastDest   storage.Destination
	putErr     error
	deleteErr  error
	renameErr  error
	presignErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{objects: make(map[string][]byte)}
}

func (b *fakeBackend) Put(_ context.Context, dest storage.Destination, filename string, body io.Reader, _ int64, _ string) (storage.Object, error) {
	if b.putErr != nil {
		return storage.Object{}, b.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return storage.Object{}, err
	}
	key := storage.NewObjectKey("file-share-app", dest.Category, filename)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	b.lastDest = dest
	return storage.Object{URL: storage.ObjectURL("http://cdn.test", "bucket", key), Key: key}, nil
}

func (b *fakeBackend) Delete(_ context.Context, key string) error {
	if b.deleteErr != nil {
		return b.deleteErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

func (b *fakeBackend) Rename(_ context.Context, key, newKey string) (storage.Object, error) {
	if b.renameErr != nil {
		return storage.Object{}, b.renameErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return storage.Object{}, errors.New("no such key")
	}
	delete(b.objects, key)
	b.objects[newKey] = data
	return storage.Object{URL: storage.ObjectURL("http://cdn.test", "bucket", newKey), Key: newKey}, nil
}

func (b *fakeBackend) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	if b.presignErr != nil {
		return "", b.presignErr
	}
	return signedURL(key, ttl), nil
}

func signedURL(key string, ttl time.Duration) string {
	return "http://cdn.test/bucket/" + key + "?expires=" + ttl.String()
}

func (b *fakeBackend) has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok
}

func (b *fakeBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

type memUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
	err   error
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]models.User)}
}

func (s *memUserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return db.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now()
	s.users[u.ID.Hex()] = *u
	return nil
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *memUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &u, nil
}

func (s *memUserStore) Count(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	return int64(len(s.users)), nil
}

func (s *memUserStore) CountActive(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	var n int64
	for _, u := range s.users {
		if u.Status == models.UserStatusActive {
			n++
		}
	}
	return n, nil
}
