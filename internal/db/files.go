package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arzan03/FileShare/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const FilesCollection = "files"

// FileStore persists file records in MongoDB.
type FileStore struct {
	coll *mongo.Collection
}

func NewFileStore(database *mongo.Database) *FileStore {
	return &FileStore{coll: database.Collection(FilesCollection)}
}

// EnsureIndexes creates the owner listing index and the unique storage id index.
func (s *FileStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "storage_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create file indexes: %w", err)
	}
	return nil
}

// Create assigns the id and creation time and inserts the record.
func (s *FileStore) Create(ctx context.Context, file *models.File) error {
	if file.Filename == "" || file.StorageID == "" || file.Owner == "" {
		return errors.New("filename, storage id and owner are required")
	}
	if file.Size < 0 {
		return errors.New("size must not be negative")
	}

	file.ID = primitive.NewObjectID()
	file.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	file.Downloads = 0

	if _, err := s.coll.InsertOne(ctx, file); err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

func (s *FileStore) FindByID(ctx context.Context, id string) (*models.File, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var file models.File
	err = s.coll.FindOne(ctx, bson.M{"_id": objID}).Decode(&file)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find file: %w", err)
	}
	return &file, nil
}

// ListByOwner returns the owner's records newest first. A limit of zero or
// less returns every record.
func (s *FileStore) ListByOwner(ctx context.Context, owner string, limit int64) ([]models.File, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := s.coll.Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve files: %w", err)
	}
	defer cursor.Close(ctx)

	files := make([]models.File, 0)
	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("error decoding file metadata: %w", err)
	}
	return files, nil
}

// Update applies the non-nil fields in a single $set and returns the updated record.
func (s *FileStore) Update(ctx context.Context, id string, update models.FileUpdate) (*models.File, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.M{}
	if update.Filename != nil {
		set["filename"] = *update.Filename
	}
	if update.URL != nil {
		set["url"] = *update.URL
	}
	if update.StorageID != nil {
		set["storage_id"] = *update.StorageID
	}
	if len(set) == 0 {
		return s.FindByID(ctx, id)
	}

	return s.findOneAndUpdate(ctx, objID, bson.M{"$set": set})
}

// IncrementDownloads atomically bumps the download counter.
func (s *FileStore) IncrementDownloads(ctx context.Context, id string) (*models.File, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findOneAndUpdate(ctx, objID, bson.M{"$inc": bson.M{"downloads": 1}})
}

func (s *FileStore) findOneAndUpdate(ctx context.Context, objID primitive.ObjectID, update bson.M) (*models.File, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var file models.File
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&file)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update file: %w", err)
	}
	return &file, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *FileStore) CountAll(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count files: %w", err)
	}
	return n, nil
}

// SumSize totals the size of the owner's records, or of all records when
// owner is empty.
func (s *FileStore) SumSize(ctx context.Context, owner string) (int64, error) {
	pipeline := mongo.Pipeline{}
	if owner != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"owner": owner}}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: nil},
		{Key: "total", Value: bson.M{"$sum": "$size"}},
	}}})

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("sum file sizes: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("decode size total: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
