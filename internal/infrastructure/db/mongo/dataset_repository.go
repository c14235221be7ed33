package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/opendatahub/dataset-api/internal/core/domain"
	"github.com/opendatahub/dataset-api/internal/core/ports"
)

const datasetsCollection = "datasets"

type DatasetRepository struct {
	coll *mongo.Collection
}

func NewDatasetRepository(db *mongo.Database) *DatasetRepository {
	return &DatasetRepository{coll: db.Collection(datasetsCollection)}
}

type mongoDataset struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty"`
	Title            string              `bson:"title"`
	Description      string              `bson:"description"`
	Category         string              `bson:"category"`
	Tags             []string            `bson:"tags"`
	Year             int                 `bson:"year,omitempty"`
	Source           string              `bson:"source,omitempty"`
	Formats          []string            `bson:"formats"`
	FilePath         string              `bson:"file_path"`
	FileOriginalName string              `bson:"file_original_name"`
	Preview          []domain.Row        `bson:"preview"`
	RecordsCount     int                 `bson:"records_count"`
	IsPremium        bool                `bson:"is_premium"`
	CreatedBy        *primitive.ObjectID `bson:"created_by,omitempty"`
	CreatedAt        time.Time           `bson:"created_at"`
	Deleted          bool                `bson:"deleted"`
}

func (md mongoDataset) toDomain() *domain.Dataset {
	d := &domain.Dataset{
		ID:               md.ID.Hex(),
		Title:            md.Title,
		Description:      md.Description,
		Category:         md.Category,
		Tags:             md.Tags,
		Year:             md.Year,
		Source:           md.Source,
		Formats:          md.Formats,
		FilePath:         md.FilePath,
		FileOriginalName: md.FileOriginalName,
		Preview:          md.Preview,
		RecordsCount:     md.RecordsCount,
		IsPremium:        md.IsPremium,
		CreatedAt:        md.CreatedAt.UTC(),
		Deleted:          md.Deleted,
	}
	if md.CreatedBy != nil {
		d.CreatedBy = md.CreatedBy.Hex()
	}
	return d
}

func (r *DatasetRepository) Insert(ctx context.Context, d *domain.Dataset) (*domain.Dataset, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoDataset{
		Title:            d.Title,
		Description:      d.Description,
		Category:         d.Category,
		Tags:             d.Tags,
		Year:             d.Year,
		Source:           d.Source,
		Formats:          d.Formats,
		FilePath:         d.FilePath,
		FileOriginalName: d.FileOriginalName,
		Preview:          d.Preview,
		RecordsCount:     d.RecordsCount,
		IsPremium:        d.IsPremium,
		CreatedAt:        d.CreatedAt,
	}
	if d.CreatedBy != "" {
		oid, err := primitive.ObjectIDFromHex(d.CreatedBy)
		if err != nil {
			return nil, fmt.Errorf("invalid creator id: %w", err)
		}
		doc.CreatedBy = &oid
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert dataset: %w", err)
	}

	created := *d
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

// notDeletedByID builds the lookup filter shared by every read and write
// path: tombstoned records are invisible, a malformed id behaves like a
// missing one.
func notDeletedByID(id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrDatasetNotFound
	}
	return bson.M{"_id": oid, "deleted": false}, nil
}

func (r *DatasetRepository) FindByID(ctx context.Context, id string) (*domain.Dataset, error) {
	filter, err := notDeletedByID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var md mongoDataset
	if err := r.coll.FindOne(ctx, filter).Decode(&md); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDatasetNotFound
		}
		return nil, fmt.Errorf("find dataset: %w", err)
	}
	return md.toDomain(), nil
}

func (r *DatasetRepository) List(ctx context.Context, filter ports.ListDatasetsFilter) ([]*domain.Dataset, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{"deleted": false}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Year != 0 {
		query["year"] = filter.Year
	}
	if len(filter.Tags) > 0 {
		query["tags"] = bson.M{"$in": filter.Tags}
	}
	if filter.Query != "" {
		query["$text"] = bson.M{"$search": filter.Query}
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count datasets: %w", err)
	}

	skip := int64(filter.Page-1) * int64(filter.Limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(filter.Limit)).
		SetProjection(bson.M{"preview": 0})

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list datasets: %w", err)
	}
	defer cur.Close(ctx)

	items, err := decodeDatasets(ctx, cur)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *DatasetRepository) Latest(ctx context.Context, n int) ([]*domain.Dataset, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(n)).
		SetProjection(bson.M{"preview": 0})

	cur, err := r.coll.Find(ctx, bson.M{"deleted": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("latest datasets: %w", err)
	}
	defer cur.Close(ctx)

	return decodeDatasets(ctx, cur)
}

func decodeDatasets(ctx context.Context, cur *mongo.Cursor) ([]*domain.Dataset, error) {
	items := make([]*domain.Dataset, 0)
	for cur.Next(ctx) {
		var md mongoDataset
		if err := cur.Decode(&md); err != nil {
			return nil, fmt.Errorf("decode dataset: %w", err)
		}
		items = append(items, md.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate datasets: %w", err)
	}
	return items, nil
}

// Update applies fields in a single $set and returns the updated document.
func (r *DatasetRepository) Update(ctx context.Context, id string, fields map[string]any) (*domain.Dataset, error) {
	filter, err := notDeletedByID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var md mongoDataset
	err = r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": fields}, opts).Decode(&md)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDatasetNotFound
		}
		return nil, fmt.Errorf("update dataset: %w", err)
	}
	return md.toDomain(), nil
}

func (r *DatasetRepository) SoftDelete(ctx context.Context, id string) error {
	filter, err := notDeletedByID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"deleted": true}})
	if err != nil {
		return fmt.Errorf("soft delete dataset: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrDatasetNotFound
	}
	return nil
}

// EnsureIndexes creates the text index over title/tags/source plus the
// category and recency indexes backing the list filters.
func (r *DatasetRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "title", Value: "text"},
			{Key: "tags", Value: "text"},
			{Key: "source", Value: "text"},
		}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
