package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/file"
)

type fileRepository struct {
	coll *mongo.Collection
}

func NewFileRepository(db *DB) file.Repository {
	return &fileRepository{coll: db.db.Collection(filesCollection)}
}

func (repo *fileRepository) CreateFile(ctx context.Context, f file.File) (file.File, error) {
	f.ID = primitive.NewObjectID().Hex()
	if _, err := repo.coll.InsertOne(ctx, f); err != nil {
		return file.File{}, errors.Wrap(err, "inserting file")
	}
	return f, nil
}

// byID matches either the store id or the public fileId.
func byID(id string) bson.M {
	return bson.M{"$or": []bson.M{{"_id": id}, {"fileId": id}}}
}

func (repo *fileRepository) GetFile(ctx context.Context, id string) (file.File, error) {
	var f file.File
	if err := repo.coll.FindOne(ctx, byID(id)).Decode(&f); err != nil {
		if err == mongo.ErrNoDocuments {
			return file.File{}, file.ErrNotFound
		}
		return file.File{}, errors.Wrap(err, "finding file")
	}
	return f, nil
}

func (repo *fileRepository) FilterFiles(ctx context.Context, filter file.QueryFilter, page core.Page) ([]file.File, int64, error) {
	query := bson.M{}
	if filter.UploadedBy != "" {
		query["uploadedBy"] = filter.UploadedBy
	}
	if filter.RelatedToKind != "" {
		query["relatedTo.type"] = filter.RelatedToKind
	}
	if filter.RelatedToID != "" {
		query["relatedTo.id"] = filter.RelatedToID
	}

	total, err := repo.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting files")
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	cursor, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "finding files")
	}
	files := make([]file.File, 0, page.Limit)
	if err = cursor.All(ctx, &files); err != nil {
		return nil, 0, errors.Wrap(err, "decoding files")
	}
	return files, total, nil
}

func (repo *fileRepository) DeleteFile(ctx context.Context, id string) error {
	res, err := repo.coll.DeleteOne(ctx, byID(id))
	if err != nil {
		return errors.Wrap(err, "deleting file")
	}
	if res.DeletedCount == 0 {
		return file.ErrNotFound
	}
	return nil
}

func (repo *fileRepository) CountFiles(ctx context.Context) (int64, error) {
	return repo.coll.CountDocuments(ctx, bson.M{})
}
