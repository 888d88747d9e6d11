package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/beggar"
)

type beggarRepository struct {
	coll *mongo.Collection
}

func NewBeggarRepository(db *DB) beggar.Repository {
	return &beggarRepository{coll: db.db.Collection(beggarsCollection)}
}

func (repo *beggarRepository) getOne(ctx context.Context, filter bson.M) (beggar.Beggar, error) {
	var bg beggar.Beggar
	if err := repo.coll.FindOne(ctx, filter).Decode(&bg); err != nil {
		if err == mongo.ErrNoDocuments {
			return beggar.Beggar{}, beggar.ErrNotFound
		}
		return beggar.Beggar{}, errors.Wrap(err, "finding beggar")
	}
	return bg, nil
}

func (repo *beggarRepository) GetBeggarByBeggarID(ctx context.Context, beggarID string) (beggar.Beggar, error) {
	return repo.getOne(ctx, bson.M{"beggarId": beggarID})
}

func (repo *beggarRepository) CreateBeggar(ctx context.Context, bg beggar.Beggar) (beggar.Beggar, error) {
	bg.ID = primitive.NewObjectID().Hex()
	if _, err := repo.coll.InsertOne(ctx, bg); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return beggar.Beggar{}, beggar.ErrBeggarIDExists
		}
		return beggar.Beggar{}, errors.Wrap(err, "inserting beggar")
	}
	return bg, nil
}

func (repo *beggarRepository) GetBeggar(ctx context.Context, id string) (beggar.Beggar, error) {
	return repo.getOne(ctx, bson.M{"_id": id})
}

func beggarQuery(filter beggar.QueryFilter) bson.M {
	query := bson.M{}
	if filter.Search != "" {
		regex := bson.M{"$regex": filter.Search, "$options": "i"}
		query["$or"] = bson.A{
			bson.M{"name": regex},
			bson.M{"beggarId": regex},
		}
	}
	if filter.LGA != "" {
		query["lga"] = filter.LGA
	}
	if filter.StateOfOrigin != "" {
		query["stateOfOrigin"] = filter.StateOfOrigin
	}
	if filter.Sex != "" {
		query["sex"] = filter.Sex
	}
	if filter.IsBegging != nil {
		query["isBegging"] = *filter.IsBegging
	}
	if filter.InterviewerID != "" {
		query["interviewerId"] = filter.InterviewerID
	}
	if !filter.AgeRange.IsZero() {
		age := bson.M{}
		if filter.AgeRange.Min != nil {
			age["$gte"] = *filter.AgeRange.Min
		}
		if filter.AgeRange.Max != nil {
			age["$lte"] = *filter.AgeRange.Max
		}
		query["age"] = age
	}
	return query
}

func (repo *beggarRepository) FilterBeggars(ctx context.Context, filter beggar.QueryFilter, page core.Page) ([]beggar.Beggar, int64, error) {
	query := beggarQuery(filter)

	total, err := repo.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting beggars")
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	cursor, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "finding beggars")
	}
	beggars := make([]beggar.Beggar, 0, page.Limit)
	if err = cursor.All(ctx, &beggars); err != nil {
		return nil, 0, errors.Wrap(err, "decoding beggars")
	}
	return beggars, total, nil
}

func (repo *beggarRepository) UpdateBeggar(ctx context.Context, bg beggar.Beggar) (beggar.Beggar, error) {
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": bg.ID}, bg)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return beggar.Beggar{}, beggar.ErrBeggarIDExists
		}
		return beggar.Beggar{}, errors.Wrap(err, "replacing beggar")
	}
	if res.MatchedCount == 0 {
		return beggar.Beggar{}, beggar.ErrNotFound
	}
	return bg, nil
}

func (repo *beggarRepository) DeleteBeggar(ctx context.Context, id string) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting beggar")
	}
	if res.DeletedCount == 0 {
		return beggar.ErrNotFound
	}
	return nil
}

func (repo *beggarRepository) CountBeggars(ctx context.Context, filter beggar.QueryFilter) (int64, error) {
	return repo.coll.CountDocuments(ctx, beggarQuery(filter))
}
