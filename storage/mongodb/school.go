package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/school"
)

type schoolRepository struct {
	coll *mongo.Collection
}

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{coll: db.db.Collection(schoolsCollection)}
}

func (repo *schoolRepository) GetSchoolByCode(ctx context.Context, code string) (school.School, error) {
	return repo.getOne(ctx, bson.M{"schoolCode": code})
}

func (repo *schoolRepository) getOne(ctx context.Context, filter bson.M) (school.School, error) {
	var sch school.School
	if err := repo.coll.FindOne(ctx, filter).Decode(&sch); err != nil {
		if err == mongo.ErrNoDocuments {
			return school.School{}, school.ErrNotFound
		}
		return school.School{}, errors.Wrap(err, "finding school")
	}
	return sch, nil
}

func (repo *schoolRepository) CreateSchool(ctx context.Context, sch school.School) (school.School, error) {
	sch.ID = primitive.NewObjectID().Hex()
	if _, err := repo.coll.InsertOne(ctx, sch); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return school.School{}, school.ErrSchoolCodeExists
		}
		return school.School{}, errors.Wrap(err, "inserting school")
	}
	return sch, nil
}

func (repo *schoolRepository) GetSchool(ctx context.Context, id string) (school.School, error) {
	return repo.getOne(ctx, bson.M{"_id": id})
}

func schoolQuery(filter school.QueryFilter) bson.M {
	query := bson.M{}
	if filter.Search != "" {
		regex := bson.M{"$regex": filter.Search, "$options": "i"}
		query["$or"] = bson.A{
			bson.M{"name": regex},
			bson.M{"address": regex},
			bson.M{"schoolCode": regex},
		}
	}
	if filter.LGA != "" {
		query["lga"] = filter.LGA
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.InterviewerID != "" {
		query["interviewerId"] = filter.InterviewerID
	}
	return query
}

func (repo *schoolRepository) FilterSchools(ctx context.Context, filter school.QueryFilter, page core.Page) ([]school.School, int64, error) {
	query := schoolQuery(filter)

	total, err := repo.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting schools")
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	cursor, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "finding schools")
	}
	schools := make([]school.School, 0, page.Limit)
	if err = cursor.All(ctx, &schools); err != nil {
		return nil, 0, errors.Wrap(err, "decoding schools")
	}
	return schools, total, nil
}

func (repo *schoolRepository) UpdateSchool(ctx context.Context, sch school.School) (school.School, error) {
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": sch.ID}, sch)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return school.School{}, school.ErrSchoolCodeExists
		}
		return school.School{}, errors.Wrap(err, "replacing school")
	}
	if res.MatchedCount == 0 {
		return school.School{}, school.ErrNotFound
	}
	return sch, nil
}

func (repo *schoolRepository) DeleteSchool(ctx context.Context, id string) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting school")
	}
	if res.DeletedCount == 0 {
		return school.ErrNotFound
	}
	return nil
}

// FilterStudents unwinds the embedded student lists into flattened rows.
// School-level filters run before the $unwind, student-level ones after.
func (repo *schoolRepository) FilterStudents(ctx context.Context, filter school.StudentFilter, page core.Page) ([]school.StudentRow, int64, error) {
	match := schoolQuery(filter.School)
	if filter.SchoolID != "" {
		match["_id"] = filter.SchoolID
	}

	studentMatch := bson.M{}
	if filter.Gender != "" {
		studentMatch["students.gender"] = filter.Gender
	}
	if filter.IsBegging != nil {
		studentMatch["students.isBegging"] = *filter.IsBegging
	}
	if !filter.AgeRange.IsZero() {
		age := bson.M{}
		if filter.AgeRange.Min != nil {
			age["$gte"] = *filter.AgeRange.Min
		}
		if filter.AgeRange.Max != nil {
			age["$lte"] = *filter.AgeRange.Max
		}
		studentMatch["students.age"] = age
	}

	base := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		bson.D{{Key: "$unwind", Value: "$students"}},
		bson.D{{Key: "$match", Value: studentMatch}},
	}

	total, err := repo.countRows(ctx, base)
	if err != nil {
		return nil, 0, err
	}

	pipeline := append(mongo.Pipeline{}, base...)
	pipeline = append(pipeline,
		bson.D{{Key: "$skip", Value: page.Skip()}},
		bson.D{{Key: "$limit", Value: int64(page.Limit)}},
		bson.D{{Key: "$project", Value: bson.M{
			"schoolId":     "$_id",
			"schoolCode":   "$schoolCode",
			"schoolName":   "$name",
			"schoolLga":    "$lga",
			"schoolStatus": "$status",
			"student":      "$students",
		}}},
	)
	cursor, err := repo.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, errors.Wrap(err, "aggregating students")
	}
	rows := make([]school.StudentRow, 0, page.Limit)
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, 0, errors.Wrap(err, "decoding student rows")
	}
	return rows, total, nil
}

func (repo *schoolRepository) countRows(ctx context.Context, base mongo.Pipeline) (int64, error) {
	pipeline := append(mongo.Pipeline{}, base...)
	pipeline = append(pipeline, bson.D{{Key: "$count", Value: "total"}})
	cursor, err := repo.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, errors.Wrap(err, "counting student rows")
	}
	var res []struct {
		Total int64 `bson:"total"`
	}
	if err = cursor.All(ctx, &res); err != nil {
		return 0, errors.Wrap(err, "decoding student count")
	}
	if len(res) == 0 {
		return 0, nil
	}
	return res[0].Total, nil
}

func (repo *schoolRepository) CountSchools(ctx context.Context, filter school.QueryFilter) (int64, error) {
	return repo.coll.CountDocuments(ctx, schoolQuery(filter))
}
