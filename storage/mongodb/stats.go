package mongodb

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/almajirisurvey/backend/core/beggar"
	"github.com/almajirisurvey/backend/core/school"
	"github.com/almajirisurvey/backend/core/stats"
)

type statsRepository struct {
	schools *mongo.Collection
	beggars *mongo.Collection
	users   *mongo.Collection
}

func NewStatsRepository(db *DB) stats.Repository {
	return &statsRepository{
		schools: db.db.Collection(schoolsCollection),
		beggars: db.db.Collection(beggarsCollection),
		users:   db.db.Collection(usersCollection),
	}
}

// rawBucket tolerates mixed group keys: $group emits strings and booleans,
// $bucket emits numeric boundaries plus the overflow label.
type rawBucket struct {
	ID    interface{} `bson:"_id"`
	Count int64       `bson:"count"`
}

func (b rawBucket) stringID() string {
	switch v := b.ID.(type) {
	case string:
		return v
	case int32:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%d", int64(v))
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toBuckets(raw []rawBucket) []stats.Bucket {
	buckets := make([]stats.Bucket, 0, len(raw))
	for _, b := range raw {
		buckets = append(buckets, stats.Bucket{ID: b.stringID(), Count: b.Count})
	}
	return buckets
}

func (repo *statsRepository) aggregate(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline) ([]rawBucket, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "aggregating")
	}
	var raw []rawBucket
	if err = cursor.All(ctx, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding aggregation")
	}
	return raw, nil
}

func (repo *statsRepository) groupBy(ctx context.Context, coll *mongo.Collection, match bson.M, field string, sortByCount bool) ([]stats.Bucket, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
	}
	if sortByCount {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}})
	}
	raw, err := repo.aggregate(ctx, coll, pipeline)
	if err != nil {
		return nil, err
	}
	return toBuckets(raw), nil
}

func (repo *statsRepository) SchoolAggregates(ctx context.Context, f stats.SchoolFilter) (stats.SchoolAggregates, error) {
	match := bson.M{}
	if f.LGA != "" {
		match["lga"] = f.LGA
	}
	if f.Status != "" {
		match["status"] = f.Status
	}
	withStatus := func(status string) bson.M {
		m := bson.M{"status": status}
		for k, v := range match {
			m[k] = v
		}
		return m
	}
	withFlag := func(flag string) bson.M {
		m := bson.M{flag: true}
		for k, v := range match {
			m[k] = v
		}
		return m
	}

	var agg stats.SchoolAggregates
	var err error

	if agg.TotalSchools, err = repo.schools.CountDocuments(ctx, match); err != nil {
		return agg, errors.Wrap(err, "counting schools")
	}
	if agg.PublishedSchools, err = repo.schools.CountDocuments(ctx, withStatus(school.StatusPublished)); err != nil {
		return agg, errors.Wrap(err, "counting published schools")
	}
	if agg.DraftSchools, err = repo.schools.CountDocuments(ctx, withStatus(school.StatusDraft)); err != nil {
		return agg, errors.Wrap(err, "counting draft schools")
	}
	if agg.IncompleteSchools, err = repo.schools.CountDocuments(ctx, withStatus(school.StatusIncomplete)); err != nil {
		return agg, errors.Wrap(err, "counting incomplete schools")
	}
	if agg.WithToilets, err = repo.schools.CountDocuments(ctx, withFlag("schoolStructure.hasToilets")); err != nil {
		return agg, errors.Wrap(err, "counting schools with toilets")
	}
	if agg.WithFeeding, err = repo.schools.CountDocuments(ctx, withFlag("schoolStructure.feedsPupils")); err != nil {
		return agg, errors.Wrap(err, "counting schools with feeding")
	}
	if agg.WithSleeping, err = repo.schools.CountDocuments(ctx, withFlag("schoolStructure.providesSleepingPlace")); err != nil {
		return agg, errors.Wrap(err, "counting schools with sleeping place")
	}

	if agg.ByLGA, err = repo.groupBy(ctx, repo.schools, match, "lga", true); err != nil {
		return agg, err
	}
	if agg.ByStatus, err = repo.groupBy(ctx, repo.schools, match, "status", false); err != nil {
		return agg, err
	}

	// student figures come from unwinding the embedded lists
	raw, err := repo.aggregate(ctx, repo.schools, mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$unwind", Value: "$students"}},
		bson.D{{Key: "$group", Value: bson.M{"_id": "$students.gender", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return agg, err
	}
	agg.StudentsByGender = toBuckets(raw)
	for _, b := range agg.StudentsByGender {
		agg.TotalStudents += b.Count
	}

	raw, err = repo.aggregate(ctx, repo.schools, mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$unwind", Value: "$students"}},
		bson.D{{Key: "$match", Value: bson.M{"students.isBegging": true}}},
		bson.D{{Key: "$group", Value: bson.M{"_id": nil, "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return agg, err
	}
	if len(raw) > 0 {
		agg.BeggingStudents = raw[0].Count
	}
	return agg, nil
}

func (repo *statsRepository) BeggarAggregates(ctx context.Context, f stats.BeggarFilter) (stats.BeggarAggregates, error) {
	match := bson.M{}
	if f.LGA != "" {
		match["lga"] = f.LGA
	}
	if f.StateOfOrigin != "" {
		match["stateOfOrigin"] = f.StateOfOrigin
	}
	withBegging := func(active bool) bson.M {
		m := bson.M{"isBegging": active}
		for k, v := range match {
			m[k] = v
		}
		return m
	}

	var agg stats.BeggarAggregates
	var err error

	if agg.TotalBeggars, err = repo.beggars.CountDocuments(ctx, match); err != nil {
		return agg, errors.Wrap(err, "counting beggars")
	}
	if agg.ActiveBeggars, err = repo.beggars.CountDocuments(ctx, withBegging(true)); err != nil {
		return agg, errors.Wrap(err, "counting active beggars")
	}
	if agg.InactiveBeggars, err = repo.beggars.CountDocuments(ctx, withBegging(false)); err != nil {
		return agg, errors.Wrap(err, "counting inactive beggars")
	}

	raw, err := repo.aggregate(ctx, repo.beggars, mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$bucket", Value: bson.M{
			"groupBy":    "$age",
			"boundaries": stats.AgeBucketBoundaries,
			"default":    stats.AgeOverflowLabel,
			"output":     bson.M{"count": bson.M{"$sum": 1}},
		}}},
	})
	if err != nil {
		return agg, err
	}
	agg.ByAge = toBuckets(raw)

	if agg.ByGender, err = repo.groupBy(ctx, repo.beggars, match, "sex", false); err != nil {
		return agg, err
	}
	if agg.ByNationality, err = repo.groupBy(ctx, repo.beggars, match, "nationality", true); err != nil {
		return agg, err
	}
	if agg.ByLGA, err = repo.groupBy(ctx, repo.beggars, match, "lga", true); err != nil {
		return agg, err
	}
	if agg.ByState, err = repo.groupBy(ctx, repo.beggars, match, "stateOfOrigin", true); err != nil {
		return agg, err
	}

	cursor, err := repo.beggars.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$group", Value: bson.M{"_id": nil, "avgAge": bson.M{"$avg": "$age"}}}},
	})
	if err != nil {
		return agg, errors.Wrap(err, "averaging ages")
	}
	var avg []struct {
		AvgAge float64 `bson:"avgAge"`
	}
	if err = cursor.All(ctx, &avg); err != nil {
		return agg, errors.Wrap(err, "decoding average age")
	}
	if len(avg) > 0 {
		agg.AverageAge = avg[0].AvgAge
	}
	return agg, nil
}

func (repo *statsRepository) DashboardAggregates(ctx context.Context) (stats.DashboardAggregates, error) {
	var agg stats.DashboardAggregates
	var err error

	if agg.TotalSchools, err = repo.schools.CountDocuments(ctx, bson.M{}); err != nil {
		return agg, errors.Wrap(err, "counting schools")
	}
	if agg.TotalBeggars, err = repo.beggars.CountDocuments(ctx, bson.M{}); err != nil {
		return agg, errors.Wrap(err, "counting beggars")
	}
	if agg.TotalUsers, err = repo.users.CountDocuments(ctx, bson.M{}); err != nil {
		return agg, errors.Wrap(err, "counting users")
	}

	raw, err := repo.aggregate(ctx, repo.schools, mongo.Pipeline{
		bson.D{{Key: "$unwind", Value: "$students"}},
		bson.D{{Key: "$group", Value: bson.M{"_id": nil, "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return agg, err
	}
	if len(raw) > 0 {
		agg.TotalStudents = raw[0].Count
	}

	recent := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(5)
	cursor, err := repo.schools.Find(ctx, bson.M{}, recent)
	if err != nil {
		return agg, errors.Wrap(err, "finding recent schools")
	}
	if err = cursor.All(ctx, &agg.RecentSchools); err != nil {
		return agg, errors.Wrap(err, "decoding recent schools")
	}
	cursor, err = repo.beggars.Find(ctx, bson.M{}, recent)
	if err != nil {
		return agg, errors.Wrap(err, "finding recent beggars")
	}
	if err = cursor.All(ctx, &agg.RecentBeggars); err != nil {
		return agg, errors.Wrap(err, "decoding recent beggars")
	}

	if agg.SchoolStatus, err = repo.groupBy(ctx, repo.schools, bson.M{}, "status", false); err != nil {
		return agg, err
	}

	raw, err = repo.aggregate(ctx, repo.beggars, mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{"_id": "$isBegging", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return agg, err
	}
	for _, b := range raw {
		active, _ := b.ID.(bool)
		agg.BeggarStatus = append(agg.BeggarStatus, stats.BoolBucket{ID: active, Count: b.Count})
	}

	raw, err = repo.aggregate(ctx, repo.schools, mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{"_id": "$lga", "count": bson.M{"$sum": 1}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		bson.D{{Key: "$limit", Value: 5}},
	})
	if err != nil {
		return agg, err
	}
	agg.TopLGAs = toBuckets(raw)
	return agg, nil
}

func (repo *statsRepository) ListSchoolsByInterviewer(ctx context.Context, interviewerID string) ([]school.School, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := repo.schools.Find(ctx, bson.M{"interviewerId": interviewerID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding schools")
	}
	var schools []school.School
	if err = cursor.All(ctx, &schools); err != nil {
		return nil, errors.Wrap(err, "decoding schools")
	}
	return schools, nil
}

func (repo *statsRepository) ListBeggarsByInterviewer(ctx context.Context, interviewerID string) ([]beggar.Beggar, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := repo.beggars.Find(ctx, bson.M{"interviewerId": interviewerID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "finding beggars")
	}
	var beggars []beggar.Beggar
	if err = cursor.All(ctx, &beggars); err != nil {
		return nil, errors.Wrap(err, "decoding beggars")
	}
	return beggars, nil
}
