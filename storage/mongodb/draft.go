package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/draft"
)

type draftRepository struct {
	coll *mongo.Collection
}

func NewDraftRepository(db *DB) draft.Repository {
	return &draftRepository{coll: db.db.Collection(draftsCollection)}
}

func (repo *draftRepository) getOne(ctx context.Context, filter bson.M) (draft.Draft, error) {
	var d draft.Draft
	if err := repo.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		if err == mongo.ErrNoDocuments {
			return draft.Draft{}, draft.ErrNotFound
		}
		return draft.Draft{}, errors.Wrap(err, "finding draft")
	}
	return d, nil
}

func (repo *draftRepository) GetDraftForInterviewer(ctx context.Context, id, interviewerID string) (draft.Draft, error) {
	return repo.getOne(ctx, bson.M{"_id": id, "interviewerId": interviewerID})
}

func (repo *draftRepository) GetDraftByDraftID(ctx context.Context, draftID, interviewerID string) (draft.Draft, error) {
	return repo.getOne(ctx, bson.M{"draftId": draftID, "interviewerId": interviewerID})
}

func (repo *draftRepository) CreateDraft(ctx context.Context, d draft.Draft) (draft.Draft, error) {
	d.ID = primitive.NewObjectID().Hex()
	if _, err := repo.coll.InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return draft.Draft{}, draft.ErrDraftIDExists
		}
		return draft.Draft{}, errors.Wrap(err, "inserting draft")
	}
	return d, nil
}

// UpsertDraft is a single atomic FindOneAndUpdate on the (draftId,
// interviewerId) unique key; concurrent autosaves of the same draft cannot
// create duplicates.
func (repo *draftRepository) UpsertDraft(ctx context.Context, d draft.Draft) (draft.Draft, bool, error) {
	filter := bson.M{"draftId": d.DraftID, "interviewerId": d.InterviewerID}
	update := bson.M{
		"$set": bson.M{
			"type":      d.Type,
			"data":      d.Data,
			"lastSaved": d.LastSaved,
			"updatedAt": d.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":           primitive.NewObjectID().Hex(),
			"draftId":       d.DraftID,
			"interviewerId": d.InterviewerID,
			"createdAt":     d.UpdatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved draft.Draft
	if err := repo.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return draft.Draft{}, false, errors.Wrap(err, "upserting draft")
	}
	created := saved.CreatedAt.Equal(d.UpdatedAt)
	return saved, created, nil
}

func (repo *draftRepository) FilterDrafts(ctx context.Context, interviewerID string, filter draft.QueryFilter, page core.Page) ([]draft.Draft, int64, error) {
	query := bson.M{"interviewerId": interviewerID}
	if filter.Type != "" {
		query["type"] = filter.Type
	}

	total, err := repo.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting drafts")
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "lastSaved", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	cursor, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "finding drafts")
	}
	drafts := make([]draft.Draft, 0, page.Limit)
	if err = cursor.All(ctx, &drafts); err != nil {
		return nil, 0, errors.Wrap(err, "decoding drafts")
	}
	return drafts, total, nil
}

func (repo *draftRepository) UpdateDraft(ctx context.Context, d draft.Draft) (draft.Draft, error) {
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": d.ID, "interviewerId": d.InterviewerID}, d)
	if err != nil {
		return draft.Draft{}, errors.Wrap(err, "replacing draft")
	}
	if res.MatchedCount == 0 {
		return draft.Draft{}, draft.ErrNotFound
	}
	return d, nil
}

func (repo *draftRepository) DeleteDraft(ctx context.Context, id, interviewerID string) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id, "interviewerId": interviewerID})
	if err != nil {
		return errors.Wrap(err, "deleting draft")
	}
	if res.DeletedCount == 0 {
		return draft.ErrNotFound
	}
	return nil
}
