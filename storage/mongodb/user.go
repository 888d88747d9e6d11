package mongodb

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/user"
)

type userRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{coll: db.db.Collection(usersCollection)}
}

func (repo *userRepository) CheckUniqueness(ctx context.Context, interviewerID, email string) error {
	if interviewerID != "" {
		n, err := repo.coll.CountDocuments(ctx, bson.M{"interviewerId": interviewerID})
		if err != nil {
			return errors.Wrap(err, "counting users")
		}
		if n > 0 {
			return user.ErrInterviewerIDExists
		}
	}
	if email != "" {
		n, err := repo.coll.CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			return errors.Wrap(err, "counting users")
		}
		if n > 0 {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = primitive.NewObjectID().Hex()
	if _, err := repo.coll.InsertOne(ctx, usr); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// the write error names the violated index (interviewerId_1 / email_1)
			if strings.Contains(err.Error(), "email_1") {
				return user.User{}, user.ErrEmailExists
			}
			return user.User{}, user.ErrInterviewerIDExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) getOne(ctx context.Context, filter bson.M) (user.User, error) {
	var usr user.User
	if err := repo.coll.FindOne(ctx, filter).Decode(&usr); err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getOne(ctx, bson.M{"_id": id})
}

func (repo *userRepository) GetUserByInterviewerID(ctx context.Context, interviewerID string) (user.User, error) {
	return repo.getOne(ctx, bson.M{"interviewerId": interviewerID})
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getOne(ctx, bson.M{"email": email})
}

func userQuery(filter user.QueryFilter) bson.M {
	query := bson.M{}
	if filter.Search != "" {
		regex := bson.M{"$regex": filter.Search, "$options": "i"}
		query["$or"] = bson.A{
			bson.M{"name": regex},
			bson.M{"interviewerId": regex},
			bson.M{"email": regex},
		}
	}
	if filter.Role != "" {
		query["role"] = filter.Role
	}
	if filter.LGA != "" {
		query["lga"] = filter.LGA
	}
	if filter.IsActive != nil {
		query["isActive"] = *filter.IsActive
	}
	return query
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, page core.Page) ([]user.User, int64, error) {
	query := userQuery(filter)

	total, err := repo.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting users")
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	cursor, err := repo.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "finding users")
	}
	users := make([]user.User, 0, page.Limit)
	if err = cursor.All(ctx, &users); err != nil {
		return nil, 0, errors.Wrap(err, "decoding users")
	}
	return users, total, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	// only save set fields
	set := bson.M{"updatedAt": usr.UpdatedAt}
	if usr.InterviewerID != "" {
		set["interviewerId"] = usr.InterviewerID
	}
	if usr.Name != "" {
		set["name"] = usr.Name
	}
	if usr.Email != "" {
		set["email"] = usr.Email
	}
	if usr.Phone != "" {
		set["phone"] = usr.Phone
	}
	if usr.LGA != "" {
		set["lga"] = usr.LGA
	}
	if usr.Role != "" {
		set["role"] = usr.Role
	}
	if isActive != nil {
		set["isActive"] = *isActive
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated user.User
	err := repo.coll.FindOneAndUpdate(ctx, bson.M{"_id": usr.ID}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return updated, nil
}

func (repo *userRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastLogin": at}})
	if err != nil {
		return errors.Wrap(err, "updating last login")
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"passwordHash": hash, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return errors.Wrap(err, "updating password")
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) DeleteUser(ctx context.Context, id string) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting user")
	}
	if res.DeletedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) CountUsers(ctx context.Context) (int64, error) {
	return repo.coll.CountDocuments(ctx, bson.M{})
}
