// Package mongodb implements the domain repositories on the MongoDB driver.
// Unique indexes back the service-level uniqueness pre-checks against
// concurrent writers.
package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/almajirisurvey/backend/core"
)

const (
	usersCollection   = "users"
	schoolsCollection = "schools"
	beggarsCollection = "beggars"
	draftsCollection  = "drafts"
	filesCollection   = "files"
)

type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

func Open(ctx context.Context, conf *core.Config) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.Database.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to database")
	}
	db := &DB{client: client, db: client.Database(conf.Database.Name)}
	if err = db.ping(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func (db *DB) ping(ctx context.Context) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = db.client.Ping(ctx, nil); err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}
	return errors.Wrap(err, "database never ready")
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique and query indexes. Safe to run repeatedly;
// existing indexes are left alone.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "interviewerId", Value: 1}}, Options: unique},
			// partial: admins created without email would otherwise collide on null
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"email": bson.M{"$type": "string"}})},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		schoolsCollection: {
			{Keys: bson.D{{Key: "schoolCode", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "interviewerId", Value: 1}}},
			{Keys: bson.D{{Key: "lga", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		beggarsCollection: {
			{Keys: bson.D{{Key: "beggarId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "interviewerId", Value: 1}}},
			{Keys: bson.D{{Key: "lga", Value: 1}}},
			{Keys: bson.D{{Key: "stateOfOrigin", Value: 1}}},
			{Keys: bson.D{{Key: "isBegging", Value: 1}}},
		},
		draftsCollection: {
			{Keys: bson.D{{Key: "draftId", Value: 1}, {Key: "interviewerId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "lastSaved", Value: -1}}},
		},
		filesCollection: {
			{Keys: bson.D{{Key: "fileId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "uploadedBy", Value: 1}}},
			{Keys: bson.D{{Key: "relatedTo.type", Value: 1}, {Key: "relatedTo.id", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", coll)
		}
	}
	return nil
}
