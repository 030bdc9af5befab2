package database

import (
	"cheggienexus/internal/model"
	"context"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"time"
)

func (db Database) CreditInsert(ctx context.Context, c model.Credit) (primitive.ObjectID, error) {
	c.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	r, err := db.Collection(CollectionCredits).InsertOne(ctx, c)
	if err != nil {
		return primitive.NilObjectID, errors.Wrapf(err, "error inserting Credit: %+v", c)
	}
	return r.InsertedID.(primitive.ObjectID), nil
}

func (db Database) CreditFindOne(ctx context.Context, creditID string, userID primitive.ObjectID) (model.Credit, error) {
	var c model.Credit
	objID, err := primitive.ObjectIDFromHex(creditID)
	if err != nil {
		return c, errors.Wrapf(err, "error creating ObjectID from hex: %s", creditID)
	}
	err = db.Collection(CollectionCredits).FindOne(ctx, bson.M{"_id": objID, "user": userID}).Decode(&c)
	return c, errors.Wrapf(err, "error finding Credit with ID: %s", creditID)
}

func (db Database) CreditsFindByUser(ctx context.Context, userID primitive.ObjectID) ([]model.Credit, error) {
	var cs []model.Credit
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cur, err := db.Collection(CollectionCredits).Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find Credits for UserID: %s", userID.Hex())
	}
	if err = cur.All(ctx, &cs); err != nil {
		return nil, errors.Wrapf(err, "error getting Credits from cursor for UserID: %s", userID.Hex())
	}
	return cs, nil
}

// CreditSetStatus flips a ledger row's status and records the balance that
// resulted from the separate User.credits write.
func (db Database) CreditSetStatus(ctx context.Context, creditID primitive.ObjectID, status string, balanceAfter int) error {
	res, err := db.Collection(CollectionCredits).UpdateOne(
		ctx,
		bson.M{"_id": creditID},
		bson.M{"$set": bson.M{
			"status":        status,
			"balance_after": balanceAfter,
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error setting status %s on Credit with ID: %s", status, creditID.Hex())
	}
	if res.ModifiedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "when setting status on Credit with ID: %s", creditID.Hex())
	}
	return nil
}
