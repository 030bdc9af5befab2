package database

import (
	"cheggienexus/internal/model"
	"context"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"time"
)

func (db Database) UserInsert(ctx context.Context, u model.User) (id string, err error) {
	u.LoginTokens = []model.LoginToken{}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	u.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	u.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())

	r, err := db.Collection(CollectionUsers).InsertOne(ctx, u)
	if err != nil {
		return "", errors.Wrapf(err, "error inserting User with email: %s", u.Email)
	}
	return r.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (db Database) UserFindByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := db.Collection(CollectionUsers).FindOne(ctx, bson.M{"email": email}).Decode(&u)
	return u, errors.Wrapf(err, "error finding User with email: %s", email)
}

func (db Database) UserFindByID(ctx context.Context, id string) (model.User, error) {
	var u model.User

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return u, errors.Wrapf(err, "error creating ObjectID from hex: %s", id)
	}

	err = db.Collection(CollectionUsers).FindOne(ctx, bson.M{"_id": objID}).Decode(&u)
	return u, errors.Wrapf(err, "error finding User with ID: %s", id)
}

func (db Database) UserAddLoginToken(ctx context.Context, userID string, lt model.LoginToken) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", userID)
	}

	lt.CreatedAt = primitive.NewDateTimeFromTime(time.Now())

	res, err := db.Collection(CollectionUsers).UpdateOne(
		ctx,
		bson.M{"_id": objID},
		bson.M{"$push": bson.M{
			"login_tokens": bson.M{
				"$each":     []model.LoginToken{lt},
				"$position": 0,
				"$slice":    8,
			},
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error when adding login token to User with ID: %s", userID)
	}

	if res.ModifiedCount == 0 {
		return errors.Errorf("User not modified when adding login token to User with ID: %s", userID)
	}

	return nil
}

func (db Database) UserRemoveLoginToken(ctx context.Context, userID string, tokenID string) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", userID)
	}

	res, err := db.Collection(CollectionUsers).UpdateOne(
		ctx,
		bson.M{"_id": objID},
		bson.M{"$pull": bson.M{"login_tokens": bson.M{"token_id": tokenID}}},
	)
	if err != nil {
		return errors.Wrapf(err, "error when removing login token from User with ID: %s, token ID: %s", userID, tokenID)
	}

	if res.ModifiedCount == 0 {
		return errors.Errorf("User not modified when removing login token from User with ID: %s, token ID: %s", userID, tokenID)
	}

	return nil
}

// UserCreditsAdd applies a signed delta to the running balance and returns the
// balance after the write. This is a separate write from the Credit ledger row.
func (db Database) UserCreditsAdd(ctx context.Context, userID primitive.ObjectID, amount int) (int, error) {
	var u model.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := db.Collection(CollectionUsers).FindOneAndUpdate(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$inc": bson.M{"credits": amount}},
		opts,
	).Decode(&u)
	if err != nil {
		return 0, errors.Wrapf(err, "error adding %d credits to User with ID: %s", amount, userID.Hex())
	}
	return u.Credits, nil
}

func (db Database) UserUsageRecord(ctx context.Context, userID primitive.ObjectID, creditsUsed int) error {
	res, err := db.Collection(CollectionUsers).UpdateOne(
		ctx,
		bson.M{"_id": userID},
		bson.M{
			"$inc": bson.M{
				"usage.total_requests": 1,
				"usage.credits_used":   creditsUsed,
			},
			"$set": bson.M{
				"usage.last_active": primitive.NewDateTimeFromTime(time.Now()),
				"updated_at":        primitive.NewDateTimeFromTime(time.Now()),
			},
		},
	)
	if err != nil {
		return errors.Wrapf(err, "error recording usage on User with ID: %s", userID.Hex())
	}
	if res.ModifiedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "when recording usage on User with ID: %s", userID.Hex())
	}
	return nil
}

func (db Database) UserPreferencesUpdate(ctx context.Context, userID primitive.ObjectID, p model.Preferences) error {
	res, err := db.Collection(CollectionUsers).UpdateOne(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"preferences": p,
			"updated_at":  primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating preferences on User with ID: %s", userID.Hex())
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(mongo.ErrNoDocuments, "when updating preferences on User with ID: %s", userID.Hex())
	}
	return nil
}

// UserUpsertAdmin seeds the admin account from configuration at startup.
func (db Database) UserUpsertAdmin(ctx context.Context, email string, password []byte) error {
	opts := options.Update().SetUpsert(true)
	_, err := db.Collection(CollectionUsers).UpdateOne(
		ctx,
		bson.M{"email": email},
		bson.M{
			"$set": bson.M{
				"password":   password,
				"role":       model.RoleAdmin,
				"updated_at": primitive.NewDateTimeFromTime(time.Now()),
			},
			"$setOnInsert": bson.M{
				"name":         "admin",
				"credits":      0,
				"login_tokens": []model.LoginToken{},
				"created_at":   primitive.NewDateTimeFromTime(time.Now()),
			},
		},
		opts,
	)
	return errors.Wrapf(err, "error upserting admin User with email: %s", email)
}
