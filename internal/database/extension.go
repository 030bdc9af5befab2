package database

import (
	"cheggienexus/internal/model"
	"context"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

func (db Database) ExtensionInsert(ctx context.Context, e model.CheggExtension) (id string, err error) {
	e.Users = []model.ExtensionUser{}
	e.Metadata = model.ExtensionMetadata{}
	e.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	e.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())

	r, err := db.Collection(CollectionExtensions).InsertOne(ctx, e)
	if err != nil {
		return "", errors.Wrapf(err, "error inserting CheggExtension with name: %s", e.Name)
	}
	return r.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (db Database) ExtensionFindOne(ctx context.Context, extID string) (model.CheggExtension, error) {
	var e model.CheggExtension
	objID, err := primitive.ObjectIDFromHex(extID)
	if err != nil {
		return e, errors.Wrapf(err, "error creating ObjectID from hex: %s", extID)
	}
	err = db.Collection(CollectionExtensions).FindOne(ctx, bson.M{"_id": objID}).Decode(&e)
	return e, errors.Wrapf(err, "error finding CheggExtension with ID: %s", extID)
}

func (db Database) ExtensionsFindAll(ctx context.Context) ([]model.CheggExtension, error) {
	var es []model.CheggExtension
	cur, err := db.Collection(CollectionExtensions).Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "error getting cursor to find all CheggExtensions")
	}
	if err = cur.All(ctx, &es); err != nil {
		return nil, errors.Wrap(err, "error getting all CheggExtensions from cursor")
	}
	return es, nil
}

func (db Database) ExtensionUpdate(ctx context.Context, extID string, name string, description string) error {
	objID, err := primitive.ObjectIDFromHex(extID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", extID)
	}

	set := bson.M{"updated_at": primitive.NewDateTimeFromTime(time.Now())}
	if name != "" {
		set["name"] = name
	}
	if description != "" {
		set["description"] = description
	}

	res, err := db.Collection(CollectionExtensions).UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": set})
	if err != nil {
		return errors.Wrapf(err, "error updating CheggExtension with ID: %s", extID)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "when updating CheggExtension with ID: %s", extID)
	}
	return nil
}

func (db Database) ExtensionDelete(ctx context.Context, extID string) error {
	objID, err := primitive.ObjectIDFromHex(extID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", extID)
	}
	var e model.CheggExtension
	err = db.Collection(CollectionExtensions).FindOneAndDelete(ctx, bson.M{"_id": objID}).Decode(&e)
	return errors.Wrapf(err, "error deleting CheggExtension with ID: %s", extID)
}

// ExtensionUserAdd pushes the member and bumps the metadata counter in the
// same update. The counter is maintained, not derived, so it can drift from
// the array if a later write fails.
func (db Database) ExtensionUserAdd(ctx context.Context, extID string, eu model.ExtensionUser) error {
	objID, err := primitive.ObjectIDFromHex(extID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", extID)
	}

	eu.AddedAt = primitive.NewDateTimeFromTime(time.Now())

	res, err := db.Collection(CollectionExtensions).UpdateOne(
		ctx,
		bson.M{"_id": objID, "users.user": bson.M{"$ne": eu.UserID}},
		bson.M{
			"$push": bson.M{"users": eu},
			"$inc":  bson.M{"metadata.total_users": 1},
			"$set":  bson.M{"updated_at": primitive.NewDateTimeFromTime(time.Now())},
		},
	)
	if err != nil {
		return errors.Wrapf(err, "error adding User %s to CheggExtension with ID: %s", eu.UserID.Hex(), extID)
	}
	if res.ModifiedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "when adding User %s to CheggExtension with ID: %s", eu.UserID.Hex(), extID)
	}
	return nil
}

func (db Database) ExtensionUserRemove(ctx context.Context, extID string, userID primitive.ObjectID) error {
	e, err := db.ExtensionFindOne(ctx, extID)
	if err != nil {
		return err
	}

	var creditsUsed int
	var found bool
	for _, eu := range e.Users {
		if eu.UserID == userID {
			creditsUsed = eu.CreditsUsed
			found = true
			break
		}
	}
	if !found {
		return errors.Wrapf(ErrNoDocumentsModified, "User %s is not a member of CheggExtension with ID: %s", userID.Hex(), extID)
	}

	res, err := db.Collection(CollectionExtensions).UpdateOne(
		ctx,
		bson.M{"_id": e.ID},
		bson.M{
			"$pull": bson.M{"users": bson.M{"user": userID}},
			"$inc": bson.M{
				"metadata.total_users":        -1,
				"metadata.total_credits_used": -creditsUsed,
			},
			"$set": bson.M{"updated_at": primitive.NewDateTimeFromTime(time.Now())},
		},
	)
	if err != nil {
		return errors.Wrapf(err, "error removing User %s from CheggExtension with ID: %s", userID.Hex(), extID)
	}
	if res.ModifiedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "when removing User %s from CheggExtension with ID: %s", userID.Hex(), extID)
	}
	return nil
}

// ExtensionUserCreditsAdd records entitlement spend on both the member row and
// the extension-wide counter.
func (db Database) ExtensionUserCreditsAdd(ctx context.Context, extID string, userID primitive.ObjectID, amount int) error {
	objID, err := primitive.ObjectIDFromHex(extID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", extID)
	}

	res, err := db.Collection(CollectionExtensions).UpdateOne(
		ctx,
		bson.M{"_id": objID, "users.user": userID},
		bson.M{"$inc": bson.M{
			"users.$.credits_used":        amount,
			"metadata.total_credits_used": amount,
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error adding %d used credits for User %s on CheggExtension with ID: %s", amount, userID.Hex(), extID)
	}
	if res.ModifiedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "when adding used credits for User %s on CheggExtension with ID: %s", userID.Hex(), extID)
	}
	return nil
}
