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

func (db Database) ChatInsert(ctx context.Context, c model.Chat) (id string, err error) {
	if c.Messages == nil {
		c.Messages = []model.ChatMessage{}
	}
	c.Status = model.ChatStatusActive
	c.Metadata.LastActivity = primitive.NewDateTimeFromTime(time.Now())
	c.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	c.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())

	r, err := db.Collection(CollectionChats).InsertOne(ctx, c)
	if err != nil {
		return "", errors.Wrapf(err, "error inserting Chat: %+v", c)
	}
	return r.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (db Database) ChatFindOne(ctx context.Context, chatID string, userID primitive.ObjectID) (model.Chat, error) {
	var c model.Chat
	objID, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return c, errors.Wrapf(err, "error creating ObjectID from hex: %s", chatID)
	}
	err = db.Collection(CollectionChats).FindOne(ctx, bson.M{"_id": objID, "user": userID}).Decode(&c)
	return c, errors.Wrapf(err, "error finding Chat with ID: %s", chatID)
}

// ChatsFindByUser lists a user's chats, newest activity first. Deleted chats
// are excluded unless their status is asked for explicitly.
func (db Database) ChatsFindByUser(ctx context.Context, userID primitive.ObjectID, status string) ([]model.Chat, error) {
	filter := bson.M{"user": userID}
	if status != "" {
		filter["status"] = status
	} else {
		filter["status"] = bson.M{"$ne": model.ChatStatusDeleted}
	}

	var cs []model.Chat
	opts := options.Find().SetSort(bson.M{"metadata.last_activity": -1})
	cur, err := db.Collection(CollectionChats).Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find Chats for UserID: %s", userID.Hex())
	}
	if err = cur.All(ctx, &cs); err != nil {
		return nil, errors.Wrapf(err, "error getting Chats from cursor for UserID: %s", userID.Hex())
	}
	return cs, nil
}

func (db Database) ChatUpdate(ctx context.Context, chatID string, userID primitive.ObjectID, title string, status string) error {
	objID, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", chatID)
	}

	set := bson.M{"updated_at": primitive.NewDateTimeFromTime(time.Now())}
	if title != "" {
		set["title"] = title
	}
	if status != "" {
		set["status"] = status
	}

	res, err := db.Collection(CollectionChats).UpdateOne(
		ctx,
		bson.M{"_id": objID, "user": userID},
		bson.M{"$set": set},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating Chat with ID: %s", chatID)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "when updating Chat with ID: %s", chatID)
	}
	return nil
}

// ChatSoftDelete flips the status to deleted, the document stays.
func (db Database) ChatSoftDelete(ctx context.Context, chatID string, userID primitive.ObjectID) error {
	objID, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", chatID)
	}

	res, err := db.Collection(CollectionChats).UpdateOne(
		ctx,
		bson.M{"_id": objID, "user": userID},
		bson.M{"$set": bson.M{
			"status":     model.ChatStatusDeleted,
			"updated_at": primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error soft-deleting Chat with ID: %s", chatID)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "when soft-deleting Chat with ID: %s", chatID)
	}
	return nil
}

func (db Database) ChatAppendMessages(
	ctx context.Context, chatID primitive.ObjectID, msgs []model.ChatMessage, tokens int, creditsUsed int,
) error {
	res, err := db.Collection(CollectionChats).UpdateOne(
		ctx,
		bson.M{"_id": chatID},
		bson.M{
			"$push": bson.M{"messages": bson.M{"$each": msgs}},
			"$inc": bson.M{
				"metadata.total_tokens": tokens,
				"metadata.credits_used": creditsUsed,
			},
			"$set": bson.M{
				"metadata.last_activity": primitive.NewDateTimeFromTime(time.Now()),
				"updated_at":             primitive.NewDateTimeFromTime(time.Now()),
			},
		},
	)
	if err != nil {
		return errors.Wrapf(err, "error appending %d message(s) to Chat with ID: %s", len(msgs), chatID.Hex())
	}
	if res.ModifiedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "when appending messages to Chat with ID: %s", chatID.Hex())
	}
	return nil
}
