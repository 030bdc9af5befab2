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

func (db Database) QuestionInsert(ctx context.Context, q model.Question) (id string, err error) {
	if q.Answers == nil {
		q.Answers = []model.Answer{}
	}
	q.Status = model.QuestionStatusPending
	q.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	q.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())

	r, err := db.Collection(CollectionQuestions).InsertOne(ctx, q)
	if err != nil {
		return "", errors.Wrapf(err, "error inserting Question: %+v", q)
	}
	return r.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (db Database) QuestionFindOne(ctx context.Context, questionID string, userID primitive.ObjectID) (model.Question, error) {
	var q model.Question
	objID, err := primitive.ObjectIDFromHex(questionID)
	if err != nil {
		return q, errors.Wrapf(err, "error creating ObjectID from hex: %s", questionID)
	}
	err = db.Collection(CollectionQuestions).FindOne(ctx, bson.M{"_id": objID, "user": userID}).Decode(&q)
	return q, errors.Wrapf(err, "error finding Question with ID: %s", questionID)
}

func (db Database) QuestionsFind(ctx context.Context, filter bson.M) ([]model.Question, error) {
	var qs []model.Question
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cur, err := db.Collection(CollectionQuestions).Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find Questions, filter: %+v", filter)
	}
	if err = cur.All(ctx, &qs); err != nil {
		return nil, errors.Wrapf(err, "error getting Questions from cursor, filter: %+v", filter)
	}
	return qs, nil
}

func (db Database) QuestionUpdate(
	ctx context.Context, questionID string, userID primitive.ObjectID, title, content, subject, status string,
) error {
	objID, err := primitive.ObjectIDFromHex(questionID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", questionID)
	}

	set := bson.M{"updated_at": primitive.NewDateTimeFromTime(time.Now())}
	if title != "" {
		set["title"] = title
	}
	if content != "" {
		set["content"] = content
	}
	if subject != "" {
		set["subject"] = subject
	}
	if status != "" {
		set["status"] = status
	}

	res, err := db.Collection(CollectionQuestions).UpdateOne(
		ctx,
		bson.M{"_id": objID, "user": userID},
		bson.M{"$set": set},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating Question with ID: %s", questionID)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "when updating Question with ID: %s", questionID)
	}
	return nil
}

// QuestionDelete removes the document, unlike chats there is no soft delete here.
func (db Database) QuestionDelete(ctx context.Context, questionID string, userID primitive.ObjectID) error {
	objID, err := primitive.ObjectIDFromHex(questionID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", questionID)
	}

	var q model.Question
	err = db.Collection(CollectionQuestions).FindOneAndDelete(ctx, bson.M{"_id": objID, "user": userID}).Decode(&q)
	return errors.Wrapf(err, "error deleting Question with ID: %s", questionID)
}

// QuestionAppendAnswer pushes the answer and marks the question solved in one write.
func (db Database) QuestionAppendAnswer(ctx context.Context, questionID primitive.ObjectID, a model.Answer) error {
	res, err := db.Collection(CollectionQuestions).UpdateOne(
		ctx,
		bson.M{"_id": questionID},
		bson.M{
			"$push": bson.M{"answers": a},
			"$set": bson.M{
				"status":     model.QuestionStatusSolved,
				"updated_at": primitive.NewDateTimeFromTime(time.Now()),
			},
		},
	)
	if err != nil {
		return errors.Wrapf(err, "error appending Answer to Question with ID: %s", questionID.Hex())
	}
	if res.ModifiedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "when appending Answer to Question with ID: %s", questionID.Hex())
	}
	return nil
}

func (db Database) QuestionSetStatus(ctx context.Context, questionID string, userID primitive.ObjectID, status string) error {
	objID, err := primitive.ObjectIDFromHex(questionID)
	if err != nil {
		return errors.Wrapf(err, "error creating ObjectID from hex: %s", questionID)
	}

	res, err := db.Collection(CollectionQuestions).UpdateOne(
		ctx,
		bson.M{"_id": objID, "user": userID},
		bson.M{"$set": bson.M{
			"status":     status,
			"updated_at": primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error setting status %s on Question with ID: %s", status, questionID)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "when setting status on Question with ID: %s", questionID)
	}
	return nil
}

// QuestionCountByStatus feeds the analytics rollup.
func (db Database) QuestionCountByStatus(ctx context.Context, userID primitive.ObjectID, status string) (int, error) {
	filter := bson.M{"user": userID}
	if status != "" {
		filter["status"] = status
	}
	n, err := db.Collection(CollectionQuestions).CountDocuments(ctx, filter)
	if err != nil {
		return 0, errors.Wrapf(err, "error counting Questions for UserID: %s, status: %s", userID.Hex(), status)
	}
	return int(n), nil
}

func (db Database) QuestionUserIDsDistinct(ctx context.Context, since time.Time) ([]primitive.ObjectID, error) {
	vals, err := db.Collection(CollectionQuestions).Distinct(
		ctx,
		"user",
		bson.M{"updated_at": bson.M{"$gte": primitive.NewDateTimeFromTime(since)}},
	)
	if err != nil {
		return nil, errors.Wrap(err, "error getting distinct Question user IDs")
	}
	ids := make([]primitive.ObjectID, 0, len(vals))
	for _, v := range vals {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
