package server

import (
	"cheggienexus/internal/model"
	"context"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// recordLedger writes one ledger entry: insert the Credit row as pending,
// apply the signed amount to User.credits, then flip the row to completed
// with the resulting balance. The three writes are sequential and not
// wrapped in a transaction; a failure between them leaves the ledger and
// the running balance out of step. Concurrent entries for the same user can
// also interleave. Known limitation, kept deliberately simple.
func (s Server) recordLedger(
	ctx context.Context, userID primitive.ObjectID, amount int, creditType string, description string, md model.CreditMetadata,
) (model.Credit, error) {
	c := model.Credit{
		UserID:      userID,
		Amount:      amount,
		Type:        creditType,
		Status:      model.CreditStatusPending,
		Description: description,
		Metadata:    md,
	}

	creditID, err := s.DB.CreditInsert(ctx, c)
	if err != nil {
		return c, errors.Wrapf(err, "error inserting %s Credit for UserID: %s", creditType, userID.Hex())
	}
	c.ID = creditID

	balance, err := s.DB.UserCreditsAdd(ctx, userID, amount)
	if err != nil {
		// The ledger row stays pending; the balance was never touched.
		return c, errors.Wrapf(err, "error applying %s Credit %s to balance for UserID: %s",
			creditType, creditID.Hex(), userID.Hex())
	}

	if err = s.DB.CreditSetStatus(ctx, creditID, model.CreditStatusCompleted, balance); err != nil {
		// Balance already moved; the row is left pending and will disagree
		// with User.credits until someone reconciles it by hand.
		return c, errors.Wrapf(err, "error completing %s Credit %s for UserID: %s",
			creditType, creditID.Hex(), userID.Hex())
	}

	c.Status = model.CreditStatusCompleted
	c.BalanceAfter = balance
	return c, nil
}

// debitUsage charges one credit for an AI answer and updates the user's
// usage counters. Called only after the provider call succeeded.
func (s Server) debitUsage(ctx context.Context, userID primitive.ObjectID, description string) (model.Credit, error) {
	c, err := s.recordLedger(ctx, userID, -1, model.CreditTypeUsage, description, model.CreditMetadata{Source: "ai_answer"})
	if err != nil {
		return c, err
	}
	if err = s.DB.UserUsageRecord(ctx, userID, 1); err != nil {
		s.Logger.Errorf("debitUsage: Error recording usage for UserID: %s, err: %v", userID.Hex(), err)
	}
	return c, nil
}
