package model

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	CreditTypePurchase = "purchase"
	CreditTypeUsage    = "usage"
	CreditTypeRefund   = "refund"
	CreditTypeBonus    = "bonus"
)

const (
	CreditStatusPending   = "pending"
	CreditStatusCompleted = "completed"
	CreditStatusFailed    = "failed"
	CreditStatusRefunded  = "refunded"
)

// Credit is one row of the append-only ledger. The running balance lives on
// User.Credits and is written separately from the ledger row, with no
// transaction tying the two together.
type Credit struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID       primitive.ObjectID `bson:"user" json:"-"`
	Amount       int                `bson:"amount" json:"amount"`
	Type         string             `bson:"type" json:"type"`
	Status       string             `bson:"status" json:"status"`
	Description  string             `bson:"description" json:"description"`
	BalanceAfter int                `bson:"balance_after" json:"balance_after"`
	Metadata     CreditMetadata     `bson:"metadata" json:"metadata"`
	CreatedAt    primitive.DateTime `bson:"created_at" json:"created_at"`
}

type CreditMetadata struct {
	Source        string `bson:"source" json:"source"`
	TransactionID string `bson:"transaction_id" json:"transaction_id"`
}

func ValidCreditType(t string) bool {
	switch t {
	case CreditTypePurchase, CreditTypeUsage, CreditTypeRefund, CreditTypeBonus:
		return true
	}
	return false
}
