package model

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	ExtensionUserStatusActive    = "active"
	ExtensionUserStatusSuspended = "suspended"
)

// CheggExtension maps users to a Chegg entitlement. The metadata counters are
// incremented and decremented alongside the users array mutations, not derived
// from it, so a write that fails partway can leave them out of sync.
type CheggExtension struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Users       []ExtensionUser    `bson:"users" json:"users"`
	Metadata    ExtensionMetadata  `bson:"metadata" json:"metadata"`
	CreatedAt   primitive.DateTime `bson:"created_at" json:"-"`
	UpdatedAt   primitive.DateTime `bson:"updated_at" json:"-"`
}

type ExtensionUser struct {
	UserID      primitive.ObjectID `bson:"user" json:"-"`
	CheggIDName string             `bson:"chegg_id_name" json:"chegg_id_name"`
	CreditsUsed int                `bson:"credits_used" json:"credits_used"`
	Status      string             `bson:"status" json:"status"`
	AddedAt     primitive.DateTime `bson:"added_at" json:"added_at"`
}

type ExtensionMetadata struct {
	TotalUsers       int `bson:"total_users" json:"total_users"`
	TotalCreditsUsed int `bson:"total_credits_used" json:"total_credits_used"`
}
