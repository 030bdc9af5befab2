package model

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Email       string             `bson:"email"`
	Password    []byte             `bson:"password"`
	Role        string             `bson:"role"`
	Credits     int                `bson:"credits"`
	Usage       Usage              `bson:"usage"`
	Preferences Preferences        `bson:"preferences"`
	LoginTokens []LoginToken       `bson:"login_tokens"`
	CreatedAt   primitive.DateTime `bson:"created_at"`
	UpdatedAt   primitive.DateTime `bson:"updated_at"`
}

type Usage struct {
	TotalRequests int                `bson:"total_requests"`
	CreditsUsed   int                `bson:"credits_used"`
	LastActive    primitive.DateTime `bson:"last_active"`
}

type Preferences struct {
	DefaultModel string `bson:"default_model"`
	Theme        string `bson:"theme"`
}

type LoginToken struct {
	TokenID    string             `bson:"token_id"`
	Token      []byte             `bson:"token"`
	Expiration primitive.DateTime `bson:"expiration"`
	CreatedAt  primitive.DateTime `bson:"created_at"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
