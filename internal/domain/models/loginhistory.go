// internal/domain/models/loginhistory.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Login providers recorded in LoginRecord.Provider.
const (
	LoginProviderPassword = "password"
	LoginProviderGoogle   = "google"
)

// LoginRecord captures a single successful login event.
// Records expire after a year (TTL index on created_at).
type LoginRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	IP        string             `bson:"ip" json:"ip"`
	UserAgent string             `bson:"user_agent,omitempty" json:"userAgent,omitempty"`
	Provider  string             `bson:"provider" json:"provider"`
}
