package models

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// NewID returns a fresh 24-hex document id. Both storage drivers use the same
// format so clients can always tell an id from a slug.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsID reports whether s has the shape of a document id.
func IsID(s string) bool {
	return objectIDPattern.MatchString(s)
}

// Base is embedded by every stored entity.
type Base struct {
	ID        string    `json:"id"        bson:"_id"       gorm:"type:char(24);primaryKey"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" gorm:"index"`
}

// EnsureID assigns an id when the entity does not carry one yet.
func (b *Base) EnsureID() {
	if b.ID == "" {
		b.ID = NewID()
	}
}
