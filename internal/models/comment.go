package models

import "time"

// Comment is embedded in PostModel.Comments in arrival order.
type Comment struct {
	ID        string    `json:"id"        bson:"_id"`
	UserID    string    `json:"user"      bson:"user"`
	Content   string    `json:"content"   bson:"content"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
