package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ForumCategory struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Order       int                `bson:"order" json:"order"`
}

type ForumPost struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CategoryID    string             `bson:"categoryId" json:"categoryId"`
	Title         string             `bson:"title" json:"title"`
	Body          string             `bson:"body" json:"body"`
	AuthorID      string             `bson:"authorId" json:"authorId"`
	AuthorName    string             `bson:"authorName,omitempty" json:"authorName,omitempty"`
	AttachmentURL string             `bson:"attachmentUrl,omitempty" json:"attachmentUrl,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
