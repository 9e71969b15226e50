package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback is a single submission stored in the feedback collection. It is never updated.
type Feedback struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`

	Message string `bson:"message" json:"message"`
	Rating  int    `bson:"rating" json:"rating"`
	Email   string `bson:"email,omitempty" json:"email,omitempty"`

	// Where notifications for this record are addressed.
	RecipientEmail string `bson:"recipientEmail" json:"recipientEmail"`

	// Optional: IP address for analytics (not personal info)
	IPAddress string `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
}

const (
	MinRating = 1
	MaxRating = 5
)

// ValidRating reports whether r is inside the accepted 1-5 range.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
