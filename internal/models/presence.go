package models

import "time"

type PresenceStatus string

const (
	PresenceOnline  PresenceStatus = "online"
	PresenceOffline PresenceStatus = "offline"
)

// Presence is the last known connection state of a user; one document per user.
type Presence struct {
	UserID     string         `bson:"userId" json:"userId"`
	Status     PresenceStatus `bson:"status" json:"status"`
	LastActive time.Time      `bson:"lastActive" json:"lastActive"`
	Device     string         `bson:"device,omitempty" json:"device,omitempty"`
}
