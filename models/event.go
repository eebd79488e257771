package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event status values.
const (
	StatusHosting  = 0
	StatusUpcoming = 1
	StatusPast     = 2
)

// ValidStatus reports whether s is one of the three known event states.
func ValidStatus(s int) bool {
	return s == StatusHosting || s == StatusUpcoming || s == StatusPast
}

// Comment is embedded in an event's comments array.
type Comment struct {
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Event is a user-created event. UserID is the creator and never changes
// after insertion.
type Event struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	UserID          primitive.ObjectID   `bson:"userId" json:"userId"`
	EventName       string               `bson:"eventName" json:"eventName"`
	StartDate       time.Time            `bson:"startDate" json:"startDate"`
	EndDate         time.Time            `bson:"endDate" json:"endDate"`
	Location        string               `bson:"location" json:"location"`
	AboutEvent      string               `bson:"aboutEvent" json:"aboutEvent"`
	Images          []string             `bson:"images" json:"images"`
	BackgroundImage string               `bson:"backgroundImage,omitempty" json:"backgroundImage,omitempty"`
	Status          int                  `bson:"status" json:"status"`
	Comments        []Comment            `bson:"comments" json:"comments"`
	AttendUsers     []primitive.ObjectID `bson:"attendUsers" json:"attendUsers"`
}
