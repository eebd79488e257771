package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OTP is the transient password-reset state stored on a user. It is absent
// from the document unless a reset is in progress.
type OTP struct {
	Code      string    `bson:"code" json:"-"`
	ExpiresAt time.Time `bson:"expiresAt" json:"-"`
}

// User is a registered account. The password field holds a bcrypt hash and
// is never serialized to JSON.
type User struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	FullName        string               `bson:"fullName" json:"fullName"`
	About           string               `bson:"about" json:"about"`
	Location        string               `bson:"location,omitempty" json:"location,omitempty"`
	Email           string               `bson:"email" json:"email"`
	Password        string               `bson:"password" json:"-"`
	Mobile          string               `bson:"mobile,omitempty" json:"mobile,omitempty"`
	ProfileImage    string               `bson:"profileImage" json:"profileImage"`
	EventsAttended  []primitive.ObjectID `bson:"eventsAttended" json:"eventsAttended"`
	EventsCreated   []primitive.ObjectID `bson:"eventsCreated" json:"eventsCreated"`
	EventsAttending []primitive.ObjectID `bson:"eventsAttending" json:"eventsAttending"`
	OTP             *OTP                 `bson:"otp,omitempty" json:"-"`
}

// Profile is the public projection of a user returned by profile endpoints.
type Profile struct {
	ID           primitive.ObjectID `json:"_id"`
	FullName     string             `json:"fullName"`
	About        string             `json:"about"`
	Location     string             `json:"location"`
	Email        string             `json:"email"`
	Mobile       string             `json:"mobile"`
	ProfileImage string             `json:"profileImage"`
}

// PublicProfile strips credentials and event references from a user.
func (u *User) PublicProfile() Profile {
	return Profile{
		ID:           u.ID,
		FullName:     u.FullName,
		About:        u.About,
		Location:     u.Location,
		Email:        u.Email,
		Mobile:       u.Mobile,
		ProfileImage: u.ProfileImage,
	}
}
