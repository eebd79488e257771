package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserJSONHidesCredentials(t *testing.T) {
	u := User{
		ID:       primitive.NewObjectID(),
		FullName: "Alice",
		Email:    "alice@x.com",
		Password: "$2a$10$secret-hash",
		OTP:      &OTP{Code: "1234"},
	}

	data, err := json.Marshal(u)
	require.NoError(t, err)

	s := string(data)
	assert.NotContains(t, s, "secret-hash")
	assert.NotContains(t, s, "1234")
	assert.Contains(t, s, "alice@x.com")
}

func TestPublicProfile(t *testing.T) {
	u := User{
		ID:           primitive.NewObjectID(),
		FullName:     "Alice",
		Email:        "alice@x.com",
		Password:     "hash",
		ProfileImage: "http://localhost:8080/usersprofilepics/a.png",
	}

	p := u.PublicProfile()
	assert.Equal(t, u.ID, p.ID)
	assert.Equal(t, "Alice", p.FullName)
	assert.Equal(t, u.ProfileImage, p.ProfileImage)
}
