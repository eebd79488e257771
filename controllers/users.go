package controllers

import (
	"context"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/eventora/eventora-backend/middleware"
	"github.com/eventora/eventora-backend/models"
	"github.com/eventora/eventora-backend/storage"
	"github.com/eventora/eventora-backend/utils"
)

// UserController handles profile updates and user lookups.
type UserController struct {
	DB    *mongo.Database
	Store *storage.ImageStore // profile image store
}

func NewUserController(db *mongo.Database, store *storage.ImageStore) *UserController {
	return &UserController{DB: db, Store: store}
}

// UpdateProfile applies a partial profile update from a multipart form.
// The upload middleware has already stored a new image, if any; when the new
// image URL differs from the stored one the old file is removed.
func (u *UserController) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	users := u.DB.Collection("users")

	var user models.User
	if err := users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	set := bson.M{}

	if filename := c.GetString(middleware.ContextProfileImage); filename != "" {
		newURL := u.Store.URL(requestBaseURL(c), filename)
		// compare by basename: the stored URL may carry a different host
		// while still pointing at the file just written
		if staleProfileImage(user.ProfileImage, filename) {
			u.Store.Remove(user.ProfileImage)
		}
		user.ProfileImage = newURL
		set["profileImage"] = newURL
	} else if posted := c.PostForm("profileImage"); posted != "" {
		user.ProfileImage = posted
		set["profileImage"] = posted
	}

	if v := c.PostForm("fullName"); v != "" {
		user.FullName = v
		set["fullName"] = v
	}
	if v := c.PostForm("mobile"); v != "" {
		user.Mobile = v
		set["mobile"] = v
	}
	if v := c.PostForm("about"); v != "" {
		user.About = v
		set["about"] = v
	}
	if v := c.PostForm("location"); v != "" {
		user.Location = v
		set["location"] = v
	}

	if pw := c.PostForm("password"); pw != "" {
		hash, err := utils.HashPassword(pw)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		set["password"] = hash
	}

	if len(set) > 0 {
		if _, err := users.UpdateByID(ctx, userID, bson.M{"$set": set}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    user.PublicProfile(),
	})
}

// staleProfileImage reports whether the stored image URL names a different
// file than the one just saved and is therefore safe to delete.
func staleProfileImage(storedURL, filename string) bool {
	return storedURL != "" && path.Base(storedURL) != filename
}

// GetUserByID returns a user with the created/attending/attended event
// references resolved to full event records.
func (u *UserController) GetUserByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := u.DB.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	attended, err := u.eventsByID(ctx, user.EventsAttended)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	created, err := u.eventsByID(ctx, user.EventsCreated)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	attending, err := u.eventsByID(ctx, user.EventsAttending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"_id":             user.ID,
		"fullName":        user.FullName,
		"about":           user.About,
		"location":        user.Location,
		"email":           user.Email,
		"mobile":          user.Mobile,
		"profileImage":    user.ProfileImage,
		"eventsAttended":  attended,
		"eventsCreated":   created,
		"eventsAttending": attending,
	})
}

func (u *UserController) eventsByID(ctx context.Context, ids []primitive.ObjectID) ([]models.Event, error) {
	events := []models.Event{}
	if len(ids) == 0 {
		return events, nil
	}

	cursor, err := u.DB.Collection("events").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
