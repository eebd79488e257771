package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/eventora/eventora-backend/config"
	"github.com/eventora/eventora-backend/models"
	"github.com/eventora/eventora-backend/utils"
)

// AuthController handles registration, login and the OTP password-reset flow.
type AuthController struct {
	DB     *mongo.Database
	Cfg    *config.Config
	Mailer *utils.Mailer
}

func NewAuthController(db *mongo.Database, cfg *config.Config, mailer *utils.Mailer) *AuthController {
	return &AuthController{DB: db, Cfg: cfg, Mailer: mailer}
}

// RegisterInput request body for registration
type RegisterInput struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginInput request body for login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ResetOTPInput starts a password reset
type ResetOTPInput struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyOTPInput checks a pending code
type VerifyOTPInput struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

// ResetPasswordInput sets a new password
type ResetPasswordInput struct {
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// Register creates a new user. Duplicate emails are rejected with 409.
func (a *AuthController) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	users := a.DB.Collection("users")

	var existing models.User
	err := users.FindOne(ctx, bson.M{"email": input.Email}).Decode(&existing)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "User already exists"})
		return
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	newUser := models.User{
		ID:              primitive.NewObjectID(),
		FullName:        input.FullName,
		Email:           input.Email,
		Password:        hash,
		EventsAttended:  []primitive.ObjectID{},
		EventsCreated:   []primitive.ObjectID{},
		EventsAttending: []primitive.ObjectID{},
	}

	if _, err := users.InsertOne(ctx, newUser); err != nil {
		// the unique email index catches registrations racing past the
		// FindOne check above
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "User already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

// Login verifies credentials and issues a bearer token.
func (a *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	users := a.DB.Collection("users")

	var user models.User
	if err := users.FindOne(ctx, bson.M{"email": input.Email}).Decode(&user); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	if err := utils.CheckPassword(user.Password, input.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Please check the password"})
		return
	}

	token, err := utils.GenerateToken(a.Cfg.JWTSecret, user.ID.Hex(), a.Cfg.JWTExpiry)
	if err != nil {
		log.Error().Err(err).Msg("token generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "userId": user.ID.Hex()})
}

// SendResetOTP generates a 4-digit code, stores it on the user with an
// expiry and emails it. A pending code is overwritten.
func (a *AuthController) SendResetOTP(c *gin.Context) {
	var input ResetOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	users := a.DB.Collection("users")

	var user models.User
	if err := users.FindOne(ctx, bson.M{"email": input.Email}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
		return
	}

	code := utils.GenerateOTP(4)
	update := bson.M{
		"$set": bson.M{
			"otp": models.OTP{
				Code:      code,
				ExpiresAt: time.Now().Add(a.Cfg.OTPExpiry),
			},
		},
	}

	if _, err := users.UpdateByID(ctx, user.ID, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error. Please try again later."})
		return
	}

	if err := a.Mailer.SendOTPEmail(user.Email, code, a.Cfg.OTPExpiry); err != nil {
		log.Error().Err(err).Str("email", user.Email).Msg("failed to send OTP email")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send OTP."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset OTP sent to your email."})
}

// VerifyOTP checks a pending code without consuming it; the code stays
// valid until it expires or the password is actually reset.
func (a *AuthController) VerifyOTP(c *gin.Context) {
	var input VerifyOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	users := a.DB.Collection("users")

	var user models.User
	if err := users.FindOne(ctx, bson.M{"email": input.Email}).Decode(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired OTP."})
		return
	}

	if user.OTP == nil || user.OTP.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired OTP."})
		return
	}

	if user.OTP.Code != input.OTP || user.OTP.ExpiresAt.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired OTP."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP verified. You may now reset your password."})
}

// ResetPassword stores a new password hash and clears any pending OTP.
func (a *AuthController) ResetPassword(c *gin.Context) {
	var input ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	users := a.DB.Collection("users")

	var user models.User
	if err := users.FindOne(ctx, bson.M{"email": input.Email}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
		return
	}

	hash, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error. Please try again later."})
		return
	}

	update := bson.M{
		"$set":   bson.M{"password": hash},
		"$unset": bson.M{"otp": ""},
	}

	if _, err := users.UpdateByID(ctx, user.ID, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error. Please try again later."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully."})
}
