package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/eventora/eventora-backend/config"
	"github.com/eventora/eventora-backend/utils"
)

func mockAuthRouter(mt *mtest.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ac := &AuthController{
		DB:  mt.DB,
		Cfg: &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour},
	}

	r := gin.New()
	r.POST("/api/auth/register", ac.Register)
	r.POST("/api/auth/login", ac.Login)
	r.POST("/api/auth/password/verify", ac.VerifyOTP)
	return r
}

func userDoc(id primitive.ObjectID, email, passwordHash string, otp bson.D) bson.D {
	doc := bson.D{
		{Key: "_id", Value: id},
		{Key: "fullName", Value: "Alice"},
		{Key: "email", Value: email},
		{Key: "password", Value: passwordHash},
	}
	if otp != nil {
		doc = append(doc, bson.E{Key: "otp", Value: otp})
	}
	return doc
}

func otpDoc(code string, expiresAt time.Time) bson.D {
	return bson.D{
		{Key: "code", Value: code},
		{Key: "expiresAt", Value: primitive.NewDateTimeFromTime(expiresAt)},
	}
}

func TestRegisterDuplicateEmailOnInsert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unique index violation maps to 409", func(mt *mtest.T) {
		// the lookup sees nothing, a concurrent registration wins the
		// insert and the unique email index rejects ours
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, mt.DB.Name()+".users", mtest.FirstBatch),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index:   0,
				Code:    11000,
				Message: "E11000 duplicate key error",
			}),
		)

		r := mockAuthRouter(mt)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, jsonRequest(mt.T, http.MethodPost, "/api/auth/register",
			map[string]any{"fullName": "Alice", "email": "alice@x.com", "password": "pw1234"}))

		assert.Equal(mt.T, http.StatusConflict, w.Code)
		assert.Contains(mt.T, w.Body.String(), "User already exists")
	})
}

func TestRegisterExistingEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("known email gets 409 before insert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(1, mt.DB.Name()+".users",
			mtest.FirstBatch, userDoc(primitive.NewObjectID(), "alice@x.com", "hash", nil)))

		r := mockAuthRouter(mt)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, jsonRequest(mt.T, http.MethodPost, "/api/auth/register",
			map[string]any{"fullName": "Alice", "email": "alice@x.com", "password": "pw1234"}))

		assert.Equal(mt.T, http.StatusConflict, w.Code)
	})
}

func TestLoginPasswordCheck(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	hash, err := utils.HashPassword("right-password")
	require.NoError(t, err)

	mt.Run("wrong password gets 401", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(1, mt.DB.Name()+".users",
			mtest.FirstBatch, userDoc(primitive.NewObjectID(), "alice@x.com", hash, nil)))

		r := mockAuthRouter(mt)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, jsonRequest(mt.T, http.MethodPost, "/api/auth/login",
			map[string]any{"email": "alice@x.com", "password": "wrong-password"}))

		assert.Equal(mt.T, http.StatusUnauthorized, w.Code)
	})

	mt.Run("correct password gets a token", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, mt.DB.Name()+".users",
			mtest.FirstBatch, userDoc(id, "alice@x.com", hash, nil)))

		r := mockAuthRouter(mt)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, jsonRequest(mt.T, http.MethodPost, "/api/auth/login",
			map[string]any{"email": "alice@x.com", "password": "right-password"}))

		assert.Equal(mt.T, http.StatusOK, w.Code)
		assert.Contains(mt.T, w.Body.String(), "token")
		assert.Contains(mt.T, w.Body.String(), id.Hex())
	})
}

func TestVerifyOTPExpiry(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	verify := func(mt *mtest.T, otp bson.D, code string) *httptest.ResponseRecorder {
		mt.AddMockResponses(mtest.CreateCursorResponse(1, mt.DB.Name()+".users",
			mtest.FirstBatch, userDoc(primitive.NewObjectID(), "alice@x.com", "hash", otp)))

		r := mockAuthRouter(mt)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, jsonRequest(mt.T, http.MethodPost, "/api/auth/password/verify",
			map[string]any{"email": "alice@x.com", "otp": code}))
		return w
	}

	mt.Run("valid just before expiry", func(mt *mtest.T) {
		w := verify(mt, otpDoc("1234", time.Now().Add(time.Second)), "1234")
		assert.Equal(mt.T, http.StatusOK, w.Code)
	})

	mt.Run("expired just after expiry", func(mt *mtest.T) {
		w := verify(mt, otpDoc("1234", time.Now().Add(-time.Second)), "1234")
		assert.Equal(mt.T, http.StatusBadRequest, w.Code)
		assert.Contains(mt.T, w.Body.String(), "Invalid or expired OTP.")
	})

	mt.Run("wrong code", func(mt *mtest.T) {
		w := verify(mt, otpDoc("1234", time.Now().Add(10*time.Minute)), "9999")
		assert.Equal(mt.T, http.StatusBadRequest, w.Code)
	})

	mt.Run("no pending code", func(mt *mtest.T) {
		w := verify(mt, nil, "1234")
		assert.Equal(mt.T, http.StatusBadRequest, w.Code)
	})
}
