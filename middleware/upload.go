package middleware

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventora/eventora-backend/storage"
)

// Context keys set by the upload middlewares for downstream handlers.
const (
	ContextProfileImage = "profileImageFile"
	ContextEventImages  = "eventImageFiles"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

var (
	errFileTooLarge    = errors.New("file exceeds the maximum allowed size")
	errInvalidFileType = errors.New("invalid file type, only JPEG, PNG and GIF are allowed")
)

func validateImage(fh *multipart.FileHeader, maxBytes int64) error {
	if fh.Size > maxBytes {
		return errFileTooLarge
	}
	if !allowedImageTypes[fh.Header.Get("Content-Type")] {
		return errInvalidFileType
	}
	return nil
}

func saveUpload(store *storage.ImageStore, fh *multipart.FileHeader, name string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	return store.Save(name, src)
}

// ProfileImageUpload accepts an optional "profileImage" multipart file,
// validates type and size and stores it named after the authenticated user's
// id so a later upload overwrites the previous one. Must run after Auth.
func ProfileImageUpload(store *storage.ImageStore, maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("profileImage")
		if err != nil {
			// no file attached; profile updates without an image are fine
			c.Next()
			return
		}

		if err := validateImage(fh, maxBytes); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		name := c.GetString(ContextUserID) + strings.ToLower(filepath.Ext(fh.Filename))
		if err := saveUpload(store, fh, name); err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "failed to store image"})
			return
		}

		c.Set(ContextProfileImage, name)
		c.Next()
	}
}

// EventImagesUpload accepts up to maxCount "images" multipart files, each
// validated for type and size, stored under their original filenames.
// A part with no filename gets a generated one.
func EventImagesUpload(store *storage.ImageStore, maxBytes int64, maxCount int) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid multipart form"})
			return
		}

		files := form.File["images"]
		if len(files) > maxCount {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "too many files"})
			return
		}

		names := make([]string, 0, len(files))
		for _, fh := range files {
			if err := validateImage(fh, maxBytes); err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}

			name := filepath.Base(fh.Filename)
			if name == "" || name == "." || name == "/" {
				name = uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
			}
			if err := saveUpload(store, fh, name); err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "failed to store image"})
				return
			}
			names = append(names, name)
		}

		c.Set(ContextEventImages, names)
		c.Next()
	}
}
