package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventora/eventora-backend/middleware"
)

// UploadEventImages reports the URLs of the image files the upload
// middleware just stored.
func (e *EventController) UploadEventImages(c *gin.Context) {
	names, _ := c.Get(middleware.ContextEventImages)
	filenames, _ := names.([]string)
	if len(filenames) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No files were uploaded"})
		return
	}

	base := requestBaseURL(c)
	files := make([]gin.H, 0, len(filenames))
	for _, name := range filenames {
		files = append(files, gin.H{
			"fileName": name,
			"url":      e.Store.URL(base, name),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Files uploaded successfully",
		"files":   files,
	})
}
