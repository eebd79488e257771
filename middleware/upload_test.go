package middleware

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventora/eventora-backend/storage"
)

const testUserHex = "507f1f77bcf86cd799439011"

func newUploadStore(t *testing.T, mount string) *storage.ImageStore {
	t.Helper()
	store, err := storage.NewImageStore(filepath.Join(t.TempDir(), "up"), mount)
	require.NoError(t, err)
	return store
}

// addImagePart writes a multipart file part with an explicit content type.
func addImagePart(t *testing.T, mw *multipart.Writer, field, filename, contentType string, size int) {
	t.Helper()
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("x"), size))
	require.NoError(t, err)
}

func profileRouter(store *storage.ImageStore, maxBytes int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PUT("/profile",
		func(c *gin.Context) { c.Set(ContextUserID, testUserHex) },
		ProfileImageUpload(store, maxBytes),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"file": c.GetString(ContextProfileImage)})
		})
	return r
}

func TestProfileImageUploadStoresByUserID(t *testing.T) {
	store := newUploadStore(t, "/usersprofilepics")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	addImagePart(t, mw, "profileImage", "me.PNG", "image/png", 64)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/profile", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	profileRouter(store, 2<<20).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), testUserHex+".png")

	_, err := os.Stat(filepath.Join(store.Dir, testUserHex+".png"))
	assert.NoError(t, err)
}

func TestProfileImageUploadOptional(t *testing.T) {
	store := newUploadStore(t, "/usersprofilepics")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("fullName", "Alice"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/profile", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	profileRouter(store, 2<<20).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProfileImageUploadRejectsBadType(t *testing.T) {
	store := newUploadStore(t, "/usersprofilepics")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	addImagePart(t, mw, "profileImage", "doc.pdf", "application/pdf", 64)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/profile", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	profileRouter(store, 2<<20).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileImageUploadRejectsOversized(t *testing.T) {
	store := newUploadStore(t, "/usersprofilepics")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	addImagePart(t, mw, "profileImage", "big.png", "image/png", 256)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/profile", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	profileRouter(store, 100).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func eventsRouter(store *storage.ImageStore, maxBytes int64, maxCount int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/upload", EventImagesUpload(store, maxBytes, maxCount), func(c *gin.Context) {
		names, _ := c.Get(ContextEventImages)
		c.JSON(http.StatusOK, gin.H{"files": names})
	})
	return r
}

func TestEventImagesUploadKeepsOriginalNames(t *testing.T) {
	store := newUploadStore(t, "/eventimages")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	addImagePart(t, mw, "images", "one.jpg", "image/jpeg", 64)
	addImagePart(t, mw, "images", "two.gif", "image/gif", 64)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	eventsRouter(store, 2<<20, 10).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "one.jpg")
	assert.Contains(t, w.Body.String(), "two.gif")

	_, err := os.Stat(filepath.Join(store.Dir, "one.jpg"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(store.Dir, "two.gif"))
	assert.NoError(t, err)
}

func TestEventImagesUploadTooMany(t *testing.T) {
	store := newUploadStore(t, "/eventimages")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for i := 0; i < 3; i++ {
		addImagePart(t, mw, "images", fmt.Sprintf("f%d.png", i), "image/png", 16)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	eventsRouter(store, 2<<20, 2).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventImagesUploadRejectsBadType(t *testing.T) {
	store := newUploadStore(t, "/eventimages")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	addImagePart(t, mw, "images", "ok.png", "image/png", 16)
	addImagePart(t, mw, "images", "bad.txt", "text/plain", 16)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	eventsRouter(store, 2<<20, 10).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventImagesUploadGeneratesNameWhenMissing(t *testing.T) {
	store := newUploadStore(t, "/eventimages")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	addImagePart(t, mw, "images", ".", "image/png", 16)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	eventsRouter(store, 2<<20, 10).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, strings.Contains(w.Body.String(), `"files":[""]`))

	entries, err := os.ReadDir(store.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].Name())
}
