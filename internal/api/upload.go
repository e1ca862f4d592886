package api

import (
	"errors"        // Error matching
	"net/http"      // HTTP status codes
	"os"            // File checks
	"path/filepath" // Path manipulation

	"steaklog/internal/storage" // Upload storage

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// UploadHandler stores the multipart "photo" file under a generated unique name
func UploadHandler(up storage.Uploads, maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes) // Enforce size limit
		}
		fh, err := c.FormFile("photo")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "no file"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload", "detail": err.Error()})
			return
		}
		defer f.Close()

		name := storage.NewName(fh.Filename) // Random name keeping the extension
		if err := up.Save(c.Request.Context(), name, f, fh.Size, fh.Header.Get("Content-Type")); err != nil {
			logrus.WithFields(logrus.Fields{
				"filename": name,        // Generated name
				"error":    err.Error(), // Error message
			}).Error("Failed to save upload")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save upload", "detail": err.Error()})
			return
		}
		logrus.WithFields(logrus.Fields{
			"filename": name,        // Generated name
			"original": fh.Filename, // Client supplied name
			"size":     fh.Size,     // Bytes stored
		}).Info("Upload stored")
		c.JSON(http.StatusOK, gin.H{"success": true, "filename": name, "url": storage.URL(name)})
	}
}

// ServeUploadHandler streams a stored upload back to the client
func ServeUploadHandler(up storage.Uploads) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, info, err := up.Open(c.Request.Context(), c.Param("filename"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open upload", "detail": err.Error()})
			return
		}
		defer rc.Close()
		contentType := info.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.DataFromReader(http.StatusOK, info.Size, contentType, rc, nil)
	}
}

// IndexHandler serves the front page from the static directory
func IndexHandler(staticDir string) gin.HandlerFunc {
	index := filepath.Join(staticDir, "index.html")
	return func(c *gin.Context) {
		if st, err := os.Stat(index); err != nil || st.IsDir() {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.File(index)
	}
}
