package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ElenaCherpakova/e-store-aws-backend/services/common/logger"
)

const (
	csvContentType = "text/csv"
	uploadExpiry   = time.Hour
)

// Presigner issues presigned PUT URLs.
type Presigner interface {
	PresignPut(ctx context.Context, bucket, key, contentType string, expires time.Duration) (string, error)
}

// ImportController serves upload URLs for catalog files.
type ImportController struct {
	presigner      Presigner
	bucket         string
	uploadedPrefix string
}

func NewImportController(presigner Presigner, bucket, uploadedPrefix string) *ImportController {
	return &ImportController{
		presigner:      presigner,
		bucket:         bucket,
		uploadedPrefix: uploadedPrefix,
	}
}

// ImportProductsFile returns a presigned URL the client PUTs the CSV to.
// The object lands under the uploaded prefix, which triggers the file parser.
func (ic *ImportController) ImportProductsFile(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "The file name is required"})
		return
	}

	key := ic.uploadedPrefix + name
	url, err := ic.presigner.PresignPut(c.Request.Context(), ic.bucket, key, csvContentType, uploadExpiry)
	if err != nil {
		logger.Error(c, "Failed to presign catalog upload", err, zap.String("key", key))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	logger.Info(c, "Issued catalog upload URL", zap.String("bucket", ic.bucket), zap.String("key", key))
	c.JSON(http.StatusOK, gin.H{"url": url})
}
