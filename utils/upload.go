package utils

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"motormart/config"
)

// allowedUploadExts is the shared allowlist for every upload call site
// (order receipts, installment receipts, vehicle gallery images).
var allowedUploadExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".pdf":  true,
}

// SaveUpload validates an uploaded file and moves it into the named subdir
// under the upload root, prefixing the filename with a uniqueness token so
// concurrent uploads never collide. It returns the stored path relative to
// the upload root's parent, suitable for serving back to the SPA.
func SaveUpload(c *gin.Context, file *multipart.FileHeader, subdir string) (string, error) {
	if file.Size > config.AppConfig.MaxUploadSize {
		return "", fmt.Errorf("file %s exceeds the %d MB upload limit",
			file.Filename, config.AppConfig.MaxUploadSize>>20)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedUploadExts[ext] {
		return "", fmt.Errorf("file type %q is not allowed", ext)
	}

	dir := filepath.Join(config.AppConfig.UploadRoot, subdir)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", err
	}

	filename := uuid.NewString() + "_" + filepath.Base(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(dir, filename)); err != nil {
		return "", err
	}

	return "uploads/" + subdir + "/" + filename, nil
}
