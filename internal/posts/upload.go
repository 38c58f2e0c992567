package posts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/ayush/inkwell/backend/internal/apperr"
	"github.com/ayush/inkwell/backend/internal/models"
	"github.com/ayush/inkwell/backend/internal/slug"
)

const (
	uploadKeyPrefix  = "uploads/"
	uploadPathPrefix = "/uploads/"
)

var (
	safeExt  = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)
	safeName = regexp.MustCompile(`^[a-z0-9_.-]+$`)
)

// Upload is a single file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadImage stores an image under a collision-resistant name and returns
// the path clients embed in posts.
func (s *Service) UploadImage(ctx context.Context, up *Upload) (string, error) {
	if up == nil || up.Body == nil {
		return "", apperr.Validation("No file uploaded")
	}
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	name := objectName(up.Filename, s.now().UnixMilli())
	if err := s.files.Upload(ctx, uploadKeyPrefix+name, up.Body, up.Size, contentType); err != nil {
		return "", apperr.Internal("store upload", err)
	}
	return uploadPathPrefix + name, nil
}

// OpenUpload returns the bytes and content type of a stored image.
func (s *Service) OpenUpload(ctx context.Context, name string) ([]byte, string, error) {
	if !safeName.MatchString(name) {
		return nil, "", apperr.NotFound("File not found")
	}
	data, contentType, err := s.files.Download(ctx, uploadKeyPrefix+name)
	if errors.Is(err, models.ErrNotFound) {
		return nil, "", apperr.NotFound("File not found")
	}
	if err != nil {
		return nil, "", apperr.Internal("read upload", err)
	}
	return data, contentType, nil
}

// objectName builds "<millis>-<random>-<slugged base><ext>".
func objectName(filename string, millis int64) string {
	filename = path.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext := strings.ToLower(path.Ext(filename))
	if !safeExt.MatchString(ext) {
		ext = ""
	}
	base := slug.Generate(strings.TrimSuffix(filename, path.Ext(filename)))
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("%d-%s-%s%s", millis, uuid.NewString()[:8], base, ext)
}

// uploadKey maps a stored image path back to its object key.
func uploadKey(p string) (string, bool) {
	name, ok := strings.CutPrefix(p, uploadPathPrefix)
	if !ok || !safeName.MatchString(name) {
		return "", false
	}
	return uploadKeyPrefix + name, true
}
