package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/gif" // Register GIF decoder
	_ "image/png" // Register PNG decoder
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"recipebox/internal/config"
	"recipebox/internal/middleware"
	"recipebox/internal/models"
	"recipebox/internal/notifications"
	"recipebox/internal/observability"
	"recipebox/internal/repository"
	"recipebox/internal/storage"
	"recipebox/internal/validation"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultImageMaxUploadSizeMB = 10
	MasterMaxSize               = 2048
	JPEGQuality                 = 82
	WebPQuality                 = 75
)

// ImageService validates, normalizes and stores uploaded pictures.
type ImageService struct {
	images             repository.ImageRepository
	posts              repository.PostRepository
	store              storage.FileStore
	events             EventPublisher
	maxUploadSizeBytes int64
}

func NewImageService(
	images repository.ImageRepository,
	posts repository.PostRepository,
	store storage.FileStore,
	events EventPublisher,
	cfg *config.Config,
) *ImageService {
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB
	if cfg != nil && cfg.ImageMaxUploadSizeMB > 0 {
		maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
	}
	return &ImageService{
		images:             images,
		posts:              posts,
		store:              store,
		events:             events,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// URL resolves a stored key to its public URL. Empty keys stay empty.
func (s *ImageService) URL(key string) string {
	if key == "" || s.store == nil {
		return key
	}
	return s.store.URL(key)
}

// AddToPost stores up as a gallery image of an owned post.
func (s *ImageService) AddToPost(ctx context.Context, userID, postID uint, up *Upload) (*models.Image, error) {
	if err := s.posts.Exists(ctx, userID, postID); err != nil {
		return nil, err
	}
	key, err := s.Store(ctx, storage.KindPost, "image", up)
	if err != nil {
		return nil, err
	}

	img := &models.Image{PostID: postID, Image: key}
	if err := s.images.Create(ctx, userID, img); err != nil {
		s.Remove(ctx, key)
		return nil, err
	}

	publish(ctx, s.events, userID, notifications.Event{
		Type:    notifications.EventPostImageAdded,
		Payload: map[string]any{"post": postID, "id": img.ID, "image": s.URL(key)},
	})
	return img, nil
}

// Store validates and normalizes up and saves it under a fresh key of kind.
// Problems with the file are reported as field errors on field.
func (s *ImageService) Store(ctx context.Context, kind, field string, up *Upload) (string, error) {
	data, ext, contentType, err := s.normalize(field, up)
	if err != nil {
		observability.ImageUploads.WithLabelValues(kind, "rejected").Inc()
		return "", err
	}

	key := storage.ObjectKey(kind, ext)
	if err := s.store.Save(ctx, key, contentType, bytes.NewReader(data)); err != nil {
		observability.ImageUploads.WithLabelValues(kind, "error").Inc()
		return "", models.NewInternalError(fmt.Errorf("store image: %w", err))
	}
	observability.ImageUploads.WithLabelValues(kind, "stored").Inc()
	return key, nil
}

// Remove deletes stored objects, logging failures.
func (s *ImageService) Remove(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to delete media object",
				slog.String("key", key), slog.String("error", err.Error()))
		}
	}
}

func (s *ImageService) normalize(field string, up *Upload) ([]byte, string, string, error) {
	fieldErr := func(msg string) error {
		return models.NewFieldValidationError(map[string][]string{field: {msg}})
	}
	if up == nil || len(up.Content) == 0 {
		return nil, "", "", fieldErr(validation.MsgNoFile)
	}
	if int64(len(up.Content)) > s.maxUploadSizeBytes {
		return nil, "", "", fieldErr(fmt.Sprintf(validation.MsgFileTooLarge, s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(up.Content)
	if !isAllowedImageMIME(detectedType) {
		return nil, "", "", fieldErr(validation.MsgInvalidImage)
	}
	decoded, format, err := image.Decode(bytes.NewReader(up.Content))
	if err != nil || !isSupportedDecodedFormat(format) {
		return nil, "", "", fieldErr(validation.MsgInvalidImage)
	}

	resized := resizeToFit(decoded, MasterMaxSize, MasterMaxSize)
	if format == "webp" {
		out, err := encodeWebP(resized, WebPQuality)
		if err != nil {
			return nil, "", "", models.NewInternalError(err)
		}
		return out, "webp", "image/webp", nil
	}
	out, err := encodeJPEG(flatten(resized), JPEGQuality)
	if err != nil {
		return nil, "", "", models.NewInternalError(err)
	}
	return out, "jpg", "image/jpeg", nil
}

// flatten composes src over white so transparent areas survive JPEG encoding.
func flatten(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isSupportedDecodedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}
