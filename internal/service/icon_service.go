package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/repository/storage"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/websocket"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"
)

const (
	MaxIconSize      = 2 * 1024 * 1024 // 2MB
	MinIconDimension = 32
	IconDimension    = 128
	iconContentType  = "image/png"
	defaultURLExpiry = 15 * time.Minute
)

var (
	ErrIconTooLarge             = errors.New("file too large. Maximum size is 2MB")
	ErrInvalidIconFormat        = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrIconTooSmall             = errors.New("image too small. Minimum 32x32 pixels")
	ErrInvalidIconData          = errors.New("invalid image data")
	ErrIconStorageNotConfigured = errors.New("icon storage not configured")
	ErrNoIcon                   = errors.New("category has no uploaded icon")
)

// AllowedIconExtensions maps extensions to content types
var AllowedIconExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// decoded image formats accepted, as named by image.Decode
var allowedDecodedFormats = map[string]bool{
	"jpeg": true,
	"png":  true,
	"webp": true,
}

// IconResult is a category with a short-lived URL for its icon
type IconResult struct {
	Category *domain.Category `json:"category"`
	URL      string           `json:"url"`
}

// IconService processes and stores category icons
type IconService struct {
	storage        storage.IconRepository
	categoryRepo   domain.CategoryRepository
	urlExpiry      time.Duration
	eventPublisher websocket.EventPublisher
}

// NewIconService creates a new IconService. storage may be nil when no bucket is configured.
func NewIconService(storage storage.IconRepository, categoryRepo domain.CategoryRepository, urlExpiry time.Duration) *IconService {
	if urlExpiry <= 0 {
		urlExpiry = defaultURLExpiry
	}
	return &IconService{storage: storage, categoryRepo: categoryRepo, urlExpiry: urlExpiry}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *IconService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *IconService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// IsEnabled indicates whether uploads are supported (storage configured).
func (s *IconService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// ValidateIcon validates icon format, size and dimensions
func (s *IconService) ValidateIcon(data []byte, filename string) error {
	_, err := s.validateAndDecode(data, filename)
	return err
}

func (s *IconService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxIconSize {
		return nil, ErrIconTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedIconExtensions[ext]; !ok {
		return nil, ErrInvalidIconFormat
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidIconData
	}
	if !allowedDecodedFormats[format] {
		return nil, ErrInvalidIconFormat
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinIconDimension || bounds.Dy() < MinIconDimension {
		return nil, ErrIconTooSmall
	}
	return img, nil
}

// ProcessIcon crops the image to a centred square and encodes it as a 128px PNG
func (s *IconService) ProcessIcon(img image.Image) ([]byte, error) {
	square := imaging.Fill(img, IconDimension, IconDimension, imaging.Center, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, square, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode icon: %w", err)
	}
	return buf.Bytes(), nil
}

// UploadIcon stores a new icon for the category and records its object path.
// The previous icon object, if any, is removed once the category points at the new one.
func (s *IconService) UploadIcon(ctx context.Context, userID, categoryID uuid.UUID, data []byte, filename string) (*IconResult, error) {
	if !s.IsEnabled() {
		return nil, ErrIconStorageNotConfigured
	}

	category, err := s.categoryRepo.GetByID(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return nil, err
	}
	encoded, err := s.ProcessIcon(img)
	if err != nil {
		return nil, err
	}

	objectPath := storage.GenerateIconPath(userID, categoryID, ".png")
	if _, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(encoded), iconContentType, int64(len(encoded))); err != nil {
		return nil, fmt.Errorf("failed to upload icon: %w", err)
	}

	previous := category.IconPath
	next := *category
	next.IconPath = &objectPath
	updated, err := s.categoryRepo.Update(ctx, &next)
	if err != nil {
		if delErr := s.storage.Delete(ctx, objectPath); delErr != nil {
			log.Warn().Err(delErr).Str("path", objectPath).Msg("Failed to clean up orphaned icon")
		}
		return nil, err
	}

	if previous != nil && *previous != "" && *previous != objectPath {
		if err := s.storage.Delete(ctx, *previous); err != nil {
			log.Warn().Err(err).Str("path", *previous).Msg("Failed to delete replaced icon")
		}
	}

	url, err := s.storage.GeneratePresignedURL(ctx, objectPath, s.urlExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign icon url: %w", err)
	}

	s.publishEvent(userID, websocket.CategoryUpdated(updated))
	return &IconResult{Category: updated, URL: url}, nil
}

// GetIconURL returns a presigned URL for the category's uploaded icon
func (s *IconService) GetIconURL(ctx context.Context, userID, categoryID uuid.UUID) (string, error) {
	if !s.IsEnabled() {
		return "", ErrIconStorageNotConfigured
	}
	category, err := s.categoryRepo.GetByID(ctx, userID, categoryID)
	if err != nil {
		return "", err
	}
	if category.IconPath == nil || *category.IconPath == "" {
		return "", ErrNoIcon
	}
	return s.storage.GeneratePresignedURL(ctx, *category.IconPath, s.urlExpiry)
}

// RemoveIcon deletes the uploaded icon and clears the category's icon path
func (s *IconService) RemoveIcon(ctx context.Context, userID, categoryID uuid.UUID) (*domain.Category, error) {
	if !s.IsEnabled() {
		return nil, ErrIconStorageNotConfigured
	}
	category, err := s.categoryRepo.GetByID(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}
	if category.IconPath == nil || *category.IconPath == "" {
		return category, nil
	}

	objectPath := *category.IconPath
	next := *category
	next.IconPath = nil
	updated, err := s.categoryRepo.Update(ctx, &next)
	if err != nil {
		return nil, err
	}
	if err := s.storage.Delete(ctx, objectPath); err != nil {
		log.Warn().Err(err).Str("path", objectPath).Msg("Failed to delete icon object")
	}

	s.publishEvent(userID, websocket.CategoryUpdated(updated))
	return updated, nil
}

// GetIconContentType returns the content type for a file extension
func GetIconContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := AllowedIconExtensions[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}
