package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/testutil"
	"github.com/google/uuid"
)

// createTestImage creates a test image of the specified size and format
func createTestImage(width, height int, format string) ([]byte, string) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 0, B: 0, A: 255})
		}
	}

	var buf bytes.Buffer
	var filename string

	switch format {
	case "png":
		png.Encode(&buf, img)
		filename = "test.png"
	default:
		jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85})
		filename = "test.jpg"
	}

	return buf.Bytes(), filename
}

func newIconFixture(t *testing.T) (*IconService, *testutil.MockIconRepository, *testutil.MockCategoryRepository, *domain.Category) {
	t.Helper()
	store := testutil.NewMockIconRepository()
	categories := testutil.NewMockCategoryRepository()
	category := &domain.Category{ID: uuid.New(), UserID: uuid.New(), Name: "Food", Type: domain.TransactionTypeExpense}
	categories.AddCategory(category)
	return NewIconService(store, categories, 10*time.Minute), store, categories, category
}

func TestValidateIcon(t *testing.T) {
	svc := NewIconService(nil, nil, 0)
	validJPEG, jpegName := createTestImage(64, 64, "jpeg")
	validPNG, pngName := createTestImage(32, 40, "png")
	small, smallName := createTestImage(31, 64, "png")

	tests := []struct {
		name     string
		data     []byte
		filename string
		expected error
	}{
		{"valid jpeg", validJPEG, jpegName, nil},
		{"valid png at minimum size", validPNG, pngName, nil},
		{"too large", make([]byte, MaxIconSize+1), "icon.png", ErrIconTooLarge},
		{"unsupported extension", validJPEG, "icon.gif", ErrInvalidIconFormat},
		{"too small", small, smallName, ErrIconTooSmall},
		{"not an image", []byte("not an image"), "icon.png", ErrInvalidIconData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ValidateIcon(tt.data, tt.filename)
			if err != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestProcessIcon_SquarePNG(t *testing.T) {
	svc := NewIconService(nil, nil, 0)
	img := image.NewRGBA(image.Rect(0, 0, 300, 120))

	data, err := svc.ProcessIcon(img)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	decoded, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Expected decodable output, got %v", err)
	}
	if format != "png" {
		t.Errorf("Expected png, got %s", format)
	}
	if decoded.Bounds().Dx() != IconDimension || decoded.Bounds().Dy() != IconDimension {
		t.Errorf("Expected %dx%d, got %v", IconDimension, IconDimension, decoded.Bounds())
	}
}

func TestUploadIcon_Success(t *testing.T) {
	svc, store, categories, category := newIconFixture(t)
	publisher := testutil.NewMockEventPublisher()
	svc.SetEventPublisher(publisher)
	data, filename := createTestImage(200, 100, "jpeg")

	result, err := svc.UploadIcon(context.Background(), category.UserID, category.ID, data, filename)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Category.IconPath == nil {
		t.Fatal("Expected icon path to be set")
	}
	path := *result.Category.IconPath
	prefix := category.UserID.String() + "/categories/" + category.ID.String() + "/"
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, ".png") {
		t.Errorf("Unexpected object path %s", path)
	}
	if _, ok := store.Objects[path]; !ok {
		t.Errorf("Expected object %s to be stored", path)
	}
	if !strings.Contains(result.URL, path) || !strings.Contains(result.URL, "expires=600") {
		t.Errorf("Unexpected presigned url %s", result.URL)
	}

	stored, _ := categories.GetByID(context.Background(), category.UserID, category.ID)
	if stored.IconPath == nil || *stored.IconPath != path {
		t.Errorf("Expected category to reference %s", path)
	}
	if types := publisher.Types(); len(types) != 1 || types[0] != "category.updated" {
		t.Errorf("Expected category.updated event, got %v", types)
	}
}

func TestUploadIcon_ReplacesPreviousObject(t *testing.T) {
	svc, store, _, category := newIconFixture(t)
	data, filename := createTestImage(64, 64, "png")

	first, err := svc.UploadIcon(context.Background(), category.UserID, category.ID, data, filename)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	firstPath := *first.Category.IconPath

	second, err := svc.UploadIcon(context.Background(), category.UserID, category.ID, data, filename)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if *second.Category.IconPath == firstPath {
		t.Error("Expected a new object path")
	}
	if _, ok := store.Objects[firstPath]; ok {
		t.Error("Expected previous icon to be deleted")
	}
	if len(store.Objects) != 1 {
		t.Errorf("Expected one stored object, got %d", len(store.Objects))
	}
}

func TestUploadIcon_Errors(t *testing.T) {
	data, filename := createTestImage(64, 64, "png")

	t.Run("storage not configured", func(t *testing.T) {
		svc := NewIconService(nil, testutil.NewMockCategoryRepository(), 0)
		_, err := svc.UploadIcon(context.Background(), uuid.New(), uuid.New(), data, filename)
		if err != ErrIconStorageNotConfigured {
			t.Errorf("Expected ErrIconStorageNotConfigured, got %v", err)
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		svc, store, _, category := newIconFixture(t)
		_, err := svc.UploadIcon(context.Background(), category.UserID, uuid.New(), data, filename)
		if !errors.Is(err, domain.ErrCategoryNotFound) {
			t.Errorf("Expected ErrCategoryNotFound, got %v", err)
		}
		if len(store.Objects) != 0 {
			t.Error("Expected nothing uploaded")
		}
	})

	t.Run("upload failure", func(t *testing.T) {
		svc, store, categories, category := newIconFixture(t)
		store.UploadErr = errors.New("bucket unavailable")
		_, err := svc.UploadIcon(context.Background(), category.UserID, category.ID, data, filename)
		if err == nil {
			t.Fatal("Expected error")
		}
		stored, _ := categories.GetByID(context.Background(), category.UserID, category.ID)
		if stored.IconPath != nil {
			t.Error("Expected category to be unchanged")
		}
	})
}

func TestGetIconURLAndRemoveIcon(t *testing.T) {
	svc, store, _, category := newIconFixture(t)

	if _, err := svc.GetIconURL(context.Background(), category.UserID, category.ID); err != ErrNoIcon {
		t.Errorf("Expected ErrNoIcon, got %v", err)
	}

	data, filename := createTestImage(64, 64, "png")
	uploaded, err := svc.UploadIcon(context.Background(), category.UserID, category.ID, data, filename)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	path := *uploaded.Category.IconPath

	url, err := svc.GetIconURL(context.Background(), category.UserID, category.ID)
	if err != nil || !strings.Contains(url, path) {
		t.Errorf("Expected url for %s, got %s (%v)", path, url, err)
	}

	removed, err := svc.RemoveIcon(context.Background(), category.UserID, category.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if removed.IconPath != nil {
		t.Error("Expected icon path to be cleared")
	}
	if len(store.Deleted) != 1 || store.Deleted[0] != path {
		t.Errorf("Expected %s to be deleted, got %v", path, store.Deleted)
	}
}

func TestGetIconContentType(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"icon.jpg", "image/jpeg"},
		{"icon.JPEG", "image/jpeg"},
		{"icon.png", "image/png"},
		{"icon.webp", "image/webp"},
		{"icon.gif", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if ct := GetIconContentType(tt.filename); ct != tt.expected {
				t.Errorf("GetIconContentType(%s) = %s, expected %s", tt.filename, ct, tt.expected)
			}
		})
	}
}
