package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sunoy2004/yanc-cms-sub001/internal/db"
	"github.com/sunoy2004/yanc-cms-sub001/internal/storage"
	_ "golang.org/x/image/webp"
	"gorm.io/gorm"
)

const defaultMediaMaxBytes int64 = 10 << 20

var (
	// ErrMediaNotFound is returned when a media item does not exist.
	ErrMediaNotFound = fmt.Errorf("media %w", ErrNotFound)
	// ErrMediaTooLarge is returned when an upload exceeds the configured limit.
	ErrMediaTooLarge = errors.New("media file too large")
	// ErrMediaTypeNotAllowed is returned for content types outside the allow list.
	ErrMediaTypeNotAllowed = errors.New("media type not allowed")
	// ErrMediaEmpty is returned for zero byte uploads.
	ErrMediaEmpty = errors.New("media file is empty")
	// ErrStorageUnavailable wraps failures of the storage backend.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// allowedMediaTypes maps accepted content types to the extension used in object keys.
var allowedMediaTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/svg+xml":   ".svg",
	"application/pdf": ".pdf",
	"video/mp4":       ".mp4",
}

// MediaOptions tunes upload limits.
type MediaOptions struct {
	MaxBytes int64
	Timeout  time.Duration
}

// MediaUpload is one file received from the dashboard.
type MediaUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
	AltText     string
	UploadedBy  uint
}

// MediaStats summarises the media library.
type MediaStats struct {
	Count      int64
	TotalBytes int64
}

// MediaService stores uploads in the storage backend and tracks them in the database.
type MediaService struct {
	db       *gorm.DB
	store    storage.Storage
	maxBytes int64
	timeout  time.Duration
	now      func() time.Time
}

// NewMediaService creates a MediaService instance.
func NewMediaService(gdb *gorm.DB, store storage.Storage, opts MediaOptions) *MediaService {
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMediaMaxBytes
	}
	return &MediaService{
		db:       gdb,
		store:    store,
		maxBytes: maxBytes,
		timeout:  opts.Timeout,
		now:      time.Now,
	}
}

// MaxBytes reports the upload size limit.
func (s *MediaService) MaxBytes() int64 {
	return s.maxBytes
}

// StorageName reports the configured backend.
func (s *MediaService) StorageName() string {
	if s.store == nil {
		return ""
	}
	return s.store.Name()
}

// Upload validates the file, writes it to storage and records it.
// The stored object is removed again when the row cannot be inserted.
func (s *MediaService) Upload(ctx context.Context, upload MediaUpload) (*db.MediaItem, error) {
	if upload.Body == nil {
		return nil, ErrMediaEmpty
	}
	if upload.Size > s.maxBytes {
		return nil, ErrMediaTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(upload.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrMediaTooLarge
	}
	if len(data) == 0 {
		return nil, ErrMediaEmpty
	}

	contentType := detectMediaType(data, upload.ContentType, upload.FileName)
	ext, ok := allowedMediaTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMediaTypeNotAllowed, contentType)
	}

	altText := plainText(upload.AltText)
	if err := validateAltText(altText); err != nil {
		return nil, err
	}

	item := db.MediaItem{
		ObjectKey:   fmt.Sprintf("media/%s/%s%s", s.now().UTC().Format("2006/01"), uuid.NewString(), ext),
		FileName:    cleanFileName(upload.FileName, ext),
		ContentType: contentType,
		Size:        int64(len(data)),
		AltText:     altText,
		UploadedBy:  upload.UploadedBy,
	}
	if strings.HasPrefix(contentType, "image/") && contentType != "image/svg+xml" {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			item.Width = cfg.Width
			item.Height = cfg.Height
		}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.store.Put(ctx, item.ObjectKey, bytes.NewReader(data), item.Size, contentType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	item.URL = s.store.URL(item.ObjectKey)
	item.Storage = s.store.Name()

	if err := s.db.Create(&item).Error; err != nil {
		if removeErr := s.store.Remove(ctx, item.ObjectKey); removeErr != nil && !errors.Is(removeErr, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("create media: %w (cleanup: %v)", err, removeErr)
		}
		return nil, fmt.Errorf("create media: %w", err)
	}
	return &item, nil
}

// List returns one page of media, newest first.
func (s *MediaService) List(filter ListFilter) (ListResult[db.MediaItem], error) {
	query := s.db.Model(&db.MediaItem{})
	if contentType := strings.TrimSpace(filter.Status); contentType != "" {
		// status doubles as a type prefix filter, e.g. "image" or "video".
		query = query.Where(`content_type LIKE ? ESCAPE '\'`, likeEscaper.Replace(strings.ToLower(contentType))+"%")
	}
	query = applySearch(query, filter.Search, []string{"file_name", "alt_text"})
	return paginate[db.MediaItem](query, filter.Page, filter.PerPage, "created_at desc", "id desc")
}

// Get fetches a media item by id.
func (s *MediaService) Get(id uint) (*db.MediaItem, error) {
	var item db.MediaItem
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMediaNotFound
		}
		return nil, err
	}
	return &item, nil
}

// UpdateAlt changes the alternative text of a media item.
func (s *MediaService) UpdateAlt(id uint, altText string) (*db.MediaItem, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	altText = plainText(altText)
	if err := validateAltText(altText); err != nil {
		return nil, err
	}

	if err := s.db.Model(item).Update("alt_text", altText).Error; err != nil {
		return nil, fmt.Errorf("update media: %w", err)
	}
	item.AltText = altText
	return item, nil
}

// Delete removes the stored object and then the row. A missing object is not an error.
func (s *MediaService) Delete(ctx context.Context, id uint) error {
	item, err := s.Get(id)
	if err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.store.Remove(ctx, item.ObjectKey); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.HeroContent{}).Where("media_id = ?", item.ID).Update("media_id", nil).Error; err != nil {
			return fmt.Errorf("detach media: %w", err)
		}
		if err := tx.Unscoped().Delete(item).Error; err != nil {
			return fmt.Errorf("delete media: %w", err)
		}
		return nil
	})
}

// Open streams the stored object back. The caller closes the reader.
func (s *MediaService) Open(ctx context.Context, id uint) (io.ReadCloser, *db.MediaItem, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, nil, err
	}

	rc, _, err := s.store.Open(ctx, item.ObjectKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrMediaNotFound
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return rc, item, nil
}

// Stats counts media items and their total size.
func (s *MediaService) Stats() (MediaStats, error) {
	return countMedia(s.db)
}

func countMedia(gdb *gorm.DB) (MediaStats, error) {
	var stats MediaStats
	if err := gdb.Model(&db.MediaItem{}).Count(&stats.Count).Error; err != nil {
		return stats, err
	}
	if err := gdb.Model(&db.MediaItem{}).Select("COALESCE(SUM(size), 0)").Scan(&stats.TotalBytes).Error; err != nil {
		return stats, err
	}
	return stats, nil
}

func (s *MediaService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

// detectMediaType sniffs the leading bytes; SVG is text to the sniffer so the
// declared type or extension decides when the body looks like markup.
func detectMediaType(data []byte, declared, fileName string) string {
	sniffed := baseMediaType(http.DetectContentType(data))
	if sniffed != "text/xml" && sniffed != "text/plain" {
		return sniffed
	}

	declared = baseMediaType(declared)
	isSVGName := strings.EqualFold(path.Ext(fileName), ".svg")
	if (declared == "image/svg+xml" || isSVGName) && bytes.Contains(bytes.ToLower(data), []byte("<svg")) {
		return "image/svg+xml"
	}
	return sniffed
}

func baseMediaType(value string) string {
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(value))
	}
	return mediaType
}

func cleanFileName(name, ext string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "upload" + ext
	}
	if len(name) > 255 {
		name = name[len(name)-255:]
	}
	return name
}

func validateAltText(altText string) error {
	if len([]rune(altText)) > 300 {
		return fieldError("alt_text", "alt_text must be a maximum of 300 characters in length")
	}
	return nil
}
