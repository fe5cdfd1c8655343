package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"alarm-clock-backend/internal/apperr"
	"alarm-clock-backend/internal/models"

	"github.com/google/uuid"
)

const (
	// MaxSoundBytes caps uploaded sound files
	MaxSoundBytes = 10 << 20

	uploadPrefix  = "uploads/"
	presignExpiry = 5 * time.Minute
)

var errAssetsDisabled = errors.New("asset store is not configured")

var allowedSoundExtensions = []string{"mp3", "wav", "ogg", "m4a"}

// AssetStore keeps uploaded audio and hands back stable references to it
type AssetStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (uploadURL, ref string, err error)
}

// SoundService handles sound uploads and listings
type SoundService struct {
	soundRepo SoundStore
	assets    AssetStore
	now       func() time.Time
}

// NewSoundService creates a new sound service. Without an asset store only URL sounds can be added.
func NewSoundService(soundRepo SoundStore, assets AssetStore) *SoundService {
	return &SoundService{
		soundRepo: soundRepo,
		assets:    assets,
		now:       time.Now,
	}
}

// UploadSoundInput is a sound file received from a client
type UploadSoundInput struct {
	Filename    string
	ContentType string
	Body        io.Reader
	Size        int64
}

// SoundResponse is returned once a sound is stored
type SoundResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// PresignResponse represents the response with a pre-signed upload URL
type PresignResponse struct {
	UploadURL string `json:"upload_url"`
	SoundID   string `json:"sound_id"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// AllowedSoundFile reports whether filename carries an accepted audio extension
func AllowedSoundFile(filename string) bool {
	ext := ""
	if i := strings.LastIndex(filename, "."); i >= 0 {
		ext = strings.ToLower(filename[i+1:])
	}
	for _, allowed := range allowedSoundExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func unsupportedSound(op string) error {
	return apperr.UnsupportedMedia(op,
		"Unsupported file type. Allowed: "+strings.Join(allowedSoundExtensions, ", "))
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
	filenameSpaces      = regexp.MustCompile(`\s+`)
)

// SanitizeFilename reduces a client-supplied name to a safe single path segment
func SanitizeFilename(name string) string {
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = filenameSpaces.ReplaceAllString(strings.TrimSpace(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// storedName prefixes the sanitised filename with a microsecond UTC timestamp
func (s *SoundService) storedName(filename string) string {
	safe := SanitizeFilename(filename)
	if safe == "" || !strings.Contains(safe, ".") {
		safe = "sound" + strings.ToLower(path.Ext(filename))
	}
	t := s.now().UTC()
	return fmt.Sprintf("%s%06d_%s", t.Format("20060102150405"), t.Nanosecond()/1000, safe)
}

// Upload writes a sound file to the asset store and records it under scope
func (s *SoundService) Upload(ctx context.Context, scope models.Scope, in UploadSoundInput) (*SoundResponse, error) {
	if in.Filename == "" || in.Body == nil {
		return nil, apperr.Validation("sound.Upload", "No file selected")
	}
	if !AllowedSoundFile(in.Filename) {
		return nil, unsupportedSound("sound.Upload")
	}
	if in.Size > MaxSoundBytes {
		return nil, apperr.Validation("sound.Upload", "file exceeds 10 MB")
	}
	if s.assets == nil {
		return nil, errAssetsDisabled
	}

	savedName := s.storedName(in.Filename)
	ref, err := s.assets.Put(ctx, uploadPrefix+savedName, contentTypeOr(in.ContentType), in.Body, in.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to store sound: %w", err)
	}

	sound := &models.Sound{
		ID:           uuid.New().String(),
		UserID:       scope.UserID(),
		Filename:     &savedName,
		URL:          ref,
		OriginalName: SanitizeFilename(in.Filename),
		CreatedAt:    s.now(),
	}
	if err := s.soundRepo.Create(ctx, sound); err != nil {
		return nil, fmt.Errorf("failed to create sound record: %w", err)
	}

	return &SoundResponse{ID: sound.ID, URL: sound.URL}, nil
}

// AddURL records an externally hosted sound. The name defaults to the URL.
func (s *SoundService) AddURL(ctx context.Context, scope models.Scope, url, name string) (*SoundResponse, error) {
	if url == "" {
		return nil, apperr.Validation("sound.AddURL", "No file or url provided")
	}
	if name == "" {
		name = url
	}

	sound := &models.Sound{
		ID:           uuid.New().String(),
		UserID:       scope.UserID(),
		URL:          url,
		OriginalName: name,
		CreatedAt:    s.now(),
	}
	if err := s.soundRepo.Create(ctx, sound); err != nil {
		return nil, fmt.Errorf("failed to create sound record: %w", err)
	}

	return &SoundResponse{ID: sound.ID, URL: sound.URL}, nil
}

// PresignUpload records a sound and returns a pre-signed URL the client uploads it to directly
func (s *SoundService) PresignUpload(ctx context.Context, scope models.Scope, filename, contentType string) (*PresignResponse, error) {
	if filename == "" {
		return nil, apperr.Validation("sound.PresignUpload", "filename is required")
	}
	if !AllowedSoundFile(filename) {
		return nil, unsupportedSound("sound.PresignUpload")
	}
	if s.assets == nil {
		return nil, errAssetsDisabled
	}

	savedName := s.storedName(filename)
	uploadURL, ref, err := s.assets.PresignPut(ctx, uploadPrefix+savedName, contentTypeOr(contentType), presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	sound := &models.Sound{
		ID:           uuid.New().String(),
		UserID:       scope.UserID(),
		Filename:     &savedName,
		URL:          ref,
		OriginalName: SanitizeFilename(filename),
		CreatedAt:    s.now(),
	}
	if err := s.soundRepo.Create(ctx, sound); err != nil {
		return nil, fmt.Errorf("failed to create sound record: %w", err)
	}

	return &PresignResponse{
		UploadURL: uploadURL,
		SoundID:   sound.ID,
		URL:       ref,
		ExpiresIn: int(presignExpiry / time.Second),
	}, nil
}

// List returns the sounds visible to scope, newest first
func (s *SoundService) List(ctx context.Context, scope models.Scope) ([]*models.Sound, error) {
	sounds, err := s.soundRepo.ListVisible(ctx, scope)
	if err != nil {
		return nil, err
	}
	if sounds == nil {
		sounds = []*models.Sound{}
	}
	return sounds, nil
}

func contentTypeOr(ct string) string {
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}
