package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"alarm-clock-backend/internal/apperr"
	"alarm-clock-backend/internal/models"
	"alarm-clock-backend/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssetStore struct {
	objects map[string]string
}

func newFakeAssetStore() *fakeAssetStore {
	return &fakeAssetStore{objects: map[string]string{}}
}

func (f *fakeAssetStore) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.objects[key] = string(data)
	return "https://cdn.test/" + key, nil
}

func (f *fakeAssetStore) PresignPut(_ context.Context, key, _ string, _ time.Duration) (string, string, error) {
	return "https://cdn.test/" + key + "?signed", "https://cdn.test/" + key, nil
}

func newSoundService(assets AssetStore) (*SoundService, *memory.Store) {
	store := memory.NewStore()
	svc := NewSoundService(store.Sounds(), assets)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 6, 30, 0, 123456000, time.UTC) }
	return svc, store
}

func TestAllowedSoundFile(t *testing.T) {
	for _, name := range []string{"a.mp3", "b.WAV", "c.ogg", "d.m4a", "x.y.mp3"} {
		assert.True(t, AllowedSoundFile(name), name)
	}
	for _, name := range []string{"a.exe", "mp3", "a.mp3.txt", "", "noext"} {
		assert.False(t, AllowedSoundFile(name), name)
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "my_song.mp3", SanitizeFilename("my song.mp3"))
	assert.Equal(t, "etc_passwd.mp3", SanitizeFilename("../../etc/passwd.mp3"))
	assert.Equal(t, "wake.wav", SanitizeFilename("wake!?.wav"))
}

func TestUploadStoresObjectAndRecord(t *testing.T) {
	assets := newFakeAssetStore()
	svc, store := newSoundService(assets)
	ctx := context.Background()

	res, err := svc.Upload(ctx, models.Scope("u1"), UploadSoundInput{
		Filename: "birds song.mp3", ContentType: "audio/mpeg", Body: strings.NewReader("ID3"), Size: 3,
	})
	require.NoError(t, err)

	key := "uploads/20240301063000123456_birds_song.mp3"
	assert.Equal(t, "ID3", assets.objects[key])
	assert.Equal(t, "https://cdn.test/"+key, res.URL)

	sounds, err := store.Sounds().ListVisible(ctx, models.Scope("u1"))
	require.NoError(t, err)
	require.Len(t, sounds, 1)
	assert.Equal(t, res.ID, sounds[0].ID)
	assert.Equal(t, "birds_song.mp3", sounds[0].OriginalName)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	assets := newFakeAssetStore()
	svc, store := newSoundService(assets)
	ctx := context.Background()

	_, err := svc.Upload(ctx, models.AnonymousScope, UploadSoundInput{
		Filename: "virus.exe", Body: strings.NewReader("MZ"), Size: 2,
	})
	assert.True(t, errors.Is(err, apperr.ErrUnsupportedMedia))
	assert.Empty(t, assets.objects)

	sounds, err := store.Sounds().ListVisible(ctx, models.AnonymousScope)
	require.NoError(t, err)
	assert.Empty(t, sounds)
}

func TestUploadValidation(t *testing.T) {
	svc, _ := newSoundService(newFakeAssetStore())
	ctx := context.Background()

	_, err := svc.Upload(ctx, models.AnonymousScope, UploadSoundInput{})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Upload(ctx, models.AnonymousScope, UploadSoundInput{
		Filename: "big.mp3", Body: strings.NewReader(""), Size: MaxSoundBytes + 1,
	})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestUploadWithoutAssetStore(t *testing.T) {
	svc, _ := newSoundService(nil)

	_, err := svc.Upload(context.Background(), models.AnonymousScope, UploadSoundInput{
		Filename: "a.mp3", Body: strings.NewReader("x"), Size: 1,
	})
	assert.ErrorIs(t, err, errAssetsDisabled)
}

func TestAddURLDefaultsNameToURL(t *testing.T) {
	svc, store := newSoundService(nil)
	ctx := context.Background()

	res, err := svc.AddURL(ctx, models.AnonymousScope, "https://example.com/rooster.mp3", "")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/rooster.mp3", res.URL)

	sounds, err := store.Sounds().ListVisible(ctx, models.AnonymousScope)
	require.NoError(t, err)
	require.Len(t, sounds, 1)
	assert.Equal(t, "https://example.com/rooster.mp3", sounds[0].OriginalName)
	assert.Nil(t, sounds[0].Filename)

	_, err = svc.AddURL(ctx, models.AnonymousScope, "", "name")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestPresignUpload(t *testing.T) {
	svc, _ := newSoundService(newFakeAssetStore())

	res, err := svc.PresignUpload(context.Background(), models.Scope("u1"), "wake.ogg", "audio/ogg")
	require.NoError(t, err)
	assert.Equal(t, 300, res.ExpiresIn)
	assert.NotEmpty(t, res.SoundID)
	assert.Equal(t, res.URL+"?signed", res.UploadURL)

	_, err = svc.PresignUpload(context.Background(), models.Scope("u1"), "wake.txt", "")
	assert.True(t, errors.Is(err, apperr.ErrUnsupportedMedia))
}

func TestListVisibility(t *testing.T) {
	svc, _ := newSoundService(nil)
	ctx := context.Background()

	_, err := svc.AddURL(ctx, models.AnonymousScope, "https://s/shared.mp3", "")
	require.NoError(t, err)
	_, err = svc.AddURL(ctx, models.Scope("alice"), "https://s/alice.mp3", "")
	require.NoError(t, err)
	_, err = svc.AddURL(ctx, models.Scope("bob"), "https://s/bob.mp3", "")
	require.NoError(t, err)

	alice, err := svc.List(ctx, models.Scope("alice"))
	require.NoError(t, err)
	assert.Len(t, alice, 2)
	assert.Equal(t, "https://s/alice.mp3", alice[0].URL)

	all, err := svc.List(ctx, models.AnonymousScope)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
