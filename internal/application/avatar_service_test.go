package application

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadAvatarStoresURL(t *testing.T) {
	store, _ := newTestStore(t)
	var (
		gotPath string
		gotType string
		gotBody []byte
	)
	upload := func(_ context.Context, objectPath, contentType string, r io.Reader) (string, error) {
		gotPath, gotType = objectPath, contentType
		gotBody, _ = io.ReadAll(r)
		return "https://cdn.example.com/" + objectPath, nil
	}
	svc := NewAvatarService(store, upload, nil)

	p, err := svc.UploadAvatar(context.Background(), bytes.NewReader([]byte("png")), "Me.PNG", "image/png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotPath, "avatars/"))
	assert.True(t, strings.HasSuffix(gotPath, ".png"))
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, []byte("png"), gotBody)
	assert.Equal(t, "https://cdn.example.com/"+gotPath, p.Avatar)
	assert.Equal(t, p.Avatar, store.GetProfile().Avatar)
}

func TestUploadAvatarWithoutStorage(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := NewAvatarService(store, nil, nil).UploadAvatar(context.Background(), strings.NewReader("x"), "a.png", "image/png")
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestUploadAvatarRejectsNonImages(t *testing.T) {
	store, _ := newTestStore(t)
	called := false
	upload := func(context.Context, string, string, io.Reader) (string, error) {
		called = true
		return "", nil
	}
	_, err := NewAvatarService(store, upload, nil).UploadAvatar(context.Background(), strings.NewReader("x"), "a.pdf", "application/pdf")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.False(t, called)
}

func TestUploadAvatarFailureLeavesProfile(t *testing.T) {
	store, _ := newTestStore(t)
	upload := func(context.Context, string, string, io.Reader) (string, error) {
		return "", errors.New("bucket gone")
	}
	_, err := NewAvatarService(store, upload, nil).UploadAvatar(context.Background(), strings.NewReader("x"), "a.jpg", "image/jpeg")
	assert.Error(t, err)
	assert.Equal(t, "", store.GetProfile().Avatar)
}
