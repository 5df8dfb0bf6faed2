package handlers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skincareshop/services"
)

func TestStoredName(t *testing.T) {
	u, err := NewUploads(t.TempDir())
	require.NoError(t, err)
	u.now = func() time.Time { return time.Unix(1700000000, 0) }
	u.suffix = func() (string, error) { return "0A1B2C3D", nil }

	cases := map[string]string{
		"serum.PNG":               "serum_1700000000_0A1B2C3D.png",
		"../../etc/face mask.jpg": "face_mask_1700000000_0A1B2C3D.jpg",
		`C:\photos\me.jpeg`:       "me_1700000000_0A1B2C3D.jpeg",
		"???.gif":                 "upload_1700000000_0A1B2C3D.gif",
	}
	for in, want := range cases {
		got, err := u.StoredName(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err = u.StoredName("script.exe")
	assert.True(t, errors.Is(err, services.ErrValidation))
}

func TestStoredNameSameSecondDiffers(t *testing.T) {
	u, err := NewUploads(t.TempDir())
	require.NoError(t, err)
	u.now = func() time.Time { return time.Unix(1700000000, 0) }

	first, err := u.StoredName("a.png")
	require.NoError(t, err)
	second, err := u.StoredName("a.png")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Regexp(t, `^a_1700000000_[0-9A-F]{8}\.png$`, first)
}

func TestRemoveIgnoresMissingAndForeignPaths(t *testing.T) {
	dir := t.TempDir()
	u, err := NewUploads(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("x"), 0o644))
	require.NoError(t, u.Remove("a.png"))
	_, err = os.Stat(filepath.Join(dir, "a.png"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, u.Remove("a.png"))
	assert.NoError(t, u.Remove(""))
	assert.NoError(t, u.Remove("../outside.png"))
}

func TestStatusAndMessage(t *testing.T) {
	assert.Equal(t, 409, StatusFor(fmt.Errorf("%w: product is on 2 orders", services.ErrReferenced)))

	boom := errors.New("boom")
	assert.Equal(t, 500, StatusFor(boom))
	assert.Equal(t, "Something went wrong, please try again.", Message(boom))

	invalid := fmt.Errorf("%w: quantity must be positive", services.ErrValidation)
	assert.Equal(t, 400, StatusFor(invalid))
	assert.Equal(t, "Quantity must be positive", Message(invalid))
}
