package media

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPNG = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d}

func TestStore_SavePNG(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	url, err := store.SavePNG(testPNG)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^/static/images/[0-9a-f]{32}\.png$`), url)

	path, ok := store.Path(url)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "images"), filepath.Dir(path))

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testPNG, written)
}

func TestStore_SavePNG_UniqueNames(t *testing.T) {
	store := NewStore(t.TempDir())

	first, err := store.SavePNG(testPNG)
	require.NoError(t, err)
	second, err := store.SavePNG(testPNG)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestStore_SavePNG_RejectsOtherData(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	_, err := store.SavePNG([]byte("GIF89a"))
	require.ErrorIs(t, err, ErrNotPNG)

	_, err = os.Stat(filepath.Join(dir, "images"))
	assert.True(t, os.IsNotExist(err), "nothing should be written")
}

func TestStore_Path(t *testing.T) {
	store := NewStore("/srv/static")

	tests := []struct {
		name   string
		url    string
		want   string
		wantOK bool
	}{
		{name: "image", url: "/static/images/abc.png", want: filepath.Join("/srv/static", "images", "abc.png"), wantOK: true},
		{name: "other prefix", url: "/images/abc.png"},
		{name: "traversal", url: "/static/../etc/passwd"},
		{name: "bare prefix", url: "/static/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := store.Path(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
