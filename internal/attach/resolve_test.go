package attach

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mediaDir(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644))
	}
	return dir
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		files  []string
		lookup string
		want   string
	}{
		{name: "exact", files: []string{"report.pdf", "0001-report.pdf"}, lookup: "0001-report.pdf", want: "0001-report.pdf"},
		{name: "prefix stripped", files: []string{"report.pdf"}, lookup: "0001-report.pdf", want: "report.pdf"},
		{name: "entry contains target", files: []string{"IMG-2024-PHOTO.JPG"}, lookup: "photo.jpg", want: "IMG-2024-PHOTO.JPG"},
		{name: "target contains entry", files: []string{"photo.jpg"}, lookup: "0007-old photo.jpg", want: "photo.jpg"},
		{name: "listing order", files: []string{"b-photo.jpg", "a-photo.jpg"}, lookup: "photo.jpg", want: "a-photo.jpg"},
		{name: "exact beats substring", files: []string{"a-photo.jpg", "photo.jpg"}, lookup: "photo.jpg", want: "photo.jpg"},
		{name: "missing", files: []string{"other.pdf"}, lookup: "photo.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := mediaDir(t, tt.files...)
			got, ok := Resolve(tt.lookup, dir)
			if tt.want == "" {
				assert.False(t, ok)
				assert.Empty(t, got)
				return
			}
			require.True(t, ok)
			assert.Equal(t, filepath.Join(dir, tt.want), got)
		})
	}
}

func TestResolveNeverFailsOnBadDir(t *testing.T) {
	_, ok := Resolve("photo.jpg", filepath.Join(t.TempDir(), "nope"))
	assert.False(t, ok)

	_, ok = Resolve("photo.jpg", "")
	assert.False(t, ok)

	_, ok = Resolve("", mediaDir(t, "photo.jpg"))
	assert.False(t, ok)
}

func TestResolveSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "photo.jpg"), 0o755))
	_, ok := Resolve("photo.jpg", dir)
	assert.False(t, ok)
}

func TestResolverRescansDirectory(t *testing.T) {
	dir := t.TempDir()
	r := Resolver{Dir: dir}

	_, ok := r.Resolve("0001-voice.opus")
	require.False(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "voice.opus"), []byte("x"), 0o644))
	got, ok := r.Resolve("0001-voice.opus")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "voice.opus"), got)
}
