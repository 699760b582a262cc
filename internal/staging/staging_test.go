package staging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sant0-9/heartgpt/internal/logging"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestReadUpload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Chat.PNG")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 4, 3), 0o600))

	u, err := ReadUpload(path)
	require.NoError(t, err)
	require.Equal(t, "Chat.PNG", u.Name)
	require.Equal(t, "png", u.Format)
	require.Equal(t, 4, u.Width)
	require.Equal(t, 3, u.Height)
	require.Contains(t, u.Preview, "Chat.PNG")
	require.Contains(t, u.Preview, "4x3")
}

func TestReadUploadRejects(t *testing.T) {
	dir := t.TempDir()

	gif := filepath.Join(dir, "chat.gif")
	require.NoError(t, os.WriteFile(gif, []byte("GIF89a"), 0o600))
	_, err := ReadUpload(gif)
	require.Error(t, err)

	fake := filepath.Join(dir, "chat.jpg")
	require.NoError(t, os.WriteFile(fake, []byte("not an image"), 0o600))
	_, err = ReadUpload(fake)
	require.Error(t, err)

	_, err = ReadUpload(filepath.Join(dir, "missing.png"))
	require.Error(t, err)
}

func TestStageWritesPrefixedFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, logging.Discard())

	uploads := []Upload{
		{Name: "one.png", Data: []byte("1")},
		{Name: "two.JPG", Data: []byte("2")},
		{Name: "three.jpeg", Data: []byte("3")},
	}
	images := s.Stage(uploads)

	require.Len(t, images, 3)
	require.Equal(t, filepath.Join(dir, "temp_one.png"), images[0].Path)
	require.Equal(t, "image/png", images[0].MIME)
	require.Equal(t, "two.JPG", images[1].Name)
	require.Equal(t, "image/jpeg", images[1].MIME)
	require.Equal(t, "three.jpeg", images[2].Name)

	data, err := os.ReadFile(images[1].Path)
	require.NoError(t, err)
	require.Equal(t, "2", string(data))
}

func TestStageSkipsFailedWrites(t *testing.T) {
	s := New(t.TempDir(), logging.Discard())
	s.writeFile = func(name string, data []byte, perm os.FileMode) error {
		if string(data) == "bad" {
			return errors.New("disk full")
		}
		return os.WriteFile(name, data, perm)
	}

	uploads := []Upload{
		{Name: "a.png", Data: []byte("ok")},
		{Name: "b.png", Data: []byte("bad")},
		{Name: "c.png", Data: []byte("ok")},
		{Name: "d.png", Data: []byte("bad")},
	}
	images := s.Stage(uploads)

	require.Len(t, images, 2)
	require.Equal(t, "a.png", images[0].Name)
	require.Equal(t, "c.png", images[1].Name)
}

func TestStageEmpty(t *testing.T) {
	s := New(t.TempDir(), logging.Discard())

	require.Empty(t, s.Stage(nil))
	require.Empty(t, s.Stage([]Upload{}))
}

func TestStageDuplicateNamesOverwrite(t *testing.T) {
	s := New(t.TempDir(), logging.Discard())

	images := s.Stage([]Upload{
		{Name: "same.png", Data: []byte("first")},
		{Name: "same.png", Data: []byte("second")},
	})

	require.Len(t, images, 2)
	require.Equal(t, images[0].Path, images[1].Path)
	data, err := os.ReadFile(images[1].Path)
	require.NoError(t, err)
	require.Equal(t, "second", string(data))
}
