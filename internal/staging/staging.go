// Package staging turns user-supplied screenshots into files on disk the
// model client can attach to a request.
package staging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/sant0-9/heartgpt/internal/llm"
)

const filePrefix = "temp_"

var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Upload is an image the user attached, held in memory until staged.
type Upload struct {
	Name    string
	Data    []byte
	Format  string
	Width   int
	Height  int
	Preview string
}

// Supported reports whether the file name has an accepted image extension.
func Supported(name string) bool {
	_, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ReadUpload loads an image from path and describes it for the preview line.
func ReadUpload(path string) (Upload, error) {
	name := filepath.Base(path)
	if !Supported(name) {
		return Upload{}, fmt.Errorf("%s: only jpg, jpeg and png images are accepted", name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Upload{}, fmt.Errorf("read %s: %w", name, err)
	}
	return NewUpload(name, data)
}

// NewUpload validates in-memory image bytes under the given name.
func NewUpload(name string, data []byte) (Upload, error) {
	if !Supported(name) {
		return Upload{}, fmt.Errorf("%s: only jpg, jpeg and png images are accepted", name)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Upload{}, fmt.Errorf("%s is not a readable image: %w", name, err)
	}

	u := Upload{
		Name:   name,
		Data:   data,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}
	u.Preview = fmt.Sprintf("%s · %s · %dx%d · %s",
		name, strings.ToUpper(format), cfg.Width, cfg.Height, humanize.Bytes(uint64(len(data))))
	return u, nil
}

// Stager writes uploads into Dir. Files are left in place after the run.
type Stager struct {
	Dir    string
	Logger *slog.Logger

	writeFile func(name string, data []byte, perm os.FileMode) error
}

func New(dir string, logger *slog.Logger) *Stager {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Stager{
		Dir:       dir,
		Logger:    logger,
		writeFile: os.WriteFile,
	}
}

// Stage writes each upload to <Dir>/temp_<name> and returns handles for the
// ones that were written, in input order. A failed write is logged and that
// upload is skipped. An upload whose name matches an earlier one overwrites it.
func (s *Stager) Stage(uploads []Upload) []llm.Image {
	images := make([]llm.Image, 0, len(uploads))
	for _, u := range uploads {
		img, err := s.stageOne(u)
		if err != nil {
			s.Logger.Error("staging image failed", "image", u.Name, "err", err)
			continue
		}
		s.Logger.Debug("staged image", "image", u.Name, "path", img.Path)
		images = append(images, img)
	}
	return images
}

func (s *Stager) stageOne(u Upload) (llm.Image, error) {
	mime, ok := mimeTypes[strings.ToLower(filepath.Ext(u.Name))]
	if !ok {
		return llm.Image{}, fmt.Errorf("unsupported image type %q", filepath.Ext(u.Name))
	}

	path := filepath.Join(s.Dir, filePrefix+filepath.Base(u.Name))
	if err := s.writeFile(path, u.Data, 0o600); err != nil {
		return llm.Image{}, fmt.Errorf("write %s: %w", path, err)
	}

	return llm.Image{Path: path, Name: u.Name, MIME: mime}, nil
}
