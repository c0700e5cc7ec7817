// Package util - Frame file loading.
package util

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/nvr-ai/go-canvas/images"
	"github.com/pkg/errors"
)

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file.
	Data []byte
	// Frame is the frame number parsed from a "frame-N" file name, or -1.
	Frame int
}

// IsImageFile reports whether the path has a supported image extension.
func IsImageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tif", ".tiff":
		return true
	}
	return false
}

// LoadDirectoryImageFiles reads all image files from a directory.
//
// Files named "frame-N" are ordered by N and come first; the rest follow in
// name order.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: Slice of ImageFile, each containing the raw bytes of an image file.
// - error: Error if loading fails.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading directory %s", dir)
	}

	var out []ImageFile
	for _, file := range files {
		if file.IsDir() || !IsImageFile(file.Name()) {
			continue
		}

		imgPath := filepath.Join(dir, file.Name())
		data, err := os.ReadFile(imgPath)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", imgPath)
		}
		out = append(out, ImageFile{
			Path:  imgPath,
			Data:  data,
			Frame: frameNumber(file.Name()),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Frame, out[j].Frame
		if (a < 0) != (b < 0) {
			return a >= 0
		}
		if a != b {
			return a < b
		}
		return out[i].Path < out[j].Path
	})

	return out, nil
}

func frameNumber(name string) int {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if !strings.HasPrefix(base, "frame-") {
		return -1
	}
	n, err := strconv.Atoi(strings.TrimPrefix(base, "frame-"))
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// Decode decodes an encoded image, applying its EXIF orientation.
func (f ImageFile) Decode() (*images.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(f.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", f.Path)
	}
	return images.FromImage(img), nil
}

// LoadImages reads every path into undecoded image files. Directories
// contribute their image files in frame order; call Decode on each file to
// get its pixels.
func LoadImages(paths []string) ([]ImageFile, error) {
	var out []ImageFile
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.Wrapf(err, "stat %s", p)
		}
		if info.IsDir() {
			files, err := LoadDirectoryImageFiles(p)
			if err != nil {
				return nil, err
			}
			out = append(out, files...)
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", p)
		}
		out = append(out, ImageFile{Path: p, Data: data, Frame: frameNumber(filepath.Base(p))})
	}
	return out, nil
}
