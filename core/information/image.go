package information

import (
	"bytes"
	"path"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp" // register the webp decoder

	"github.com/trezcool/campus/core"
)

const (
	imageField = "image"

	errEmptyImage   = "The submitted file is empty."
	errInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
)

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/tiff": true,
	"image/webp": true,
}

// ValidateImage sniffs and decodes content, returning the file extension of the detected format.
func ValidateImage(content []byte) (string, error) {
	if len(content) == 0 {
		return "", core.NewFieldError(imageField, errEmptyImage)
	}
	mt := mimetype.Detect(content)
	if !imageTypes[mt.String()] {
		return "", core.NewFieldError(imageField, errInvalidImage)
	}
	if _, err := imaging.Decode(bytes.NewReader(content)); err != nil {
		return "", core.NewFieldError(imageField, errInvalidImage)
	}
	return mt.Extension(), nil
}

// uploadDir is where images uploaded at t are stored: images/YYYY/MM/DD.
func uploadDir(t time.Time) string {
	return path.Join("images", t.Format("2006"), t.Format("01"), t.Format("02"))
}
