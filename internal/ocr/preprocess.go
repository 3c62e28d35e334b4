package ocr

import (
	"bytes"
	"fmt"
	"io"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/disintegration/imaging"
)

// DefaultMaxImageBytes caps encoded frames; Cloud Vision rejects larger requests.
const DefaultMaxImageBytes = 20 * 1024 * 1024

// PreprocessOptions controls frame normalization.
type PreprocessOptions struct {
	// MaxWidth downscales wider frames, keeping aspect ratio. 0 disables.
	MaxWidth int

	// Grayscale drops color before recognition.
	Grayscale bool

	// Contrast stretches contrast by this fraction, in (-1, 1].
	// 0 leaves the frame unchanged.
	Contrast float64

	// MaxBytes rejects larger encoded inputs. 0 means DefaultMaxImageBytes.
	MaxBytes int64
}

// DefaultPreprocessOptions mirrors the defaults of internal/config.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{
		MaxWidth:  1280,
		Grayscale: true,
		MaxBytes:  DefaultMaxImageBytes,
	}
}

// PreparedImage is a normalized PNG frame and its dimensions.
type PreparedImage struct {
	PNG    []byte
	Width  int
	Height int
}

// Reader returns a reader over the PNG bytes.
func (p *PreparedImage) Reader() io.Reader {
	return bytes.NewReader(p.PNG)
}

// Preprocess decodes an encoded frame, applies EXIF orientation (the
// camera's rotation), optionally converts to grayscale and downscales,
// and re-encodes it as PNG.
func Preprocess(r io.Reader, opts PreprocessOptions) (*PreparedImage, error) {
	const op = "Preprocess"

	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, WrapRecognitionError(op, "", err, "failed to read image data")
	}
	if int64(len(data)) > maxBytes {
		return nil, WrapRecognitionError(op, "", ErrImageTooLarge, fmt.Sprintf("limit: %d bytes", maxBytes))
	}
	if len(data) == 0 {
		return nil, WrapRecognitionError(op, "", ErrInvalidImage, "empty image")
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, WrapRecognitionError(op, "", ErrInvalidImage, err.Error())
	}

	if opts.MaxWidth > 0 && img.Bounds().Dx() > opts.MaxWidth {
		img = imaging.Resize(img, opts.MaxWidth, 0, imaging.Lanczos)
	}
	if opts.Grayscale {
		img = imaging.Grayscale(img)
	}
	if opts.Contrast != 0 {
		img = adjust.Contrast(img, opts.Contrast)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, WrapRecognitionError(op, "", err, "failed to encode frame")
	}

	return &PreparedImage{
		PNG:    buf.Bytes(),
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}
