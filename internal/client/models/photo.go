package models

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

const (
	MaxPhotos     = 5
	MaxImageBytes = 2 * 1024 * 1024
)

var allowedPhotoTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/heif": {},
	"image/heic": {},
}

// PhotoFile is a selected image before it is embedded into an entry.
type PhotoFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Compressor shrinks an image so it fits maxBytes. Implementations live
// outside the sync core; a nil Compressor rejects oversized photos.
type Compressor interface {
	Compress(ctx context.Context, p PhotoFile, maxBytes int) (PhotoFile, error)
}

// ProcessPhotos validates files and returns them as data URLs, in order.
// Nothing is returned unless every file passes.
func ProcessPhotos(ctx context.Context, files []PhotoFile, c Compressor) ([]string, error) {
	if len(files) > MaxPhotos {
		return nil, &ValidationError{Field: "photos", Err: fmt.Errorf("%w: maximum %d photos allowed", ErrTooManyPhotos, MaxPhotos)}
	}

	out := make([]string, 0, len(files))
	for _, f := range files {
		if !IsAllowedPhoto(f) {
			return nil, &ValidationError{Field: "photos", Err: fmt.Errorf("%w: %s", ErrPhotoType, f.Name)}
		}

		if len(f.Data) > MaxImageBytes {
			if c == nil {
				return nil, &ValidationError{Field: "photos", Err: fmt.Errorf("%w: %s", ErrPhotoTooLarge, f.Name)}
			}
			compressed, err := c.Compress(ctx, f, MaxImageBytes)
			if err != nil {
				return nil, &ValidationError{Field: "photos", Err: fmt.Errorf("%w: %s: %v", ErrPhotoTooLarge, f.Name, err)}
			}
			if len(compressed.Data) > MaxImageBytes {
				return nil, &ValidationError{Field: "photos", Err: fmt.Errorf("%w: %s", ErrPhotoTooLarge, f.Name)}
			}
			f = compressed
		}

		out = append(out, DataURL(f))
	}
	return out, nil
}

// IsAllowedPhoto accepts JPEG, PNG and HEIF/HEIC images. The content type is
// sniffed when the caller did not provide one.
func IsAllowedPhoto(f PhotoFile) bool {
	if _, ok := allowedPhotoTypes[photoType(f)]; ok {
		return true
	}
	ext := strings.ToLower(filepath.Ext(f.Name))
	return ext == ".heif" || ext == ".heic"
}

// DataURL encodes f as "data:<type>;base64,<payload>".
func DataURL(f PhotoFile) string {
	return "data:" + photoType(f) + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}

func photoType(f PhotoFile) string {
	ct := f.ContentType
	if ct == "" {
		ct = http.DetectContentType(f.Data)
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
