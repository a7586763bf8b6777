package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	thumbMaxWidth = 480
	jpegQuality   = 80
)

// ThumbName возвращает имя миниатюры для имени хранения оригинала
func ThumbName(storedName string) string {
	ext := filepath.Ext(storedName)
	return strings.TrimSuffix(storedName, ext) + "_thumb.jpg"
}

// RenderThumbnail декодирует изображение, при необходимости сужает
// его до thumbMaxWidth и кодирует в JPEG
func RenderThumbnail(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > thumbMaxWidth {
		newH := h * thumbMaxWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, thumbMaxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}
