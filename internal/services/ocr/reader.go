package ocr

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/png"
	"strings"
	"time"

	gosseract "github.com/otiai10/gosseract/v2"
	cache "github.com/patrickmn/go-cache"
)

// Engine abstracts the OCR backend for testability.
type Engine interface {
	Recognize(language string, pngData []byte) (string, error)
}

// Option configures the reader.
type Option func(*Reader)

// WithEngine injects a custom OCR engine (primarily for tests).
func WithEngine(engine Engine) Option {
	return func(r *Reader) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// Reader extracts text from images. Failures degrade to empty text rather
// than propagating: a panel without readable dialogue is normal, not an
// error.
type Reader struct {
	language string
	results  *cache.Cache
	engine   Engine
}

// New constructs a reader for the given Tesseract language. Recognized text
// is cached for cacheTTL per distinct image.
func New(language string, cacheTTL time.Duration, opts ...Option) *Reader {
	language = strings.TrimSpace(language)
	if language == "" {
		language = "eng"
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	r := &Reader{
		language: language,
		results:  cache.New(cacheTTL, 2*cacheTTL),
		engine:   tesseractEngine{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ExtractText recognizes text in img. Returns trimmed text, or an empty
// string when nothing is readable or the backend fails. The only error
// surfaced is context cancellation.
func (r *Reader) ExtractText(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", nil
	}
	key := digest(buf.Bytes())
	if cached, ok := r.results.Get(key); ok {
		return cached.(string), nil
	}

	text, err := r.engine.Recognize(r.language, buf.Bytes())
	if err != nil {
		return "", nil
	}
	text = strings.TrimSpace(text)
	r.results.Set(key, text, cache.DefaultExpiration)
	return text, nil
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type tesseractEngine struct{}

func (tesseractEngine) Recognize(language string, pngData []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := client.SetImageFromBytes(pngData); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return text, nil
}
