package ocr_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/zachdrouin/ComicAlive/internal/services/ocr"
)

type fakeEngine struct {
	text  string
	err   error
	calls int
}

func (f *fakeEngine) Recognize(_ string, _ []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

func testImage(fill color.Gray) image.Image {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = fill.Y
	}
	return img
}

func TestExtractTextTrims(t *testing.T) {
	engine := &fakeEngine{text: "  BAM! \n"}
	reader := ocr.New("eng", time.Minute, ocr.WithEngine(engine))

	text, err := reader.ExtractText(context.Background(), testImage(color.Gray{Y: 200}))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "BAM!" {
		t.Fatalf("text = %q, want trimmed", text)
	}
}

func TestExtractTextCachesByImage(t *testing.T) {
	engine := &fakeEngine{text: "hello"}
	reader := ocr.New("eng", time.Minute, ocr.WithEngine(engine))
	ctx := context.Background()

	img := testImage(color.Gray{Y: 100})
	for i := 0; i < 3; i++ {
		if _, err := reader.ExtractText(ctx, img); err != nil {
			t.Fatalf("ExtractText: %v", err)
		}
	}
	if engine.calls != 1 {
		t.Fatalf("engine called %d times, want 1 (cache hit)", engine.calls)
	}

	// A different image misses the cache.
	if _, err := reader.ExtractText(ctx, testImage(color.Gray{Y: 50})); err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if engine.calls != 2 {
		t.Fatalf("engine called %d times, want 2", engine.calls)
	}
}

func TestExtractTextSwallowsBackendFailure(t *testing.T) {
	engine := &fakeEngine{err: errors.New("tesseract missing")}
	reader := ocr.New("eng", time.Minute, ocr.WithEngine(engine))

	text, err := reader.ExtractText(context.Background(), testImage(color.Gray{Y: 100}))
	if err != nil {
		t.Fatalf("backend failure should not propagate, got %v", err)
	}
	if text != "" {
		t.Fatalf("text = %q, want empty on failure", text)
	}
}

func TestExtractTextHonorsCancellation(t *testing.T) {
	engine := &fakeEngine{text: "hello"}
	reader := ocr.New("eng", time.Minute, ocr.WithEngine(engine))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := reader.ExtractText(ctx, testImage(color.Gray{Y: 100})); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if engine.calls != 0 {
		t.Fatal("engine should not run after cancellation")
	}
}
