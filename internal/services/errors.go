package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers used to classify failures across pipeline stages. Stage and
// collaborator code wraps errors with one of these so callers can decide
// whether a failure aborts the run or is contained and substituted.
var (
	// ErrUnsupportedFormat marks input containers the extractor cannot open.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrEmptyInput marks a stage that received nothing to work on.
	ErrEmptyInput = errors.New("empty input")
	// ErrPipelineState marks a stage invoked before its predecessor completed.
	ErrPipelineState = errors.New("pipeline state error")
	// ErrSynthesis marks OCR/TTS failures that are recoverable via fallback.
	ErrSynthesis = errors.New("synthesis failure")
	// ErrEncoding marks external encoder failures. Always fatal, no retry.
	ErrEncoding = errors.New("encoding failure")
	// ErrExternalTool marks general external binary failures.
	ErrExternalTool = errors.New("external tool error")
	// ErrValidation marks bad caller-supplied parameters.
	ErrValidation = errors.New("validation error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error must abort the run. Synthesis failures are
// contained per unit (fallback audio, still-frame clip); everything else in
// the taxonomy surfaces to the caller.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrSynthesis)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
