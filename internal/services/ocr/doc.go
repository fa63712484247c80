// Package ocr reads speech bubble text through Tesseract. Recognition
// results are cached by image digest so repeated passes over the same
// regions stay cheap.
package ocr
