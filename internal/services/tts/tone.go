package tts

import (
	"math"
	"strings"
)

const (
	toneSampleRate = 22050
	toneFrequency  = 440.0
	// Seconds of placeholder tone per word of unsynthesized text.
	tonePerWord = 0.1

	effectDuration  = 0.25
	effectFrequency = 180.0
)

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// writeFallbackTone writes a sine placeholder whose length scales with the
// word count of the text it stands in for. Returns the duration in seconds.
func writeFallbackTone(path, text string) (float64, error) {
	words := WordCount(text)
	if words < 1 {
		words = 1
	}
	duration := tonePerWord * float64(words)

	count := int(duration * toneSampleRate)
	samples := make([]int16, count)
	for i := range samples {
		t := float64(i) / toneSampleRate
		samples[i] = int16(0.3 * 32767 * math.Sin(2*math.Pi*toneFrequency*t))
	}
	if err := writeWAV(path, toneSampleRate, samples); err != nil {
		return 0, err
	}
	return duration, nil
}

// WriteImpactEffect writes a short decaying thump used for action keywords.
// Returns the duration in seconds.
func WriteImpactEffect(path string) (float64, error) {
	duration := float64(effectDuration)
	count := int(duration * toneSampleRate)
	samples := make([]int16, count)
	for i := range samples {
		t := float64(i) / toneSampleRate
		decay := math.Exp(-8 * t)
		samples[i] = int16(0.6 * 32767 * decay * math.Sin(2*math.Pi*effectFrequency*t))
	}
	if err := writeWAV(path, toneSampleRate, samples); err != nil {
		return 0, err
	}
	return duration, nil
}
