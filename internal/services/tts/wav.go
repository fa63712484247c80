package tts

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// readWAV loads a PCM16 mono WAV file.
func readWAV(path string) (sampleRate int, samples []int16, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, fmt.Errorf("read wav: %w", err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return 0, nil, fmt.Errorf("%s: not a RIFF/WAVE file", path)
	}

	var (
		fmtSeen  bool
		channels int
		bits     int
	)
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkLen := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkLen > len(data) {
			return 0, nil, fmt.Errorf("%s: truncated %q chunk", path, chunkID)
		}
		switch chunkID {
		case "fmt ":
			if chunkLen < 16 {
				return 0, nil, fmt.Errorf("%s: short fmt chunk", path)
			}
			format := int(binary.LittleEndian.Uint16(data[body : body+2]))
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			if format != 1 || bits != 16 {
				return 0, nil, fmt.Errorf("%s: only PCM16 supported (format %d, %d bits)", path, format, bits)
			}
			fmtSeen = true
		case "data":
			if !fmtSeen {
				return 0, nil, fmt.Errorf("%s: data chunk before fmt", path)
			}
			count := chunkLen / 2
			samples = make([]int16, 0, count/channels)
			for i := 0; i+1 < chunkLen; i += 2 * channels {
				// Mono downmix keeps only the first channel.
				samples = append(samples, int16(binary.LittleEndian.Uint16(data[body+i:body+i+2])))
			}
			return sampleRate, samples, nil
		}
		offset = body + chunkLen
		if chunkLen%2 == 1 {
			offset++
		}
	}
	return 0, nil, fmt.Errorf("%s: no data chunk", path)
}

// writeWAV writes PCM16 mono samples to path.
func writeWAV(path string, sampleRate int, samples []int16) error {
	var body bytes.Buffer
	for _, s := range samples {
		if err := binary.Write(&body, binary.LittleEndian, s); err != nil {
			return fmt.Errorf("encode samples: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	defer file.Close()

	dataLen := body.Len()
	header := &bytes.Buffer{}
	header.WriteString("RIFF")
	binary.Write(header, binary.LittleEndian, uint32(36+dataLen))
	header.WriteString("WAVE")
	header.WriteString("fmt ")
	binary.Write(header, binary.LittleEndian, uint32(16))
	binary.Write(header, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(header, binary.LittleEndian, uint16(1)) // mono
	binary.Write(header, binary.LittleEndian, uint32(sampleRate))
	binary.Write(header, binary.LittleEndian, uint32(sampleRate*2)) // byte rate
	binary.Write(header, binary.LittleEndian, uint16(2))            // block align
	binary.Write(header, binary.LittleEndian, uint16(16))           // bits
	header.WriteString("data")
	binary.Write(header, binary.LittleEndian, uint32(dataLen))

	if _, err := file.Write(header.Bytes()); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	if _, err := io.Copy(file, &body); err != nil {
		return fmt.Errorf("write wav data: %w", err)
	}
	return file.Close()
}

// Duration returns the play time of a PCM16 WAV file in seconds.
func Duration(path string) (float64, error) {
	rate, samples, err := readWAV(path)
	if err != nil {
		return 0, err
	}
	return float64(len(samples)) / float64(rate), nil
}

// Mix overlays the input tracks starting at a common origin and writes the
// result to outPath. All inputs must share a sample rate; the output is as
// long as the longest input.
func Mix(outPath string, inputs ...string) (float64, error) {
	if len(inputs) == 0 {
		return 0, fmt.Errorf("mix: no inputs")
	}

	var (
		rate  int
		mixed []int32
	)
	for _, input := range inputs {
		r, samples, err := readWAV(input)
		if err != nil {
			return 0, err
		}
		if rate == 0 {
			rate = r
		} else if r != rate {
			return 0, fmt.Errorf("mix: sample rate %d does not match %d (%s)", r, rate, input)
		}
		if len(samples) > len(mixed) {
			grown := make([]int32, len(samples))
			copy(grown, mixed)
			mixed = grown
		}
		for i, s := range samples {
			mixed[i] += int32(s)
		}
	}

	out := make([]int16, len(mixed))
	for i, v := range mixed {
		if v > 32767 {
			v = 32767
		}
		if v < -32768 {
			v = -32768
		}
		out[i] = int16(v)
	}
	if err := writeWAV(outPath, rate, out); err != nil {
		return 0, err
	}
	return float64(len(out)) / float64(rate), nil
}

// Append concatenates the input tracks back to back and writes the result to
// outPath. All inputs must share a sample rate.
func Append(outPath string, inputs ...string) (float64, error) {
	if len(inputs) == 0 {
		return 0, fmt.Errorf("append: no inputs")
	}

	var (
		rate   int
		joined []int16
	)
	for _, input := range inputs {
		r, samples, err := readWAV(input)
		if err != nil {
			return 0, err
		}
		if rate == 0 {
			rate = r
		} else if r != rate {
			return 0, fmt.Errorf("append: sample rate %d does not match %d (%s)", r, rate, input)
		}
		joined = append(joined, samples...)
	}
	if err := writeWAV(outPath, rate, joined); err != nil {
		return 0, err
	}
	return float64(len(joined)) / float64(rate), nil
}
