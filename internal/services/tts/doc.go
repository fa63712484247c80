// Package tts turns panel text into narration audio. Synthesis shells out
// to a configured binary; when no binary is configured or the call fails, a
// deterministic placeholder tone stands in so the pipeline always has audio
// to mux. All audio is 16-bit PCM WAV.
package tts
