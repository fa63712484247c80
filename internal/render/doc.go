// Package render assembles synthesized clips into the final video. It
// writes concat-demuxer manifests, asks the encoder to render each segment,
// muxes narration where a segment has audio, and concatenates the results.
package render
