// Package ffmpeg drives the ffmpeg CLI for the three encode operations the
// pipeline needs: rendering frame manifests into clips, muxing audio onto a
// clip, and concatenating finished clips into the final video.
package ffmpeg
