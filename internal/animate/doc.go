// Package animate synthesizes motion clips from still panel images. Each
// effect renders a fixed number of frames for a requested duration and frame
// rate and writes them as sequential JPEG files into a caller-owned directory.
package animate
