// Package services defines the error taxonomy and context plumbing shared by
// the external collaborator clients (archive, ocr, tts, ffmpeg) and the
// pipeline stages that call them.
//
// Every collaborator failure is wrapped with one of the exported sentinel
// markers so the coordinator can distinguish recoverable per-unit failures
// (substitute fallback output, keep going) from fatal ones (abort the run and
// surface the failing stage).
package services
