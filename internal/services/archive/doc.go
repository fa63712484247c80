// Package archive unpacks comic book archives. CBZ files are handled
// in-process; CBR files shell out to unrar, falling back to 7z when unrar is
// missing or fails.
package archive
