// Package stage defines the handler contract pipeline stages implement and
// the health records they report.
package stage
