// Package preflight runs the startup checks the convert command performs
// before touching the source archive: directory access, free disk space, and
// the availability of external tools.
package preflight
