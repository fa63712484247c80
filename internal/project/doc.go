// Package project defines the persistent model of a conversion run: the
// source pages, detected regions, synthesized clips, and the stage marker
// that gates pipeline progress. State is stored in SQLite inside the run's
// work directory so it survives for inspection between commands.
package project
