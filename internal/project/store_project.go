package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateProject inserts a new project at StageCreated and returns it.
func (s *Store) CreateProject(ctx context.Context, runID, sourcePath, workDir string) (*Project, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (run_id, source_path, work_dir, stage, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		runID, sourcePath, workDir, StageCreated, timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("project id: %w", err)
	}
	return &Project{
		ID:         id,
		RunID:      runID,
		SourcePath: sourcePath,
		WorkDir:    workDir,
		Stage:      StageCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// GetProject loads a project by id. ErrNotFound when absent.
func (s *Store) GetProject(ctx context.Context, id int64) (*Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, run_id, source_path, work_dir, stage, created_at, updated_at
         FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

// LatestProject loads the most recently created project, if any.
func (s *Store) LatestProject(ctx context.Context) (*Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, run_id, source_path, work_dir, stage, created_at, updated_at
         FROM projects ORDER BY id DESC LIMIT 1`)
	return scanProject(row)
}

func scanProject(row *sql.Row) (*Project, error) {
	var p Project
	var stage, created, updated string
	err := row.Scan(&p.ID, &p.RunID, &p.SourcePath, &p.WorkDir, &stage, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan project: %w", err)
	}
	p.Stage = Stage(stage)
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &p, nil
}

// AdvanceStage moves the project to the next stage. The requested stage must
// be exactly one step ahead of the stored one; anything else is a caller bug
// or a concurrent run, and the row is left untouched.
func (s *Store) AdvanceStage(ctx context.Context, id int64, to Stage) error {
	if !to.Valid() {
		return fmt.Errorf("unknown stage %q", to)
	}
	current, err := s.GetProject(ctx, id)
	if err != nil {
		return err
	}
	next, ok := current.Stage.Next()
	if !ok || next != to {
		return fmt.Errorf("cannot advance project %d from %q to %q", id, current.Stage, to)
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET stage = ?, updated_at = ? WHERE id = ? AND stage = ?`,
		to, timestamp, id, current.Stage,
	)
	if err != nil {
		return fmt.Errorf("advance stage: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("advance stage rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("project %d stage changed concurrently", id)
	}
	return nil
}
