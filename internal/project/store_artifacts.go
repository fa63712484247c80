package project

import (
	"context"
	"encoding/json"
	"fmt"
)

// AddPages inserts pages in the given order and fills in their IDs.
func (s *Store) AddPages(ctx context.Context, projectID int64, pages []Page) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin pages tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range pages {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO pages (project_id, source_path, page_index) VALUES (?, ?, ?)`,
			projectID, pages[i].SourcePath, pages[i].Index,
		)
		if err != nil {
			return fmt.Errorf("insert page %d: %w", pages[i].Index, err)
		}
		if pages[i].ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("page id: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit pages: %w", err)
	}
	return nil
}

// Pages returns the project's pages in extraction order.
func (s *Store) Pages(ctx context.Context, projectID int64) ([]Page, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_path, page_index FROM pages
         WHERE project_id = ? ORDER BY page_index`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		var p Page
		if err := rows.Scan(&p.ID, &p.SourcePath, &p.Index); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// AddRegion validates and inserts a region, returning its assigned ID.
func (s *Store) AddRegion(ctx context.Context, projectID int64, region Region) (int64, error) {
	if err := region.Validate(); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO regions (project_id, kind, x, y, w, h, parent_id, page_index, text)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		projectID, region.Kind,
		region.Box.X, region.Box.Y, region.Box.W, region.Box.H,
		region.ParentID, region.PageIndex, region.Text,
	)
	if err != nil {
		return 0, fmt.Errorf("insert region: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("region id: %w", err)
	}
	return id, nil
}

// Regions returns all regions in reading order: page by page, insertion
// order within a page.
func (s *Store) Regions(ctx context.Context, projectID int64) ([]Region, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, x, y, w, h, parent_id, page_index, text FROM regions
         WHERE project_id = ? ORDER BY page_index, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query regions: %w", err)
	}
	defer rows.Close()

	var regions []Region
	for rows.Next() {
		var r Region
		var kind string
		if err := rows.Scan(&r.ID, &kind, &r.Box.X, &r.Box.Y, &r.Box.W, &r.Box.H,
			&r.ParentID, &r.PageIndex, &r.Text); err != nil {
			return nil, fmt.Errorf("scan region: %w", err)
		}
		r.Kind = RegionKind(kind)
		regions = append(regions, r)
	}
	return regions, rows.Err()
}

// Panels returns only panel regions in reading order.
func (s *Store) Panels(ctx context.Context, projectID int64) ([]Region, error) {
	regions, err := s.Regions(ctx, projectID)
	if err != nil {
		return nil, err
	}
	panels := regions[:0:0]
	for _, r := range regions {
		if r.Kind == RegionPanel {
			panels = append(panels, r)
		}
	}
	return panels, nil
}

// BubblesFor returns the bubble regions owned by a panel, in reading order.
func (s *Store) BubblesFor(ctx context.Context, projectID, panelID int64) ([]Region, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, x, y, w, h, parent_id, page_index, text FROM regions
         WHERE project_id = ? AND parent_id = ? AND kind = ? ORDER BY id`,
		projectID, panelID, RegionBubble)
	if err != nil {
		return nil, fmt.Errorf("query bubbles: %w", err)
	}
	defer rows.Close()

	var bubbles []Region
	for rows.Next() {
		var r Region
		var kind string
		if err := rows.Scan(&r.ID, &kind, &r.Box.X, &r.Box.Y, &r.Box.W, &r.Box.H,
			&r.ParentID, &r.PageIndex, &r.Text); err != nil {
			return nil, fmt.Errorf("scan bubble: %w", err)
		}
		r.Kind = RegionKind(kind)
		bubbles = append(bubbles, r)
	}
	return bubbles, rows.Err()
}

// AddClip inserts an animation clip, returning its assigned ID. Frame paths
// are stored as a JSON array.
func (s *Store) AddClip(ctx context.Context, projectID int64, clip AnimationClip) (int64, error) {
	if len(clip.Frames) == 0 {
		return 0, fmt.Errorf("clip for region %d has no frames", clip.RegionID)
	}
	frames, err := json.Marshal(clip.Frames)
	if err != nil {
		return 0, fmt.Errorf("marshal frames: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO animation_clips (project_id, region_id, kind, frames_json, frame_duration)
         VALUES (?, ?, ?, ?, ?)`,
		projectID, clip.RegionID, clip.Kind, string(frames), clip.FrameDuration,
	)
	if err != nil {
		return 0, fmt.Errorf("insert clip: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("clip id: %w", err)
	}
	return id, nil
}

// Clips returns all animation clips in insertion order.
func (s *Store) Clips(ctx context.Context, projectID int64) ([]AnimationClip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, region_id, kind, frames_json, frame_duration FROM animation_clips
         WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query clips: %w", err)
	}
	defer rows.Close()

	var clips []AnimationClip
	for rows.Next() {
		var c AnimationClip
		var kind, framesJSON string
		if err := rows.Scan(&c.ID, &c.RegionID, &kind, &framesJSON, &c.FrameDuration); err != nil {
			return nil, fmt.Errorf("scan clip: %w", err)
		}
		c.Kind = ClipKind(kind)
		if err := json.Unmarshal([]byte(framesJSON), &c.Frames); err != nil {
			return nil, fmt.Errorf("unmarshal frames: %w", err)
		}
		clips = append(clips, c)
	}
	return clips, rows.Err()
}

// AddAudioClip inserts an audio clip, returning its assigned ID.
func (s *Store) AddAudioClip(ctx context.Context, projectID int64, clip AudioClip) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO audio_clips (project_id, region_id, path, duration)
         VALUES (?, ?, ?, ?)`,
		projectID, clip.RegionID, clip.Path, clip.Duration,
	)
	if err != nil {
		return 0, fmt.Errorf("insert audio clip: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("audio clip id: %w", err)
	}
	return id, nil
}

// AudioClips returns all audio clips keyed by owning region.
func (s *Store) AudioClips(ctx context.Context, projectID int64) (map[int64]AudioClip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, region_id, path, duration FROM audio_clips
         WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query audio clips: %w", err)
	}
	defer rows.Close()

	clips := make(map[int64]AudioClip)
	for rows.Next() {
		var c AudioClip
		if err := rows.Scan(&c.ID, &c.RegionID, &c.Path, &c.Duration); err != nil {
			return nil, fmt.Errorf("scan audio clip: %w", err)
		}
		clips[c.RegionID] = c
	}
	return clips, rows.Err()
}
