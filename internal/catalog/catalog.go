// Package catalog keeps a local history of scene-split runs in SQLite so the
// CLI can list past runs without re-reading report files.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/scenesplit/scenesplit-service/internal/domain/entity"
)

// Run is one recorded invocation of the splitter.
type Run struct {
	ID             int64
	SourceVideo    string
	OutputDir      string
	TotalScenes    int
	CreatedClips   int
	Threshold      float64
	MinSceneLength float64
	CreatedAt      time.Time
}

type Catalog struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the catalog database at path.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}

	c := &Catalog{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

func (c *Catalog) migrate() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_video TEXT NOT NULL,
			output_dir TEXT NOT NULL,
			total_scenes INTEGER NOT NULL,
			created_clips INTEGER NOT NULL,
			threshold REAL NOT NULL,
			min_scene_length REAL NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS run_scenes (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			scene_number INTEGER NOT NULL,
			start_time REAL NOT NULL,
			end_time REAL NOT NULL,
			duration REAL NOT NULL,
			PRIMARY KEY (run_id, scene_number)
		);
	`)
	if err != nil {
		return fmt.Errorf("migrate catalog: %w", err)
	}
	return nil
}

// RecordRun stores a completed report and its scene breakdown.
func (c *Catalog) RecordRun(ctx context.Context, report *entity.SceneReport, outputDir string) (int64, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (source_video, output_dir, total_scenes, created_clips, threshold, min_scene_length, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.SourceVideo, outputDir, report.TotalScenes, report.CreatedClips,
		report.Threshold, report.MinSceneLength, report.GeneratedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for _, scene := range report.Scenes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_scenes (run_id, scene_number, start_time, end_time, duration)
			VALUES (?, ?, ?, ?, ?)`,
			runID, scene.Number, scene.Start, scene.End, scene.Duration,
		)
		if err != nil {
			return 0, fmt.Errorf("insert scene %d: %w", scene.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first.
func (c *Catalog) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, source_video, output_dir, total_scenes, created_clips, threshold, min_scene_length, created_at
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt string
		if err := rows.Scan(&r.ID, &r.SourceVideo, &r.OutputDir, &r.TotalScenes, &r.CreatedClips, &r.Threshold, &r.MinSceneLength, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunScenes returns the scene breakdown of one run in scene order.
func (c *Catalog) RunScenes(ctx context.Context, runID int64) ([]entity.SceneRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT scene_number, start_time, end_time, duration
		FROM run_scenes WHERE run_id = ? ORDER BY scene_number`, runID)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()

	var scenes []entity.SceneRecord
	for rows.Next() {
		var s entity.SceneRecord
		if err := rows.Scan(&s.Number, &s.Start, &s.End, &s.Duration); err != nil {
			return nil, fmt.Errorf("scan scene: %w", err)
		}
		scenes = append(scenes, s)
	}
	return scenes, rows.Err()
}
