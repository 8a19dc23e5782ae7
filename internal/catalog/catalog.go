// Package catalog records every generated animation in a SQLite database so
// a gallery can be listed or regenerated later.
package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/convviz/internal/geometry"
	"github.com/banshee-data/convviz/internal/timeutil"
	"github.com/banshee-data/convviz/internal/version"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned by Get for an unknown render ID.
var ErrNotFound = errors.New("render not found")

// Catalog is a handle on the render database.
type Catalog struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Entry is one generated artifact.
type Entry struct {
	ID         string
	Name       string
	Kind       string
	InputSize  int
	KernelSize int
	Stride     int
	Padding    int
	OutputSize int
	Frames     int
	Format     string
	Path       string
	FrameDelay time.Duration
	Version    string
	CreatedAt  time.Time
}

// EntryFor describes an artifact generated from g.
func EntryFor(g geometry.Geometry, format, path string, delay time.Duration) Entry {
	return Entry{
		Name:       g.Config.Name(),
		Kind:       g.Config.Kind.String(),
		InputSize:  g.Config.InputSize,
		KernelSize: g.Config.KernelSize,
		Stride:     g.Config.Stride,
		Padding:    g.Config.Padding,
		OutputSize: g.OutputSize,
		Frames:     g.Frames(),
		Format:     format,
		Path:       path,
		FrameDelay: delay,
	}
}

// Open opens (creating if needed) the database at path and migrates it to
// the latest schema.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	// modernc sqlite serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	c := &Catalog{db: db, clock: timeutil.RealClock{}}
	if err := c.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// SetClock replaces the time source used for CreatedAt.
func (c *Catalog) SetClock(clock timeutil.Clock) { c.clock = clock }

// Close closes the database.
func (c *Catalog) Close() error { return c.db.Close() }

// Record inserts e, assigning an ID, version and timestamp when unset.
func (c *Catalog) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Version == "" {
		e.Version = version.Version
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = c.clock.Now()
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO renders (
			render_id, name, layer_kind, input_size, kernel_size, stride, padding,
			output_size, frame_count, format, path, version, created_unix_nanos, frame_delay_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Kind, e.InputSize, e.KernelSize, e.Stride, e.Padding,
		e.OutputSize, e.Frames, e.Format, e.Path, e.Version, e.CreatedAt.UnixNano(), e.FrameDelay.Milliseconds(),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("record render %s: %w", e.Name, err)
	}
	return e, nil
}

const selectEntry = `
	SELECT render_id, name, layer_kind, input_size, kernel_size, stride, padding,
	       output_size, frame_count, format, path, version, created_unix_nanos, frame_delay_ms
	FROM renders`

// Get returns the entry with the given ID.
func (c *Catalog) Get(ctx context.Context, id string) (Entry, error) {
	row := c.db.QueryRowContext(ctx, selectEntry+` WHERE render_id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

// List returns entries oldest first. An empty name lists everything.
func (c *Catalog) List(ctx context.Context, name string) ([]Entry, error) {
	query := selectEntry
	var args []any
	if name != "" {
		query += ` WHERE name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY created_unix_nanos, render_id`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list renders: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var e Entry
	var created, delayMs int64
	err := s.Scan(&e.ID, &e.Name, &e.Kind, &e.InputSize, &e.KernelSize, &e.Stride, &e.Padding,
		&e.OutputSize, &e.Frames, &e.Format, &e.Path, &e.Version, &created, &delayMs)
	if err != nil {
		return Entry{}, err
	}
	e.CreatedAt = time.Unix(0, created)
	e.FrameDelay = time.Duration(delayMs) * time.Millisecond
	return e, nil
}
