// Package store reads and writes the map items (construction sites, areas,
// jobs) and measurement image points kept in DuckDB.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/joeblew999/plat-sitemap/internal/scene"
)

// ErrNotFound is returned when an item does not exist.
var ErrNotFound = errors.New("item not found")

// ErrUnsupportedCategory is returned for categories without a table.
var ErrUnsupportedCategory = errors.New("category has no item table")

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobCreating        JobStatus = "creating"
	JobCreateSucceeded JobStatus = "create-succeeded"
	JobCreateFailed    JobStatus = "create-failed"
)

// MapItem is an item that carries a stored map.
type MapItem struct {
	ID          string    `json:"id" doc:"Item identifier" example:"cs-1"`
	ParentID    string    `json:"parentId,omitempty" doc:"Parent item identifier"`
	Title       string    `json:"title" doc:"Item title"`
	Description string    `json:"description" doc:"Item description"`
	Map         string    `json:"map" doc:"Stored map JSON"`
	ACL         string    `json:"acl,omitempty" doc:"Access control list"`
	CreatedBy   string    `json:"createdBy,omitempty" doc:"Author"`
	CreatedAt   time.Time `json:"createdAt" doc:"Creation time"`
}

// Job is a map item with a status.
type Job struct {
	MapItem
	Status JobStatus `json:"status" enum:"creating,create-succeeded,create-failed" doc:"Job status"`
}

// ImageInfo is the location of one measurement image.
type ImageInfo struct {
	ID            string  `json:"id" doc:"Image identifier"`
	MeasurementID string  `json:"measurementId" doc:"Measurement the image belongs to"`
	Longitude     float64 `json:"longitude" doc:"Longitude (WGS84)"`
	Latitude      float64 `json:"latitude" doc:"Latitude (WGS84)"`
}

// Store gives access to map items.
type Store struct {
	db *sql.DB
}

// New creates a store on an open database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type table struct {
	name   string
	parent string
}

func tableFor(c scene.Category) (table, error) {
	switch c {
	case scene.CategoryConstructionSite:
		return table{name: "construction_sites"}, nil
	case scene.CategoryArea:
		return table{name: "areas", parent: "construction_site_id"}, nil
	case scene.CategoryJob:
		return table{name: "jobs", parent: "area_id"}, nil
	}
	return table{}, fmt.Errorf("%w: %s", ErrUnsupportedCategory, c)
}

func (t table) columns() string {
	parent := "''"
	if t.parent != "" {
		parent = t.parent
	}
	return "id, " + parent + ", title, description, map, acl, created_by, created_at"
}

// ListItems returns the items of a category ordered by creation time. A
// non-empty parentID restricts areas to one construction site and jobs to
// one area.
func (s *Store) ListItems(ctx context.Context, c scene.Category, parentID string) ([]MapItem, error) {
	t, err := tableFor(c)
	if err != nil {
		return nil, err
	}
	query := "SELECT " + t.columns() + " FROM " + t.name
	var args []any
	if parentID != "" && t.parent != "" {
		query += " WHERE " + t.parent + " = ?"
		args = append(args, parentID)
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", t.name, err)
	}
	defer rows.Close()

	items := []MapItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", t.name, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetItem returns one item by id.
func (s *Store) GetItem(ctx context.Context, c scene.Category, id string) (MapItem, error) {
	t, err := tableFor(c)
	if err != nil {
		return MapItem{}, err
	}
	row := s.db.QueryRowContext(ctx, "SELECT "+t.columns()+" FROM "+t.name+" WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return MapItem{}, fmt.Errorf("%s %q: %w", c, id, ErrNotFound)
	}
	if err != nil {
		return MapItem{}, fmt.Errorf("getting %s %q: %w", c, id, err)
	}
	return item, nil
}

// ListJobs returns the jobs of an area, or every job when areaID is empty.
func (s *Store) ListJobs(ctx context.Context, areaID string) ([]Job, error) {
	query := "SELECT id, area_id, title, description, map, acl, created_by, created_at, status FROM jobs"
	var args []any
	if areaID != "" {
		query += " WHERE area_id = ?"
		args = append(args, areaID)
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.ParentID, &j.Title, &j.Description, &j.Map,
			&j.ACL, &j.CreatedBy, &j.CreatedAt, &j.Status); err != nil {
			return nil, fmt.Errorf("scanning jobs: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// ImagePoints returns the image locations of a measurement. A non-empty id
// returns only that image.
func (s *Store) ImagePoints(ctx context.Context, measurementID, id string) ([]ImageInfo, error) {
	query := "SELECT id, measurement_id, longitude, latitude FROM image_points WHERE measurement_id = ?"
	args := []any{measurementID}
	if id != "" {
		query += " AND id = ?"
		args = append(args, id)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing image points: %w", err)
	}
	defer rows.Close()

	points := []ImageInfo{}
	for rows.Next() {
		var p ImageInfo
		if err := rows.Scan(&p.ID, &p.MeasurementID, &p.Longitude, &p.Latitude); err != nil {
			return nil, fmt.Errorf("scanning image points: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// SaveMap replaces the stored map of an item.
func (s *Store) SaveMap(ctx context.Context, c scene.Category, id, m string) error {
	t, err := tableFor(c)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, "UPDATE "+t.name+" SET map = ? WHERE id = ?", m, id)
	if err != nil {
		return fmt.Errorf("saving %s %q map: %w", c, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("saving %s %q map: %w", c, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", c, id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (MapItem, error) {
	var item MapItem
	err := row.Scan(&item.ID, &item.ParentID, &item.Title, &item.Description, &item.Map,
		&item.ACL, &item.CreatedBy, &item.CreatedAt)
	return item, err
}
