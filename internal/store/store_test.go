package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-sitemap/internal/scene"
)

var itemColumns = []string{"id", "parent", "title", "description", "map", "acl", "created_by", "created_at"}

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestListItemsByParent(t *testing.T) {
	s, mock := newMock(t)
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, construction_site_id, title, description, map, acl, created_by, created_at FROM areas WHERE construction_site_id = ? ORDER BY created_at, id")).
		WithArgs("cs-1").
		WillReturnRows(sqlmock.NewRows(itemColumns).
			AddRow("a-1", "cs-1", "North", "", `{}`, "", "ann", now).
			AddRow("a-2", "cs-1", "South", "", `{}`, "", "ann", now))

	items, err := s.ListItems(context.Background(), scene.CategoryArea, "cs-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a-1", items[0].ID)
	assert.Equal(t, "cs-1", items[0].ParentID)
	assert.Equal(t, "South", items[1].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListConstructionSites(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, '', title, description, map, acl, created_by, created_at FROM construction_sites ORDER BY created_at, id")).
		WillReturnRows(sqlmock.NewRows(itemColumns))

	items, err := s.ListItems(context.Background(), scene.CategoryConstructionSite, "ignored")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListItemsUnsupportedCategory(t *testing.T) {
	s, _ := newMock(t)
	_, err := s.ListItems(context.Background(), scene.CategoryMeasurement, "")
	assert.ErrorIs(t, err, ErrUnsupportedCategory)
}

func TestGetItemNotFound(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs WHERE id = ?")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetItem(context.Background(), scene.CategoryJob, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListJobs(t *testing.T) {
	s, mock := newMock(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs WHERE area_id = ?")).
		WithArgs("a-1").
		WillReturnRows(sqlmock.NewRows(append(itemColumns, "status")).
			AddRow("j-1", "a-1", "Scan", "", `{}`, "", "bo", now, "create-succeeded").
			AddRow("j-2", "a-1", "Scan 2", "", `{}`, "", "bo", now, "creating"))

	jobs, err := s.ListJobs(context.Background(), "a-1")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, JobCreateSucceeded, jobs[0].Status)
	assert.Equal(t, JobCreating, jobs[1].Status)
}

func TestImagePoints(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM image_points WHERE measurement_id = ? AND id = ?")).
		WithArgs("m-1", "img-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "measurement_id", "longitude", "latitude"}).
			AddRow("img-2", "m-1", 13.4, 52.5))

	points, err := s.ImagePoints(context.Background(), "m-1", "img-2")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 13.4, points[0].Longitude)
	assert.Equal(t, 52.5, points[0].Latitude)
}

func TestSaveMap(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE areas SET map = ? WHERE id = ?")).
		WithArgs(`{"geometry":null}`, "a-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE areas SET map = ? WHERE id = ?")).
		WithArgs(`{}`, "nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.SaveMap(context.Background(), scene.CategoryArea, "a-1", `{"geometry":null}`))
	assert.ErrorIs(t, s.SaveMap(context.Background(), scene.CategoryArea, "nope", `{}`), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOffline(t *testing.T) {
	ctx := context.Background()
	var off Offline

	_, err := off.ListItems(ctx, scene.CategoryArea, "")
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = off.ListJobs(ctx, "a-1")
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = off.ImagePoints(ctx, "m-1", "")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, off.SaveMap(ctx, scene.CategoryJob, "j-1", "{}"), ErrUnavailable)
}
