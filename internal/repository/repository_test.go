package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cabin-roster/backend/internal/model"
	pkgerrors "cabin-roster/backend/pkg/errors"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestPreferenceRepo_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPreferenceRepo(db)

	rows := sqlmock.NewRows([]string{"name_key", "display_name", "task_preferences", "area_preferences", "pyyhinta_preferences", "position"}).
		AddRow("MATTI VIRTANEN", "Matti Virtanen", `{PESU,"PETAUS DOUBLE"}`, `{"8 BACK"}`, "{}", 1).
		AddRow("LIISA KOSKI", "Liisa Koski", "{IMURI}", "{}", "{}", 2)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "worker_preferences" ORDER BY position ASC`)).
		WillReturnRows(rows)

	prefs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, prefs, 2)
	assert.Equal(t, model.StringArray{"PESU", "PETAUS DOUBLE"}, prefs[0].TaskPreferences)
	assert.Equal(t, model.StringArray{"8 BACK"}, prefs[0].AreaPreferences)
	assert.Equal(t, "LIISA KOSKI", prefs[1].ToDomain().WorkerName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepo_DeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPreferenceRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "worker_preferences" WHERE name_key = $1`)).
		WithArgs("NOBODY").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "NOBODY")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAreaRepo_UpdateOptimisticLock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAreaRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "area_configs" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	area := &model.AreaSetting{AreaID: "8100", Cabins: 90}
	area.Version = 3
	err := repo.Update(context.Background(), area)
	assert.True(t, errors.Is(err, pkgerrors.ErrOptimisticLock))
	assert.Equal(t, 3, area.Version, "冲突时版本号不变")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAreaRepo_UpdateBumpsVersion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAreaRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "area_configs" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	area := &model.AreaSetting{AreaID: "8100", Cabins: 90, Suites: model.SuiteFlags{}}
	area.Version = 3
	require.NoError(t, repo.Update(context.Background(), area))
	assert.Equal(t, 4, area.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAreaRepo_GetOptionsDefaults(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAreaRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "special_area_options" WHERE singleton = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"singleton", "terrace", "terrace_workers"}))

	opts, err := repo.GetOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, opts.TerraceWorkers)
	assert.False(t, opts.Terrace)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRunRepo_GetLatestNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssignmentRunRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "assignment_runs" ORDER BY created_at DESC`)).
		WillReturnRows(sqlmock.NewRows([]string{"run_id"}))

	_, err := repo.GetLatest(context.Background())
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRunRepo_GetByIDDecodesMapping(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssignmentRunRepo(db)

	mapping := `{"Z":{"__sections":["PESU"],"PESU|0":"Anna"},"UNASSIGNED":{"__sections":["UNASSIGNED WORKERS"],"UNASSIGNED WORKERS|workers":"","MATTOPESU+REP|0":""}}`
	rows := sqlmock.NewRows([]string{"run_id", "status", "mapping", "tasks", "leftovers", "assigned_tasks", "version"}).
		AddRow("2f1e4a0c-7d7a-4c55-9a43-2b4a1f4f9a11", model.RunStatusGenerated, mapping,
			`[{"area_id":"Z","section":"PESU","key":"PESU|0","name":"PESU","category":"WASH"}]`, `[]`, 1, 1)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "assignment_runs" WHERE run_id = $1`)).
		WillReturnRows(rows)

	run, err := repo.GetByID(context.Background(), "2f1e4a0c-7d7a-4c55-9a43-2b4a1f4f9a11")
	require.NoError(t, err)
	require.Len(t, run.Mapping.Areas, 2)
	v, ok := run.Mapping.Area("Z").Get("PESU|0")
	assert.True(t, ok)
	assert.Equal(t, "Anna", v)
	require.Len(t, run.Tasks, 1)
	assert.Equal(t, "PESU", run.Tasks[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRunRepo_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAssignmentRunRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "assignment_runs"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT .* FROM "assignment_runs" ORDER BY created_at DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"run_id", "status", "total_tasks"}).
			AddRow("a", model.RunStatusEdited, 40).
			AddRow("b", model.RunStatusGenerated, 38))

	runs, total, err := repo.List(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	require.Len(t, runs, 2)
	assert.Equal(t, model.RunStatusEdited, runs[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
