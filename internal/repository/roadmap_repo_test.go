package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newMockDB 基于sqlmock构造gorm连接
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

func TestRoadmapRepository_ListEmbedded(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewRoadmapRepository(gdb)

	rows := sqlmock.NewRows([]string{"roadmap_id", "embedding"}).
		AddRow(1, "[0.1,0.2]").
		AddRow(2, "[0.3,0.4]")
	mock.ExpectQuery(`SELECT roadmap_id, embedding FROM "roadmaps"`).WillReturnRows(rows)

	candidates, err := repo.ListEmbedded(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, uint(1), candidates[0].ID)
	assert.Equal(t, []float32{0.1, 0.2}, candidates[0].Vector)
	assert.Equal(t, uint(2), candidates[1].ID)
}

func TestRoadmapRepository_ListEmbedded_SkipsCorruptRows(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewRoadmapRepository(gdb)

	rows := sqlmock.NewRows([]string{"roadmap_id", "embedding"}).
		AddRow(1, "not-json").
		AddRow(2, "[0.3,0.4]")
	mock.ExpectQuery(`SELECT roadmap_id, embedding FROM "roadmaps"`).WillReturnRows(rows)

	candidates, err := repo.ListEmbedded(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, uint(2), candidates[0].ID)
}

func TestRoadmapRepository_StepExists(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewRoadmapRepository(gdb)

	rows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "roadmap_steps"`).
		WithArgs(uint(5), "1-1").
		WillReturnRows(rows)

	exists, err := repo.StepExists(context.Background(), 5, "1-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRoadmapRepository_CountSteps(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewRoadmapRepository(gdb)

	rows := sqlmock.NewRows([]string{"count"}).AddRow(7)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "roadmap_steps"`).
		WithArgs(uint(3)).
		WillReturnRows(rows)

	count, err := repo.CountSteps(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}
