package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *BookmarkRepo {
	t.Helper()

	dbc, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.Nil(t, err)

	require.Nil(t, dbc.AutoMigrate(&User{}))
	require.Nil(t, dbc.AutoMigrate(&Bookmark{}))

	return NewBookmarkRepo(dbc, zap.NewNop().Sugar())
}

func strPtr(s string) *string { return &s }

func TestInsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	b := Bookmark{
		URL:     "https://example.com",
		Title:   strPtr("Example"),
		Summary: strPtr("A page about example"),
		Tags:    TagList{"news", "tech"},
		UserID:  1,
	}
	err := repo.Insert(ctx, &b)
	assert.Nil(t, err)
	assert.NotZero(t, b.ID)
	assert.False(t, b.CreatedAt.IsZero())

	got, err := repo.ListByOwner(ctx, 1)
	assert.Nil(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "https://example.com", got[0].URL)
	assert.Equal(t, "Example", *got[0].Title)
	assert.Equal(t, TagList{"news", "tech"}, got[0].Tags)
}

func TestInsertNilTags(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	b := Bookmark{URL: "https://example.com", UserID: 1}
	require.Nil(t, repo.Insert(ctx, &b))

	got, err := repo.ListByOwner(ctx, 1)
	assert.Nil(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, TagList{}, got[0].Tags)
}

func TestListByOwner(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	older := Bookmark{URL: "https://old.example.com", UserID: 1,
		GormForkedModel: GormForkedModel{CreatedAt: now.Add(-time.Hour)}}
	newer := Bookmark{URL: "https://new.example.com", UserID: 1,
		GormForkedModel: GormForkedModel{CreatedAt: now}}
	other := Bookmark{URL: "https://other.example.com", UserID: 2}

	require.Nil(t, repo.Insert(ctx, &older))
	require.Nil(t, repo.Insert(ctx, &newer))
	require.Nil(t, repo.Insert(ctx, &other))

	got, err := repo.ListByOwner(ctx, 1)
	assert.Nil(t, err)
	assert.Len(t, got, 2)
	// most recent first, never another owner's records
	assert.Equal(t, "https://new.example.com", got[0].URL)
	assert.Equal(t, "https://old.example.com", got[1].URL)
}

func TestDeleteByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mine := Bookmark{URL: "https://example.com", UserID: 1}
	theirs := Bookmark{URL: "https://example.org", UserID: 2}
	require.Nil(t, repo.Insert(ctx, &mine))
	require.Nil(t, repo.Insert(ctx, &theirs))

	t.Run("non-owned id is a no-op", func(t *testing.T) {
		err := repo.DeleteByID(ctx, 1, theirs.ID)
		assert.Nil(t, err)

		got, err := repo.ListByOwner(ctx, 2)
		assert.Nil(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("owned id is removed", func(t *testing.T) {
		err := repo.DeleteByID(ctx, 1, mine.ID)
		assert.Nil(t, err)

		got, err := repo.ListByOwner(ctx, 1)
		assert.Nil(t, err)
		assert.Len(t, got, 0)
	})

	t.Run("non-existent id is a no-op", func(t *testing.T) {
		assert.Nil(t, repo.DeleteByID(ctx, 1, 424242))
	})
}

func TestDistinctTags(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.Nil(t, repo.Insert(ctx, &Bookmark{URL: "https://a.example.com", UserID: 1, Tags: TagList{"news", "tech"}}))
	require.Nil(t, repo.Insert(ctx, &Bookmark{URL: "https://b.example.com", UserID: 1, Tags: TagList{"tech", "golang"}}))
	require.Nil(t, repo.Insert(ctx, &Bookmark{URL: "https://c.example.com", UserID: 2, Tags: TagList{"other"}}))

	got, err := repo.DistinctTags(ctx, 1)
	assert.Nil(t, err)
	assert.Equal(t, []string{"golang", "news", "tech"}, got)
}
