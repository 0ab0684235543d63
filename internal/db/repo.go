package db

import (
	"context"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BookmarkRepo owns all bookmark persistence. IDs and creation timestamps are
// assigned here, never by callers; every read and delete is scoped by owner.
type BookmarkRepo struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewBookmarkRepo(db *gorm.DB, l *zap.SugaredLogger) *BookmarkRepo {
	return &BookmarkRepo{
		db:     db,
		logger: l,
	}
}

func (r *BookmarkRepo) Insert(ctx context.Context, b *Bookmark) error {
	if b.Tags == nil {
		b.Tags = TagList{}
	}

	res := r.db.WithContext(ctx).Create(b)
	if res.Error != nil {
		return errors.Wrap(res.Error, "create bookmark")
	}
	return nil
}

func (r *BookmarkRepo) ListByOwner(ctx context.Context, userID uint64) ([]Bookmark, error) {
	sql, args, err := squirrel.
		Select("id", "url", "title", "favicon", "summary", "tags", "created_at").
		From("bookmarks").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}

	bookmarks := make([]Bookmark, 0)
	res := r.db.WithContext(ctx).Raw(sql, args...).Scan(&bookmarks)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "scan")
	}

	return bookmarks, nil
}

// DeleteByID removes the record only if it belongs to userID. A non-existent
// or non-owned id is a no-op success.
func (r *BookmarkRepo) DeleteByID(ctx context.Context, userID, id uint64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&Bookmark{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete bookmark")
	}
	return nil
}

func (r *BookmarkRepo) DistinctTags(ctx context.Context, userID uint64) ([]string, error) {
	bookmarks := make([]Bookmark, 0)
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&bookmarks)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "find bookmarks")
	}

	seen := map[string]struct{}{}
	tags := make([]string, 0)
	for i := range bookmarks {
		for _, t := range bookmarks[i].Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)

	return tags, nil
}
