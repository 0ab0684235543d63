package service

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Rogue-Bear-Innovations/linksaver-back/internal/db"
	"github.com/Rogue-Bear-Innovations/linksaver-back/internal/enrich"
)

var ErrInvalidURL = errors.New("invalid url")

type (
	// Repository is what the ingestor needs from persistence. Implemented by
	// db.BookmarkRepo.
	Repository interface {
		Insert(ctx context.Context, b *db.Bookmark) error
		ListByOwner(ctx context.Context, userID uint64) ([]db.Bookmark, error)
		DeleteByID(ctx context.Context, userID, id uint64) error
		DistinctTags(ctx context.Context, userID uint64) ([]string, error)
	}

	MetadataSource interface {
		Extract(ctx context.Context, target string) enrich.Metadata
	}

	Summarizer interface {
		Summarize(ctx context.Context, target string) *string
	}

	Ingestor struct {
		repo    Repository
		meta    MetadataSource
		summary Summarizer
		logger  *zap.SugaredLogger
	}
)

func NewIngestor(repo Repository, meta MetadataSource, summary Summarizer, logger *zap.SugaredLogger) *Ingestor {
	return &Ingestor{
		repo:    repo,
		meta:    meta,
		summary: summary,
		logger:  logger,
	}
}

// ValidateURL reports whether s is a syntactically valid absolute URL with a
// scheme and host. No network access.
func ValidateURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// Ingest turns a submitted URL into a persisted bookmark. Title, favicon and
// summary are fetched concurrently and are best effort: either branch failing
// leaves its fields absent and never aborts ingestion. Only an invalid URL or
// a failed insert comes back as an error.
func (s *Ingestor) Ingest(ctx context.Context, userID uint64, rawURL string, tags []string) (*db.Bookmark, error) {
	if !ValidateURL(rawURL) {
		return nil, ErrInvalidURL
	}
	if tags == nil {
		tags = []string{}
	}

	var (
		meta    enrich.Metadata
		summary *string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		meta = s.meta.Extract(gctx, rawURL)
		return nil
	})
	g.Go(func() error {
		summary = s.summary.Summarize(gctx, rawURL)
		return nil
	})
	// branches never return errors
	_ = g.Wait()

	model := db.Bookmark{
		URL:     rawURL,
		Title:   meta.Title,
		Favicon: meta.Favicon,
		Summary: summary,
		Tags:    db.TagList(tags),
		UserID:  userID,
	}
	if err := s.repo.Insert(ctx, &model); err != nil {
		return nil, errors.Wrap(err, "insert bookmark")
	}

	s.logger.Infow("bookmark ingested",
		"user_id", userID,
		"bookmark_id", model.ID,
		"has_title", model.Title != nil,
		"has_summary", model.Summary != nil,
	)

	return &model, nil
}
