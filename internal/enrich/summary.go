package enrich

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/linksaver-back/internal/config"
)

type Summarizer struct {
	client   *resty.Client
	endpoint string
	logger   *zap.SugaredLogger
}

func NewSummarizer(cfg *config.Config, logger *zap.SugaredLogger) *Summarizer {
	endpoint := cfg.SummaryEndpoint
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}

	return &Summarizer{
		client:   resty.New().SetTimeout(time.Duration(cfg.FetchTimeoutSec) * time.Second),
		endpoint: endpoint,
		logger:   logger,
	}
}

// Summarize asks the summarization endpoint for a plain-text description of
// the target URL. The target is percent-encoded into the request path. A
// single attempt is made; anything but a 2xx yields nil.
func (s *Summarizer) Summarize(ctx context.Context, target string) *string {
	resp, err := s.client.R().SetContext(ctx).Get(s.endpoint + url.QueryEscape(target))
	if err != nil {
		s.logger.Debugw("summary fetch failed", "url", target, "error", err)
		return nil
	}
	if !resp.IsSuccess() {
		s.logger.Debugw("summary fetch non-success", "url", target, "status", resp.StatusCode())
		return nil
	}

	body := resp.String()
	return &body
}
