package enrich

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/linksaver-back/internal/config"
)

// Metadata holds whatever could be derived from the target page. Nil fields
// mean the page did not expose the value or the fetch failed.
type Metadata struct {
	Title   *string
	Favicon *string
}

type Extractor struct {
	client *resty.Client
	logger *zap.SugaredLogger
}

func NewExtractor(cfg *config.Config, logger *zap.SugaredLogger) *Extractor {
	cl := resty.New().
		SetTimeout(time.Duration(cfg.FetchTimeoutSec) * time.Second).
		SetHeader("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:124.0) Gecko/20100101 Firefox/124.0").
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	return &Extractor{
		client: cl,
		logger: logger,
	}
}

// Extract fetches the page and pulls a title and favicon out of it. It makes a
// single attempt and never fails: any network, status, or parse problem yields
// an empty Metadata.
func (e *Extractor) Extract(ctx context.Context, target string) Metadata {
	resp, err := e.client.R().SetContext(ctx).Get(target)
	if err != nil {
		e.logger.Debugw("page fetch failed", "url", target, "error", err)
		return Metadata{}
	}
	if !resp.IsSuccess() {
		e.logger.Debugw("page fetch non-success", "url", target, "status", resp.StatusCode())
		return Metadata{}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		e.logger.Debugw("page parse failed", "url", target, "error", err)
		return Metadata{}
	}

	m := Metadata{}
	if title := strings.TrimSpace(doc.Find("head title").First().Text()); title != "" {
		m.Title = &title
	}

	href := doc.Find(`link[rel="icon"]`).AttrOr("href", "")
	if href == "" {
		href = doc.Find(`link[rel="shortcut icon"]`).AttrOr("href", "")
	}
	if href != "" {
		abs := absoluteFavicon(target, href)
		m.Favicon = &abs
	}

	return m
}

// absoluteFavicon resolves a relative favicon href against the scheme and host
// of the page it was found on.
func absoluteFavicon(target, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	u, err := url.Parse(target)
	if err != nil {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return u.Scheme + "://" + u.Host + href
	}
	return u.Scheme + "://" + u.Host + "/" + href
}
