// Package scraper crawls the S&P 500 year-to-date performance table.
package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/gocolly/colly/v2"
	"github.com/guregu/null/v6"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"StockScope/internal/model"
)

const (
	DefaultStartURL  = "https://www.slickcharts.com/sp500/performance"
	DefaultDomain    = "slickcharts.com"
	DefaultUserAgent = "Mozilla/5.0 (compatible; stockscope/1.0)"
	DefaultTimeout   = 30 * time.Second
)

// XPath expressions for the performance table. Cell paths are relative to a row.
const (
	RowXPath       = `//table[@class="table table-hover table-borderless table-sm"]/tbody/tr`
	NumberXPath    = `td[1]/text()`
	CompanyXPath   = `td[2]/a/text()`
	SymbolXPath    = `td[3]/a/text()`
	YTDReturnXPath = `td[4]/text()`
)

// Options configures a Spider. Zero fields take the package defaults.
type Options struct {
	StartURL       string
	AllowedDomains []string
	UserAgent      string
	Timeout        time.Duration
}

func (o Options) withDefaults() Options {
	if o.StartURL == "" {
		o.StartURL = DefaultStartURL
	}
	if len(o.AllowedDomains) == 0 {
		o.AllowedDomains = []string{DefaultDomain, "www." + DefaultDomain}
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Sink receives scraped rows in document order.
type Sink interface {
	RecordRanking(row *model.RankingRow) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(row *model.RankingRow) error

func (f SinkFunc) RecordRanking(row *model.RankingRow) error { return f(row) }

// Spider fetches the start page once and emits one RankingRow per table row.
// It does not follow links.
type Spider struct {
	opts   Options
	logger *zap.Logger
}

// NewSpider creates a new Spider.
func NewSpider(opts Options, logger *zap.Logger) *Spider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Spider{opts: opts.withDefaults(), logger: logger}
}

// StartURL returns the page the spider visits.
func (s *Spider) StartURL() string { return s.opts.StartURL }

func (s *Spider) newCollector() *colly.Collector {
	c := colly.NewCollector(
		colly.AllowedDomains(s.opts.AllowedDomains...),
		colly.MaxDepth(1),
		colly.UserAgent(s.opts.UserAgent),
	)
	c.SetRequestTimeout(s.opts.Timeout)
	return c
}

// Crawl performs one request/parse cycle and writes every row to sink. It
// returns the number of rows written. A sink error stops further writes and
// is returned.
func (s *Spider) Crawl(ctx context.Context, sink Sink) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c := s.newCollector()
	count := 0
	var sinkErr error

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		s.logger.Debug("visiting", zap.String("url", r.URL.String()))
	})
	c.OnXML(RowXPath, func(e *colly.XMLElement) {
		if sinkErr != nil {
			return
		}
		node, ok := e.DOM.(*html.Node)
		if !ok {
			return
		}
		row := ParseRow(node)
		if err := sink.RecordRanking(row); err != nil {
			sinkErr = fmt.Errorf("record row %d: %w", count+1, err)
			return
		}
		count++
	})
	c.OnScraped(func(r *colly.Response) {
		s.logger.Info("scraping completed", zap.String("url", r.Request.URL.String()), zap.Int("rows", count))
	})

	if err := c.Visit(s.opts.StartURL); err != nil {
		return count, fmt.Errorf("visit %s: %w", s.opts.StartURL, err)
	}
	if err := ctx.Err(); err != nil {
		return count, err
	}
	if sinkErr != nil {
		return count, sinkErr
	}
	return count, nil
}

// Collect crawls once and returns the rows in document order.
func (s *Spider) Collect(ctx context.Context) ([]model.RankingRow, error) {
	var rows []model.RankingRow
	_, err := s.Crawl(ctx, SinkFunc(func(row *model.RankingRow) error {
		rows = append(rows, *row)
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ParseRow extracts the four cells of a table row. A cell whose path does not
// match is absent; matched text is kept as-is.
func ParseRow(tr *html.Node) *model.RankingRow {
	return &model.RankingRow{
		Number:    cellText(tr, NumberXPath),
		Company:   cellText(tr, CompanyXPath),
		Symbol:    cellText(tr, SymbolXPath),
		YTDReturn: cellText(tr, YTDReturnXPath),
	}
}

func cellText(tr *html.Node, expr string) null.String {
	n := htmlquery.FindOne(tr, expr)
	if n == nil {
		return null.String{}
	}
	return null.StringFrom(htmlquery.InnerText(n))
}
