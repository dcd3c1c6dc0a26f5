// Package scraper fetches and parses gosurf.co.il. The site has no stable
// machine-readable contract. A missing cell degrades to the N/A sentinel;
// a structurally absent container is escalated as a parse error because it
// means the scraping rules are stale.
package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/itamarw/gosurf-bot/internal/bot"
	"github.com/itamarw/gosurf-bot/internal/metrics"
)

// targetHours are the hour labels kept from each day's forecast table.
var targetHours = []string{"06", "09", "12"}

// Config controls collector behavior.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Scraper implements bot.Forecaster against the gosurf site.
type Scraper struct {
	cfg    Config
	base   *colly.Collector
	logger *zap.Logger
}

// New builds a Scraper. The base collector is cloned per call so collectors
// never share callback state.
func New(cfg Config, logger *zap.Logger) *Scraper {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	metrics.Init()
	return &Scraper{
		cfg:    cfg,
		base:   colly.NewCollector(colly.Async(false), colly.IgnoreRobotsTxt()),
		logger: logger,
	}
}

// ListBeaches scrapes the spot directory page into a deduplicated beach
// list, first occurrence winning and page order preserved.
func (s *Scraper) ListBeaches(ctx context.Context) ([]bot.Beach, error) {
	var (
		beaches        []bot.Beach
		seen           = map[string]bool{}
		containerFound bool
		fetchErr       error
	)

	collector := s.collector(&fetchErr)
	collector.OnHTML("div.fw.spots_a", func(e *colly.HTMLElement) {
		containerFound = true
		e.ForEach("a[href]", func(_ int, link *colly.HTMLElement) {
			slug := slugFromHref(link.Attr("href"))
			if slug == "" || seen[slug] {
				return
			}
			seen[slug] = true
			beaches = append(beaches, bot.Beach{
				Slug: slug,
				Name: strings.TrimSpace(link.Text),
			})
		})
	})

	url := s.cfg.BaseURL + "/surf-spots"
	start := time.Now()
	s.logger.Info("fetching beach list", zap.String("url", url))
	if err := s.visit(ctx, collector, url, &fetchErr); err != nil {
		metrics.ObserveScrape("spots", "fetch_error", time.Since(start))
		return nil, fmt.Errorf("%w: %s: %v", bot.ErrFetch, url, err)
	}
	if !containerFound {
		metrics.ObserveScrape("spots", "parse_error", time.Since(start))
		return nil, fmt.Errorf("%w: spot list container missing at %s", bot.ErrParse, url)
	}
	metrics.ObserveScrape("spots", "ok", time.Since(start))
	return beaches, nil
}

// Forecast scrapes the per-beach forecast page. Only rows for the target
// hours are kept; a day with no qualifying rows is dropped entirely.
func (s *Scraper) Forecast(ctx context.Context, slug string) ([]bot.ForecastDay, error) {
	if slug == "" {
		return nil, fmt.Errorf("%w: empty beach slug", bot.ErrInvalidArgument)
	}

	var (
		days     []bot.ForecastDay
		sawDay   bool
		fetchErr error
	)

	collector := s.collector(&fetchErr)
	collector.OnHTML("div.day.fw", func(e *colly.HTMLElement) {
		sawDay = true
		day := bot.ForecastDay{DayName: "Unknown Day"}
		if name := strings.TrimSpace(e.ChildText("h2")); name != "" {
			day.DayName = name
		}
		e.ForEach("tr.chart_tr", func(_ int, row *colly.HTMLElement) {
			hour := strings.TrimSpace(row.ChildText("td.hour_cont"))
			if !isTargetHour(hour) {
				return
			}
			day.Hours = append(day.Hours, bot.HourlyReading{
				Time:           hour,
				WaveHeight:     cellText(row.DOM, "td.waves"),
				SeaDescription: cellText(row.DOM, "td.wave_height_desc"),
				WindSpeed:      cellText(row.DOM, "td.wind"),
				WindDirection:  cellText(row.DOM, "td.wind_dir_desc"),
			})
		})
		if len(day.Hours) > 0 {
			days = append(days, day)
		}
	})

	url := fmt.Sprintf("%s/forecast/%s", s.cfg.BaseURL, slug)
	start := time.Now()
	s.logger.Info("fetching forecast", zap.String("slug", slug), zap.String("url", url))
	if err := s.visit(ctx, collector, url, &fetchErr); err != nil {
		metrics.ObserveScrape("forecast", "fetch_error", time.Since(start))
		return nil, fmt.Errorf("%w: %s: %v", bot.ErrFetch, url, err)
	}
	if !sawDay {
		metrics.ObserveScrape("forecast", "parse_error", time.Since(start))
		return nil, fmt.Errorf("%w: no day containers at %s", bot.ErrParse, url)
	}
	metrics.ObserveScrape("forecast", "ok", time.Since(start))
	return days, nil
}

func (s *Scraper) collector(fetchErr *error) *colly.Collector {
	collector := s.base.Clone()
	if s.cfg.UserAgent != "" {
		collector.UserAgent = s.cfg.UserAgent
	}
	collector.SetRequestTimeout(s.cfg.Timeout)
	collector.OnError(func(_ *colly.Response, err error) {
		*fetchErr = err
	})
	return collector
}

// visit runs the collector in a goroutine so a canceled context stops the
// wait even though colly itself does not take a context.
func (s *Scraper) visit(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return err
		}
		if *fetchErr != nil {
			return *fetchErr
		}
		return nil
	}
}

// slugFromHref extracts the trailing path segment of a forecast link, or ""
// for links that are not forecast links.
func slugFromHref(href string) string {
	const marker = "/forecast/"
	idx := strings.Index(href, marker)
	if idx < 0 {
		return ""
	}
	return strings.Trim(href[idx+len(marker):], "/")
}

func isTargetHour(hour string) bool {
	for _, target := range targetHours {
		if hour == target {
			return true
		}
	}
	return false
}

// cellText reads one cell, distinguishing an absent cell (sentinel) from a
// present one.
func cellText(row *goquery.Selection, selector string) string {
	cell := row.Find(selector)
	if cell.Length() == 0 {
		return bot.NotAvailable
	}
	return strings.TrimSpace(cell.Text())
}
