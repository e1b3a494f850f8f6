// Package headless implements the round source against the live results
// page using chromedp. The page builds its table client-side, so a plain
// HTTP fetch never sees the filtered row; a real browser session types the
// filter term and waits for the re-render.
package headless

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"github.com/lmoretti/rounds-watcher/internal/round"
)

// Config controls the behavior of the headless source.
type Config struct {
	TargetURL      string
	FilterTerm     string
	FilterSelector string
	TableSelector  string
	RowSelector    string
	UserAgent      string
	SettleDelay    time.Duration
}

func (c *Config) applyDefaults() {
	if c.FilterTerm == "" {
		c.FilterTerm = "Healthcare"
	}
	if c.FilterSelector == "" {
		c.FilterSelector = `input[type="search"]`
	}
	if c.TableSelector == "" {
		c.TableSelector = "table"
	}
	if c.RowSelector == "" {
		c.RowSelector = "tbody tr"
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 500 * time.Millisecond
	}
}

// Source implements round.Source using chromedp and headless Chrome.
type Source struct {
	cfg         Config
	allocator   context.Context
	allocCancel context.CancelFunc
}

// New creates a headless source backed by chromedp.
func New(cfg Config) (*Source, error) {
	if strings.TrimSpace(cfg.TargetURL) == "" {
		return nil, fmt.Errorf("target url is required")
	}
	cfg.applyDefaults()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Source{
		cfg:         cfg,
		allocator:   allocCtx,
		allocCancel: allocCancel,
	}, nil
}

// Close cancels the allocator context.
func (s *Source) Close() {
	s.allocCancel()
}

// Fetch runs one end-to-end attempt: open a fresh browser tab, navigate,
// enter the filter term, wait for the table to re-render, and extract the
// first result row. The tab is torn down before returning on every path,
// so no session outlives its attempt.
func (s *Source) Fetch(ctx context.Context) (round.Entry, error) {
	taskCtx, taskCancel := chromedp.NewContext(s.allocator)
	defer taskCancel()

	// Bind the tab's lifetime to the attempt context so the caller's
	// per-attempt timeout tears the session down.
	stop := context.AfterFunc(ctx, taskCancel)
	defer stop()

	tableHTML, err := s.renderFilteredTable(taskCtx)
	if err != nil {
		if ctx.Err() != nil {
			return round.Entry{}, fmt.Errorf("attempt timed out: %w", ctx.Err())
		}
		return round.Entry{}, err
	}

	entry, err := ParseFirstRow(tableHTML)
	if err != nil {
		return round.Entry{}, err
	}
	return entry, nil
}

func (s *Source) renderFilteredTable(ctx context.Context) (string, error) {
	var tableHTML string
	actions := []chromedp.Action{
		s.userAgentAction(),
		chromedp.Navigate(s.cfg.TargetURL),
		chromedp.WaitVisible(s.cfg.FilterSelector, chromedp.ByQuery),
		chromedp.Clear(s.cfg.FilterSelector, chromedp.ByQuery),
		chromedp.SendKeys(s.cfg.FilterSelector, s.cfg.FilterTerm, chromedp.ByQuery),
		chromedp.Sleep(s.cfg.SettleDelay),
		chromedp.WaitVisible(s.cfg.RowSelector, chromedp.ByQuery),
		chromedp.OuterHTML(s.cfg.TableSelector, &tableHTML, chromedp.ByQuery),
	}
	if err := chromedp.Run(ctx, actions...); err != nil {
		return "", fmt.Errorf("chromedp run: %w", err)
	}
	return tableHTML, nil
}

func (s *Source) userAgentAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if s.cfg.UserAgent == "" {
			return nil
		}
		if err := emulation.SetUserAgentOverride(s.cfg.UserAgent).Do(ctx); err != nil {
			return fmt.Errorf("set user-agent: %w", err)
		}
		return nil
	})
}
