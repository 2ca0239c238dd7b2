// Package pipeline drives one conversion: discover chapters on the start
// page, fetch and extract each chapter sequentially, then assemble the EPUB.
// The session owns the chapter collection for its whole lifetime.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/calegray/novelbind/internal/discover"
	"github.com/calegray/novelbind/internal/epub"
	"github.com/calegray/novelbind/internal/extract"
	"github.com/calegray/novelbind/internal/fetch"
	"github.com/calegray/novelbind/internal/novel"
	"github.com/calegray/novelbind/internal/rules"
)

// ProgressFunc receives a monotonically non-decreasing percentage and a
// status line. It must be cheap; the pipeline calls it inline.
type ProgressFunc func(pct int, msg string)

type logger interface {
	Debugf(string, ...any)
	Infof(string, ...any)
	Errorf(string, ...any)
}

// Options configures a Session. Fetcher is the bare transport capability;
// the session layers its own retry policy on top of it.
type Options struct {
	Rules     *rules.Registry
	Fetcher   fetch.Fetcher
	Extractor *extract.Extractor
	Attempts  int
	Backoff   time.Duration
	Log       logger
	Progress  ProgressFunc
	Override  novel.Metadata
}

// Session is a single conversion in flight.
type Session struct {
	opts     Options
	rs       rules.RuleSet
	meta     novel.Metadata
	chapters []*novel.Chapter
	bytes    int64
	lastPct  int
}

// Result summarizes a finished conversion.
type Result struct {
	Meta      novel.Metadata
	Chapters  []*novel.Chapter
	Completed int
	Failed    int
	Bytes     int64
}

// New prepares a session. Zero options get the package defaults.
func New(opts Options) *Session {
	if opts.Rules == nil {
		opts.Rules = rules.NewRegistry()
	}
	if opts.Extractor == nil {
		opts.Extractor = extract.New()
	}
	if opts.Attempts < 1 {
		opts.Attempts = fetch.DefaultAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = fetch.DefaultBackoff
	}
	return &Session{opts: opts}
}

// Meta returns the merged book metadata. Valid after Discover.
func (s *Session) Meta() novel.Metadata { return s.meta }

// Chapters returns the session's chapter records, in final order.
func (s *Session) Chapters() []*novel.Chapter { return s.chapters }

// Bytes returns how much raw document data has been fetched so far.
func (s *Session) Bytes() int64 { return s.bytes }

// report never regresses the percentage and never propagates anything.
func (s *Session) report(pct int, msg string) {
	if s.opts.Progress == nil {
		return
	}
	if pct < s.lastPct {
		pct = s.lastPct
	}
	if pct > 100 {
		pct = 100
	}
	s.lastPct = pct
	s.opts.Progress(pct, msg)
}

func parseStartURL(raw string) (*url.URL, error) {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid start URL %q: need an absolute http(s) URL", raw)
	}
	return u, nil
}

// Discover fetches the start page, extracts book metadata and builds the
// ordered chapter list. A start page with no discoverable chapters fails the
// conversion; there is nothing to retry.
func (s *Session) Discover(ctx context.Context, startURL string) error {
	u, err := parseStartURL(startURL)
	if err != nil {
		return err
	}

	s.report(0, "Fetching start page")

	f := fetch.WithRetry(s.opts.Fetcher, s.opts.Attempts, s.opts.Backoff)
	data, err := f.Fetch(ctx, u.String())
	if err != nil {
		return fmt.Errorf("start page: %w", err)
	}
	s.bytes += int64(len(data))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("start page: %w", err)
	}

	s.rs = s.opts.Rules.RulesFor(u.Hostname())

	s.chapters, err = discover.Discover(doc, u, s.rs)
	if err != nil {
		return err
	}

	s.meta = discover.ExtractMetadata(doc, u, s.rs)
	s.meta.Merge(s.opts.Override)
	s.meta.ApplyDefaults()

	s.report(5, fmt.Sprintf("Found %d chapters", len(s.chapters)))
	return nil
}

// FetchAll processes included chapters one at a time, in list order. Each
// chapter gets its own fetch-and-extract retry budget; exhausting it settles
// the chapter at error and the batch moves on. Cancellation is honored
// between chapters so a mid-flight chapter settles naturally.
func (s *Session) FetchAll(ctx context.Context) (completed, failed int, err error) {
	total := 0
	for _, ch := range s.chapters {
		if ch.Include {
			total++
		}
	}

	settled := 0
	for _, ch := range s.chapters {
		if !ch.Include {
			continue
		}
		if err := ctx.Err(); err != nil {
			return completed, failed, err
		}

		s.report(10+80*settled/max(total, 1), fmt.Sprintf("Chapter %d/%d: %s", settled+1, total, ch.Title))

		if s.processChapter(ctx, ch) {
			completed++
		} else {
			failed++
			if s.opts.Log != nil {
				s.opts.Log.Errorf("chapter %q failed: %s\n", ch.Title, ch.Err)
			}
		}
		settled++
		s.report(10+80*settled/max(total, 1), fmt.Sprintf("Settled %d/%d chapters", settled, total))
	}

	return completed, failed, nil
}

// processChapter runs the pending → loading → (completed|error) transition,
// repeating it up to the retry ceiling before settling.
func (s *Session) processChapter(ctx context.Context, ch *novel.Chapter) bool {
	var lastErr error

	for attempt := 1; attempt <= s.opts.Attempts; attempt++ {
		ch.Status = novel.StatusLoading

		body, n, err := s.fetchAndExtract(ctx, ch)
		if err == nil {
			ch.Body = body
			ch.Err = ""
			ch.Status = novel.StatusCompleted
			s.bytes += n
			return true
		}
		lastErr = err
		s.bytes += n

		if s.opts.Log != nil {
			s.opts.Log.Debugf("chapter %q attempt %d/%d: %v\n", ch.Title, attempt, s.opts.Attempts, err)
		}

		if attempt == s.opts.Attempts {
			break
		}
		ch.Status = novel.StatusPending
		select {
		case <-ctx.Done():
			ch.Status = novel.StatusError
			ch.Err = ctx.Err().Error()
			return false
		case <-time.After(time.Duration(attempt) * s.opts.Backoff):
		}
	}

	ch.Status = novel.StatusError
	ch.Err = lastErr.Error()
	return false
}

func (s *Session) fetchAndExtract(ctx context.Context, ch *novel.Chapter) (string, int64, error) {
	data, err := s.opts.Fetcher.Fetch(ctx, ch.URL)
	if err != nil {
		return "", 0, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", int64(len(data)), err
	}

	body, err := s.opts.Extractor.Extract(doc, ch, s.rs)
	if err != nil {
		return "", int64(len(data)), err
	}

	return body, int64(len(data)), nil
}

// Assemble writes the container to w from whatever chapters completed.
func (s *Session) Assemble(ctx context.Context, w io.Writer) error {
	s.report(90, "Assembling EPUB")

	builder := epub.NewBuilder(
		fetch.WithRetry(s.opts.Fetcher, s.opts.Attempts, s.opts.Backoff),
		s.opts.Log,
	)
	if err := builder.Assemble(ctx, w, s.meta, s.chapters); err != nil {
		return err
	}

	s.report(100, "Done")
	return nil
}

// Run executes the full conversion. Per-chapter failures do not abort it;
// whole-conversion failures (no chapters, nothing to package) do.
func (s *Session) Run(ctx context.Context, startURL string, w io.Writer) (*Result, error) {
	if err := s.Discover(ctx, startURL); err != nil {
		return nil, err
	}

	completed, failed, err := s.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.Assemble(ctx, w); err != nil {
		return nil, err
	}

	return &Result{
		Meta:      s.meta,
		Chapters:  s.chapters,
		Completed: completed,
		Failed:    failed,
		Bytes:     s.bytes,
	}, nil
}
