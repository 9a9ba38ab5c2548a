package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hession/searchdl/internal/download"
	"github.com/hession/searchdl/internal/logger"
	"github.com/hession/searchdl/internal/metrics"
	"github.com/hession/searchdl/internal/websearch"
)

// PathResolver maps a result URL to a local file path.
type PathResolver interface {
	Resolve(ctx context.Context, rawURL, destRoot string, keepDirs bool) (string, error)
}

// Fetcher downloads one URL to one local path.
type Fetcher interface {
	Download(ctx context.Context, rawURL, path string) (int64, error)
}

// Options are the user inputs of a run.
type Options struct {
	Words            []string
	FileTypes        []string
	Site             string
	DestDir          string
	ForceDirectories bool
	ResultsPerPage   int
	MaxResults       int
}

// Summary counts what a run did.
type Summary struct {
	Pages      int
	Results    int
	Downloaded int
	Skipped    int
	Failed     int
	Bytes      int64
}

// Runner searches, then downloads every result in discovery order.
type Runner struct {
	provider websearch.Provider
	resolver PathResolver
	fetcher  Fetcher
	recorder metrics.Recorder
	out      io.Writer
	opts     Options
}

// NewRunner wires a run. out receives the progress messages.
func NewRunner(provider websearch.Provider, resolver PathResolver, fetcher Fetcher, recorder metrics.Recorder, out io.Writer, opts Options) *Runner {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if out == nil {
		out = io.Discard
	}
	if opts.DestDir == "" {
		opts.DestDir = "."
	}
	return &Runner{
		provider: provider,
		resolver: resolver,
		fetcher:  fetcher,
		recorder: recorder,
		out:      out,
		opts:     opts,
	}
}

// Run executes the search and the downloads.
//
// Per-file transport failures are reported and skipped. The run stops early
// on a *websearch.SearchError, a *download.FilesystemError, or when ctx is
// cancelled, and returns that error along with what was done so far.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	query := websearch.BuildQuery(r.opts.Words, r.opts.FileTypes, r.opts.Site)
	fmt.Fprintln(r.out, query)
	logger.Info("Searching %s for %q (page size %d, max %d)", r.provider.Name(), query, r.opts.ResultsPerPage, r.opts.MaxResults)

	src := websearch.NewSource(r.provider, query, r.opts.ResultsPerPage, r.opts.MaxResults)
	for src.Next(ctx) {
		page := src.Page()
		summary.Pages++
		summary.Results += len(page)
		r.recorder.PageFetched(len(page))

		first := (src.Index()-1)*src.PageSize() + 1
		last := first + len(page) - 1
		fmt.Fprintf(r.out, "Trying to download results from page #%d (results %d-%d)\n", src.Index(), first, last)
		logger.Debug("Page %d: %d results, state %s", src.Index(), len(page), src.State())

		for _, res := range page {
			if err := r.handle(ctx, res.URL, &summary); err != nil {
				return summary, err
			}
		}
		fmt.Fprintln(r.out)
	}

	if err := src.Err(); err != nil {
		return summary, err
	}
	logger.Info("Run finished: %d pages, %d results, %d downloaded, %d skipped, %d failed",
		summary.Pages, summary.Results, summary.Downloaded, summary.Skipped, summary.Failed)
	return summary, nil
}

// handle resolves, checks and downloads one result. Only errors that must
// end the run are returned.
func (r *Runner) handle(ctx context.Context, rawURL string, summary *Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := r.resolver.Resolve(ctx, rawURL, r.opts.DestDir, r.opts.ForceDirectories)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprintf(r.out, "Error: %v, skipping.\n", err)
		logger.Warn("Cannot resolve %s: %v", rawURL, err)
		summary.Failed++
		r.recorder.Download(metrics.OutcomeFailed, 0)
		return nil
	}

	filename := filepath.Base(path)
	dir := filepath.Dir(path)
	fmt.Fprintf(r.out, "Downloading '%s' from '%s' into %s...\n", filename, rawURL, dir)

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(r.out, "File '%s' already exists, skipping.\n", path)
		logger.Debug("Skipping existing %s", path)
		summary.Skipped++
		r.recorder.Download(metrics.OutcomeSkipped, 0)
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &download.FilesystemError{Op: "mkdir", Path: dir, Err: err}
	}

	n, err := r.fetcher.Download(ctx, rawURL, path)
	if err == nil {
		logger.Info("Saved %s (%d bytes)", path, n)
		summary.Downloaded++
		summary.Bytes += n
		r.recorder.Download(metrics.OutcomeDownloaded, n)
		return nil
	}

	if download.IsFatal(err) {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	kind := "other"
	var tErr *download.TransportError
	if errors.As(err, &tErr) {
		kind = tErr.Kind.String()
	}
	fmt.Fprintf(r.out, "Error: %v.\n", err)
	logger.Warn("Download of %s failed (%s): %v", rawURL, kind, err)
	summary.Failed++
	r.recorder.TransportError(kind)
	r.recorder.Download(metrics.OutcomeFailed, 0)
	return nil
}
