// Package pipeline implements the extract, transform-load and query stages.
package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/sells-group/housing-cli/internal/fetcher"
)

// ExtractConfig says where the dataset comes from and where it lands.
type ExtractConfig struct {
	URL  string
	Dir  string
	File string
}

// ExtractResult describes a completed download.
type ExtractResult struct {
	Path     string
	Bytes    int64
	Duration time.Duration
}

// Extract downloads cfg.URL to cfg.File, creating cfg.Dir and the file's
// parent directory first. An existing file is overwritten.
func Extract(ctx context.Context, fs afero.Fs, f fetcher.Fetcher, cfg ExtractConfig) (*ExtractResult, error) {
	if cfg.URL == "" {
		return nil, eris.New("pipeline: no source url configured (use --url or source.url)")
	}
	if cfg.File == "" {
		return nil, eris.New("pipeline: no destination file configured")
	}

	for _, dir := range []string{cfg.Dir, filepath.Dir(cfg.File)} {
		if dir == "" || dir == "." {
			continue
		}
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "pipeline: create directory %s", dir)
		}
	}

	log := zap.L().With(zap.String("url", cfg.URL), zap.String("path", cfg.File))
	log.Info("pipeline: extracting dataset")

	start := time.Now()
	n, err := f.DownloadToFile(ctx, cfg.URL, cfg.File)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: extract")
	}

	res := &ExtractResult{Path: cfg.File, Bytes: n, Duration: time.Since(start)}
	log.Info("pipeline: extract complete",
		zap.String("size", humanize.Bytes(uint64(n))),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}
