// Package fetcher downloads the source dataset over HTTP or FTP.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// Options are the settings shared by every fetcher ForURL can build.
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	// RateLimit is the per-host request rate for HTTP sources, per second.
	RateLimit float64
	Fs        afero.Fs
}

// ForURL returns a fetcher for the URL's scheme.
func ForURL(rawURL string, opts Options) (Fetcher, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: parse url")
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return NewHTTPFetcher(HTTPOptions{
			UserAgent:  opts.UserAgent,
			Timeout:    opts.Timeout,
			MaxRetries: opts.MaxRetries,
			RateLimit:  opts.RateLimit,
			Fs:         opts.Fs,
		}), nil
	case "ftp":
		return NewFTPFetcher(FTPOptions{
			Timeout: opts.Timeout,
			Fs:      opts.Fs,
		}), nil
	case "":
		return nil, eris.Errorf("fetcher: url %q has no scheme", rawURL)
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme %q", u.Scheme)
	}
}

// writeFile copies body into path on fs. A partially written file is removed.
func writeFile(fs afero.Fs, path string, body io.Reader) (int64, error) {
	file, err := fs.Create(path)
	if err != nil {
		return 0, eris.Wrap(err, "create file")
	}

	n, err := io.Copy(file, body)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = fs.Remove(path)
		return n, eris.Wrap(err, "write file")
	}
	return n, nil
}
