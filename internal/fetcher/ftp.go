package fetcher

import (
	"context"
	"io"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	defaultFTPPort = "21"
	anonymousUser  = "anonymous"
	anonymousPass  = "anonymous@"
)

// FTPOptions configures the FTP fetcher.
type FTPOptions struct {
	Timeout time.Duration
	Fs      afero.Fs
}

// FTPFetcher retrieves a single file per call over FTP. Credentials come
// from the URL; without them the login is anonymous.
type FTPFetcher struct {
	opts FTPOptions
}

func NewFTPFetcher(opts FTPOptions) *FTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	return &FTPFetcher{opts: opts}
}

// ftpTarget is a parsed ftp:// source.
type ftpTarget struct {
	addr string // host:port
	file string
	user string
	pass string
}

func parseFTPTarget(rawURL string) (ftpTarget, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ftpTarget{}, eris.Wrap(err, "ftp: parse url")
	}
	if !strings.EqualFold(u.Scheme, "ftp") {
		return ftpTarget{}, eris.Errorf("ftp: scheme %q is not ftp", u.Scheme)
	}
	if u.Host == "" {
		return ftpTarget{}, eris.Errorf("ftp: %q has no host", rawURL)
	}
	if u.Path == "" || strings.HasSuffix(u.Path, "/") {
		return ftpTarget{}, eris.Errorf("ftp: %q does not name a file", rawURL)
	}

	t := ftpTarget{
		addr: u.Host,
		file: u.Path,
		user: anonymousUser,
		pass: anonymousPass,
	}
	if u.Port() == "" {
		t.addr = net.JoinHostPort(u.Hostname(), defaultFTPPort)
	}
	if u.User != nil && u.User.Username() != "" {
		t.user = u.User.Username()
		t.pass, _ = u.User.Password()
	}
	return t, nil
}

// ftpBody ties the data transfer to its control connection so one Close
// releases both.
type ftpBody struct {
	*ftp.Response
	conn *ftp.ServerConn
}

func (b *ftpBody) Close() error {
	err := b.Response.Close()
	if qerr := b.conn.Quit(); err == nil && qerr != nil {
		return eris.Wrap(qerr, "ftp: quit")
	}
	return eris.Wrap(err, "ftp: close transfer")
}

// Download logs in and starts retrieving the file. The caller closes the
// body, which also ends the session.
func (f *FTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	t, err := parseFTPTarget(rawURL)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("ftp: retrieving",
		zap.String("addr", t.addr),
		zap.String("file", t.file),
		zap.Bool("anonymous", t.user == anonymousUser),
	)

	conn, err := ftp.Dial(t.addr, ftp.DialWithTimeout(f.opts.Timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrapf(err, "ftp: dial %s", t.addr)
	}
	if err := conn.Login(t.user, t.pass); err != nil {
		_ = conn.Quit()
		return nil, eris.Wrapf(err, "ftp: login as %s", t.user)
	}

	resp, err := conn.Retr(t.file)
	if err != nil {
		_ = conn.Quit()
		return nil, eris.Wrapf(err, "ftp: retr %s", t.file)
	}
	return &ftpBody{Response: resp, conn: conn}, nil
}

func (f *FTPFetcher) DownloadToFile(ctx context.Context, rawURL string, path string) (int64, error) {
	body, err := f.Download(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer body.Close() //nolint:errcheck

	return writeFile(f.opts.Fs, path, body)
}
