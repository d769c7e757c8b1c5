// Package audit appends executed SQL statements to a Markdown log.
package audit

import (
	"os"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
)

// Log is an append-only Markdown file of fenced SQL blocks.
type Log struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

// New returns a Log writing to path on fs. A nil fs means the OS filesystem.
func New(fs afero.Fs, path string) *Log {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Log{fs: fs, path: path}
}

// Path returns the log file location.
func (l *Log) Path() string {
	return l.path
}

// Append writes stmt as a fenced sql block followed by a blank line. The file
// is created on first use.
func (l *Log) Append(stmt string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.fs.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrapf(err, "audit: open %s", l.path)
	}

	_, err = f.WriteString(Format(stmt))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return eris.Wrapf(err, "audit: append to %s", l.path)
}

// Format renders one log entry.
func Format(stmt string) string {
	var b strings.Builder
	b.WriteString("```sql\n")
	b.WriteString(stmt)
	b.WriteString("\n```\n\n")
	return b.String()
}
