// Package loader decodes housing CSV files into records.
package loader

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/sells-group/housing-cli/internal/model"
)

// Policy decides what happens to a row that cannot be decoded.
type Policy int

const (
	// Strict aborts on the first bad row.
	Strict Policy = iota
	// Lenient skips bad rows and counts them.
	Lenient
)

func (p Policy) String() string {
	if p == Lenient {
		return "lenient"
	}
	return "strict"
}

// Result is the outcome of decoding one CSV stream.
type Result struct {
	Records []model.HousingRecord
	Skipped int
}

// LoadFile opens path on fs and decodes it.
func LoadFile(fs afero.Fs, path string, policy Policy) (Result, error) {
	f, err := fs.Open(path)
	if err != nil {
		return Result{}, eris.Wrapf(err, "loader: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	res, err := Decode(f, policy)
	if err != nil {
		return res, eris.Wrapf(err, "loader: %s", path)
	}
	zap.L().Debug("loader: decoded file",
		zap.String("path", path),
		zap.Int("records", len(res.Records)),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

// Decode reads a header row followed by data rows. Columns are matched by
// name, case-insensitively and in any order; unknown columns such as an id
// are ignored.
func Decode(r io.Reader, policy Policy) (Result, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return Result{}, eris.New("loader: empty input, expected a header row")
	}
	if err != nil {
		return Result{}, eris.Wrap(err, "loader: read header")
	}
	header, err = canonicalHeader(header)
	if err != nil {
		return Result{}, err
	}

	dec, err := csvutil.NewDecoder(cr, header...)
	if err != nil {
		return Result{}, eris.Wrap(err, "loader: create decoder")
	}

	var res Result
	for {
		var rec model.HousingRecord
		err := dec.Decode(&rec)
		if err == io.EOF {
			break
		}
		if err == nil {
			err = rec.Validate()
		}
		if err == nil {
			res.Records = append(res.Records, rec)
			continue
		}

		line := lineOf(cr, err)
		if policy == Strict {
			return res, eris.Wrapf(err, "loader: line %d", line)
		}
		res.Skipped++
		zap.L().Warn("loader: skipping row",
			zap.Int("line", line),
			zap.String("reason", err.Error()),
		)
	}
	return res, nil
}

// canonicalHeader rewrites known column names to their canonical spelling and
// fails when any measurement column is absent.
func canonicalHeader(header []string) ([]string, error) {
	out := make([]string, len(header))
	seen := make([]bool, len(model.Columns))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		idx := model.ColumnIndex(h)
		if idx < 0 {
			out[i] = strings.TrimSpace(h)
			continue
		}
		out[i] = model.Columns[idx]
		seen[idx] = true
	}

	var missing []string
	for i, ok := range seen {
		if !ok {
			missing = append(missing, model.Columns[i])
		}
	}
	if len(missing) > 0 {
		return nil, eris.Errorf("loader: header missing columns: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

func lineOf(cr *csv.Reader, err error) int {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return perr.Line
	}
	line, _ := cr.FieldPos(0)
	return line
}
