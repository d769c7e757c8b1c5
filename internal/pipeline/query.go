package pipeline

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/housing-cli/internal/audit"
	"github.com/sells-group/housing-cli/internal/model"
	"github.com/sells-group/housing-cli/internal/store"
)

// QueryResult reports what a statement did.
type QueryResult struct {
	Select   bool
	Rows     int
	Affected int64
}

// IsSelect reports whether stmt reads rather than writes.
func IsSelect(stmt string) bool {
	s := strings.TrimSpace(stmt)
	return len(s) >= 6 && strings.EqualFold(s[:6], "select")
}

// Query runs stmt against st. Selects print one "Result:" line per row to
// out; anything else is executed and its affected row count returned. The
// statement is run and appended to the audit log exactly as given, once it
// has run successfully. A failed audit write is logged and does not fail the
// query.
func Query(ctx context.Context, st store.Store, log *audit.Log, stmt string, out io.Writer) (*QueryResult, error) {
	if strings.TrimSpace(stmt) == "" {
		return nil, eris.New("pipeline: empty query")
	}

	res := &QueryResult{Select: IsSelect(stmt)}
	if res.Select {
		recs, err := st.QueryRecords(ctx, stmt)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: query")
		}
		for _, r := range recs {
			if _, err := fmt.Fprintln(out, FormatResult(r)); err != nil {
				return nil, eris.Wrap(err, "pipeline: write result")
			}
		}
		res.Rows = len(recs)
	} else {
		n, err := st.Exec(ctx, stmt)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: exec")
		}
		res.Affected = n
	}

	if log != nil {
		if err := log.Append(stmt); err != nil {
			zap.L().Warn("pipeline: audit log write failed", zap.String("path", log.Path()), zap.Error(err))
		}
	}
	return res, nil
}

// FormatResult renders a row as "Result: id=1, medinc=3.5, ...".
func FormatResult(r model.HousingRecord) string {
	var b strings.Builder
	b.WriteString("Result: id=")
	if r.ID != nil {
		b.WriteString(strconv.FormatInt(*r.ID, 10))
	} else {
		b.WriteString("NULL")
	}
	for i, v := range r.Fields() {
		b.WriteString(", ")
		b.WriteString(strings.ToLower(model.Columns[i]))
		b.WriteByte('=')
		b.WriteString(formatFloat(*v))
	}
	return b.String()
}

func formatFloat(v *float64) string {
	if v == nil {
		return "NULL"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
