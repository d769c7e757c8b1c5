package main

import (
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/housing-cli/internal/model"
)

type formatter func(out io.Writer, records []model.HousingRecord) error

var formatters = map[string]formatter{
	"table": formatTable,
	"json":  formatJSON,
	"yaml":  formatYAML,
}

func formatterFor(name string) (formatter, error) {
	f, ok := formatters[strings.ToLower(name)]
	if !ok {
		return nil, eris.Errorf("unknown output format %q (want %s)", name, formatNames())
	}
	return f, nil
}

func formatNames() string {
	names := make([]string, 0, len(formatters))
	for n := range formatters {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func formatTable(out io.Writer, records []model.HousingRecord) error {
	table := tablewriter.NewTable(out, tablewriter.WithHeaderAutoFormat(tw.Off))
	table.Header(append([]string{"ID"}, model.Columns...))
	for _, r := range records {
		row := make([]string, 0, 1+len(model.Columns))
		if r.ID != nil {
			row = append(row, strconv.FormatInt(*r.ID, 10))
		} else {
			row = append(row, "")
		}
		for _, v := range r.Fields() {
			if *v == nil {
				row = append(row, "NULL")
				continue
			}
			row = append(row, strconv.FormatFloat(**v, 'f', -1, 64))
		}
		if err := table.Append(row); err != nil {
			return eris.Wrap(err, "append table row")
		}
	}
	return eris.Wrap(table.Render(), "render table")
}

func formatJSON(out io.Writer, records []model.HousingRecord) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if records == nil {
		records = []model.HousingRecord{}
	}
	return enc.Encode(records)
}

func formatYAML(out io.Writer, records []model.HousingRecord) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return eris.Wrap(err, "encode yaml")
	}
	return enc.Close()
}
