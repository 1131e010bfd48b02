// Package render writes race records in human readable form.
package render

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"

	"github.com/mpapenbr/racedb/pkg/model"
)

// TableKeys are the columns printed by Table.
var TableKeys = []string{model.KeyID, model.KeyDate, model.KeyName, model.KeyCity, model.KeyState}

// Table writes a tab separated table with a header line.
func Table(w io.Writer, races []model.Record) error {
	var sb strings.Builder
	sb.WriteString(strings.Join(TableKeys, "\t"))
	sb.WriteString("\n")
	for _, r := range races {
		cols := lo.Map(TableKeys, func(k string, _ int) string { return r.String(k) })
		sb.WriteString(strings.Join(cols, "\t"))
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// Race writes one "key: value" line per declared field followed by the
// derived pace and any additional keys of the record (sorted by name).
func Race(w io.Writer, r model.Record) error {
	var sb strings.Builder
	for _, k := range model.FieldKeys() {
		fmt.Fprintf(&sb, "%s: %s\n", k, Value(k, r[k]))
	}
	if race, err := model.RaceFromRecord(r); err == nil {
		if pace, ok := race.Pace().Get(); ok {
			fmt.Fprintf(&sb, "pace: %s min/km\n", model.FormatTime(pace))
		}
	}
	extra := lo.Filter(lo.Keys(r), func(k string, _ int) bool {
		_, declared := model.FieldByKey(k)
		return !declared && k != model.KeyID
	})
	slices.Sort(extra)
	for _, k := range extra {
		fmt.Fprintf(&sb, "%s: %s\n", k, Value(k, r[k]))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// Value formats a single field value. Times are shown as MM:SS.
func Value(key string, v any) string {
	if v == nil {
		return ""
	}
	if key == model.KeyTime {
		if secs, err := cast.ToFloat64E(v); err == nil {
			return model.FormatTime(secs)
		}
	}
	return model.Record{key: v}.String(key)
}
