package model

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"
)

// KeyID is the reserved key holding the store assigned id of a record.
const KeyID = "id"

// Record is a single race entry. Besides the declared fields a record may
// carry arbitrary extra keys. Values are plain JSON values
// (string, int64, float64, bool, nil, map[string]any, []any).
type Record map[string]any

// NewRecord returns a record with every declared field set to nil.
func NewRecord() Record {
	ret := make(Record, len(Fields))
	for _, f := range Fields {
		ret[f.Key] = nil
	}
	return ret
}

// ID returns the id of the record. ok is false if the record has no id or
// the id is not an integral number.
func (r Record) ID() (id int, ok bool) {
	switch v := r[KeyID].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
	}
	return 0, false
}

// IsEmpty reports whether r is the "not found" sentinel.
func (r Record) IsEmpty() bool {
	return len(r) == 0
}

// Clone returns a shallow copy of r. Nested values are shared.
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	return maps.Clone(r)
}

// floatKeys are the declared fields holding fractional numbers.
var floatKeys = []string{KeyTime}

// RestoreFloats turns whole numbers in declared float fields back into
// float64, since JSON does not tell 1000.0 from 1000.
func (r Record) RestoreFloats() {
	for _, k := range floatKeys {
		if v, ok := r[k].(int64); ok {
			r[k] = float64(v)
		}
	}
}

// String returns the value of key as string, nil values become "".
func (r Record) String(key string) string {
	return stringify(r[key])
}

// SearchText joins the lowercase string form of all values (keys in sorted
// order) with a single space.
func (r Record) SearchText() string {
	keys := lo.Keys(r)
	slices.Sort(keys)
	parts := lo.Map(keys, func(k string, _ int) string {
		return stringify(r[k])
	})
	return strings.ToLower(strings.Join(parts, " "))
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}
