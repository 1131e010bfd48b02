package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// declared field keys
const (
	KeyName          = "name"
	KeyDate          = "date"
	KeyCity          = "city"
	KeyState         = "state"
	KeyDistance      = "distance"
	KeyTime          = "time"
	KeyPlaceOverall  = "place_overall"
	KeyRunnersInRace = "runners_in_race"
	KeyPlaceAG       = "place_ag"
	KeyRunnersInAG   = "runners_in_ag"
	KeyResults       = "results"
	KeyNotes         = "notes"
)

const DateLayout = "2006-01-02"

var (
	ErrInvalidTime   = errors.New("invalid time")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidNumber = errors.New("invalid number")
)

// ParseFunc converts free text entered by the user into a field value.
type ParseFunc func(input string) (any, error)

type Field struct {
	Key    string
	Prompt string
	Parse  ParseFunc
}

// Fields lists the declared race fields in prompt order.
var Fields = []Field{
	{KeyName, "What was the name of the race?", parseString},
	{KeyDate, "What date (YYYY-mm-dd) was the race?", parseDateValue},
	{KeyCity, "What city was the race held in?", parseString},
	{KeyState, "What state was the race held in?", parseString},
	{KeyDistance, "How long was the race (in meters)?", parseIntValue},
	{KeyTime, "What was your time (MM:SS)?", parseTimeValue},
	{KeyPlaceOverall, "What was your overall place?", parseIntValue},
	{KeyRunnersInRace, "Out of how many runners?", parseIntValue},
	{KeyPlaceAG, "What was your age group place?", parseIntValue},
	{KeyRunnersInAG, "Out of how many runners in your age group?", parseIntValue},
	{KeyResults, "What is the url with results?", parseString},
	{KeyNotes, "Describe the race.", parseString},
}

func FieldKeys() []string {
	return lo.Map(Fields, func(f Field, _ int) string { return f.Key })
}

func FieldByKey(key string) (Field, bool) {
	return lo.Find(Fields, func(f Field) bool { return f.Key == key })
}

// ParseTime converts MM:SS into seconds. Minutes are not limited to 59,
// seconds may contain a fraction ("116:40" -> 7000, "4:05.5" -> 245.5).
func ParseTime(input string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(input), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q (expected MM:SS)", ErrInvalidTime, input)
	}
	minutes, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: minutes %q", ErrInvalidTime, parts[0])
	}
	seconds, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, fmt.Errorf("%w: seconds %q", ErrInvalidTime, parts[1])
	}
	return decimal.NewFromInt(minutes).
		Mul(decimal.NewFromInt(60)).
		Add(seconds).
		InexactFloat64(), nil
}

// FormatTime is the inverse of ParseTime (1000 -> "16:40").
func FormatTime(seconds float64) string {
	d := decimal.NewFromFloat(seconds)
	minutes := d.Div(decimal.NewFromInt(60)).Floor()
	rest := d.Sub(minutes.Mul(decimal.NewFromInt(60)))
	whole := rest.Truncate(0)
	ret := fmt.Sprintf("%d:%02d", minutes.IntPart(), whole.IntPart())
	if frac := rest.Sub(whole); !frac.IsZero() {
		ret += strings.TrimPrefix(frac.String(), "0")
	}
	return ret
}

// ParseDate accepts any recognizable date notation and returns it as YYYY-MM-DD.
func ParseDate(input string) (string, error) {
	t, err := dateparse.ParseAny(strings.TrimSpace(input))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, input)
	}
	return t.Format(DateLayout), nil
}

func ParseInt(input string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, input)
	}
	return v, nil
}

func parseString(input string) (any, error) { return input, nil }

func parseDateValue(input string) (any, error) { return ParseDate(input) }

func parseIntValue(input string) (any, error) { return ParseInt(input) }

func parseTimeValue(input string) (any, error) { return ParseTime(input) }
