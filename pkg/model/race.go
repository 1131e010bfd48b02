package model

import (
	"fmt"

	"github.com/aarondl/opt/null"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Race is the typed view of the declared fields of a Record.
// Keys which are not declared fields are kept in Extra.
type Race struct {
	ID            null.Val[int]
	Name          null.Val[string]
	Date          null.Val[string]
	City          null.Val[string]
	State         null.Val[string]
	Distance      null.Val[int64]   // meters
	Time          null.Val[float64] // seconds
	PlaceOverall  null.Val[int64]
	RunnersInRace null.Val[int64]
	PlaceAG       null.Val[int64]
	RunnersInAG   null.Val[int64]
	Results       null.Val[string]
	Notes         null.Val[string]
	Extra         Record
}

//nolint:cyclop // one branch per field
func RaceFromRecord(r Record) (Race, error) {
	ret := Race{Extra: Record{}}
	var err error
	if id, ok := r.ID(); ok {
		ret.ID = null.From(id)
	}
	for k, v := range r {
		switch k {
		case KeyID:
		case KeyName:
			ret.Name, err = toNull(v, cast.ToStringE)
		case KeyDate:
			ret.Date, err = toNull(v, cast.ToStringE)
		case KeyCity:
			ret.City, err = toNull(v, cast.ToStringE)
		case KeyState:
			ret.State, err = toNull(v, cast.ToStringE)
		case KeyDistance:
			ret.Distance, err = toNull(v, cast.ToInt64E)
		case KeyTime:
			ret.Time, err = toNull(v, cast.ToFloat64E)
		case KeyPlaceOverall:
			ret.PlaceOverall, err = toNull(v, cast.ToInt64E)
		case KeyRunnersInRace:
			ret.RunnersInRace, err = toNull(v, cast.ToInt64E)
		case KeyPlaceAG:
			ret.PlaceAG, err = toNull(v, cast.ToInt64E)
		case KeyRunnersInAG:
			ret.RunnersInAG, err = toNull(v, cast.ToInt64E)
		case KeyResults:
			ret.Results, err = toNull(v, cast.ToStringE)
		case KeyNotes:
			ret.Notes, err = toNull(v, cast.ToStringE)
		default:
			ret.Extra[k] = v
		}
		if err != nil {
			return Race{}, fmt.Errorf("field %s: %w", k, err)
		}
	}
	return ret, nil
}

func toNull[T any](v any, conv func(any) (T, error)) (null.Val[T], error) {
	if v == nil {
		return null.Val[T]{}, nil
	}
	t, err := conv(v)
	if err != nil {
		return null.Val[T]{}, err
	}
	return null.From(t), nil
}

// Pace returns the seconds needed per kilometer.
// The result is null if time or distance is missing or distance is not positive.
func (r Race) Pace() null.Val[float64] {
	t, okTime := r.Time.Get()
	dist, okDist := r.Distance.Get()
	if !okTime || !okDist || dist <= 0 {
		return null.Val[float64]{}
	}
	pace := decimal.NewFromFloat(t).
		Mul(decimal.NewFromInt(1000)).
		Div(decimal.NewFromInt(dist)).
		Round(1)
	return null.From(pace.InexactFloat64())
}
