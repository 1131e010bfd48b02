package util

import (
	"context"
	"fmt"
	"io"

	"github.com/mpapenbr/racedb/log"
	"github.com/mpapenbr/racedb/pkg/config"
	"github.com/mpapenbr/racedb/pkg/model"
	"github.com/mpapenbr/racedb/pkg/repository/race"
)

// ErrRaceNotFound is returned by commands which need an existing race.
type ErrRaceNotFound struct {
	ID int
}

func (e *ErrRaceNotFound) Error() string {
	return fmt.Sprintf("race %d not found", e.ID)
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// InitLogger replaces the default logger according to the config values.
// Entries are written to w.
func InitLogger(w io.Writer) error {
	filter, err := log.WithFilter(config.LogFilter)
	if err != nil {
		return fmt.Errorf("invalid log filter %q: %w", config.LogFilter, err)
	}
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(
			w,
			parseLogLevel(config.LogLevel, log.WarnLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1),
			filter)
	default:
		logger = log.DevLogger(
			w,
			parseLogLevel(config.LogLevel, log.WarnLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1),
			filter)
	}
	log.ResetDefault(logger)
	return nil
}

// OpenStore opens the store configured by --filename. The store logs through
// the logger found in ctx.
func OpenStore(ctx context.Context, opts ...race.Option) (*race.Store, error) {
	l := log.GetFromContext(ctx)
	l.Debug("opening store", log.String("file", config.Filename))
	opts = append([]race.Option{race.WithLogger(l.Named("store"))}, opts...)
	return race.New(config.Filename, opts...)
}

// ReadRace returns the race with the given id or ErrRaceNotFound.
func ReadRace(s *race.Store, id int) (model.Record, error) {
	r := s.Read(id)
	if r.IsEmpty() {
		return nil, &ErrRaceNotFound{ID: id}
	}
	return r, nil
}
