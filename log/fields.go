package log

import "go.uber.org/zap"

var (
	String  = zap.String
	Strings = zap.Strings
	Int     = zap.Int
	Ints    = zap.Ints
	Int64   = zap.Int64
)

func ErrorField(err error) Field {
	return zap.Error(err)
}
