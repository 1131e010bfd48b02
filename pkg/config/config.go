package config

// this holds the resolved configuration values from CLI
var (
	Filename  string // path to the race data file
	LogLevel  string // sets the log level (zap log level values)
	LogFormat string // text vs json
	LogFilter string // zapfilter rules, empty means no filtering
)
