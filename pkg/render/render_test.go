package render

import (
	"bytes"
	"testing"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/golden"

	"github.com/mpapenbr/racedb/pkg/model"
)

func sampleRaces() []model.Record {
	return []model.Record{
		{
			"id": int64(0), "date": "2015-11-26", "name": "Turkey Trot",
			"city": "Boston", "state": "MA",
		},
		{
			"id": int64(3), "date": "2016-05-01", "name": "Bridge Run",
			"city": "Cambridge", "state": nil, "notes": "windy",
		},
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	assert.NilError(t, Table(&buf, sampleRaces()))
	golden.Assert(t, buf.String(), "table.golden")
}

func TestTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.NilError(t, Table(&buf, nil))
	assert.Equal(t, buf.String(), "id\tdate\tname\tcity\tstate\n")
}

func TestRace(t *testing.T) {
	r := model.Record{
		"id":              int64(3),
		"name":            "Bridge Run",
		"date":            "2016-05-01",
		"city":            "Cambridge",
		"state":           "MA",
		"distance":        int64(5000),
		"time":            1000.0,
		"place_overall":   int64(12),
		"runners_in_race": int64(340),
		"place_ag":        int64(3),
		"runners_in_ag":   int64(40),
		"results":         "https://example.com/results",
		"notes":           nil,
		"foo":             "bar",
		"shoes":           "racers",
	}
	var buf bytes.Buffer
	assert.NilError(t, Race(&buf, r))
	golden.Assert(t, buf.String(), "race.golden")
}

func TestValue(t *testing.T) {
	assert.Equal(t, Value("time", 7000.0), "116:40")
	assert.Equal(t, Value("time", int64(320)), "5:20")
	assert.Equal(t, Value("distance", int64(5000)), "5000")
	assert.Equal(t, Value("notes", nil), "")
}
