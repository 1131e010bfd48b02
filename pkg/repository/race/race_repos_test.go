//nolint:funlen,errcheck // ok for this test code
package race

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/racedb/log"
	"github.com/mpapenbr/racedb/pkg/model"
)

const testPath = "/data/races.json"

func sampleRace() model.Record {
	return model.Record{
		"name":            "Bridge Run",
		"date":            "2016-05-01",
		"city":            "Boston",
		"state":           "MA",
		"distance":        int64(5000),
		"time":            1000.5,
		"place_overall":   int64(12),
		"runners_in_race": int64(340),
		"place_ag":        int64(3),
		"runners_in_ag":   int64(40),
		"results":         "https://example.com/results",
		"notes":           nil,
	}
}

func raceWith(kv ...any) model.Record {
	r := sampleRace()
	for i := 0; i+1 < len(kv); i += 2 {
		r[kv[i].(string)] = kv[i+1]
	}
	return r
}

func initTestFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/data", 0o755))
	return fs
}

func initTestStore(t *testing.T, fs afero.Fs) *Store {
	t.Helper()
	s, err := New(testPath, WithFs(fs), WithLogger(log.New(&bytes.Buffer{}, log.DebugLevel)))
	require.NoError(t, err)
	return s
}

func readDoc(t *testing.T, fs afero.Fs, path string) any {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	doc, err := oj.Parse(data)
	require.NoError(t, err)
	return doc
}

func TestNew_MissingFile(t *testing.T) {
	fs := initTestFs(t)
	s := initTestStore(t, fs)

	assert.Empty(t, s.List(""))
	assert.Empty(t, s.ExistingIDs())
	assert.Equal(t, testPath, s.Path())
	doc, ok := readDoc(t, fs, testPath).(map[string]any)
	require.True(t, ok)
	require.Len(t, doc, 1)
	races, ok := doc["races"].([]any)
	require.True(t, ok)
	assert.Empty(t, races)
}

func TestAdd(t *testing.T) {
	s := initTestStore(t, initTestFs(t))
	for i := 0; i < 10; i++ {
		id, err := s.Add(sampleRace())
		require.NoError(t, err)
		assert.Equal(t, i, id, "ids are assigned without gaps")
		assert.Len(t, s.List(""), i+1)
	}
}

func TestAdd_IgnoresGivenID(t *testing.T) {
	s := initTestStore(t, initTestFs(t))
	input := raceWith("id", 99)
	id, err := s.Add(input)
	require.NoError(t, err)
	assert.Equal(t, 0, id)
	assert.Equal(t, 99, input["id"], "input must not be modified")
	_, ok := s.ExistingIDs()[99]
	assert.False(t, ok)
}

func TestAdd_ReusesFreedID(t *testing.T) {
	s := initTestStore(t, initTestFs(t))
	for i := 0; i < 3; i++ {
		_, err := s.Add(sampleRace())
		require.NoError(t, err)
	}
	require.NoError(t, s.Delete(1))

	id, err := s.Add(sampleRace())
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	id, err = s.Add(sampleRace())
	require.NoError(t, err)
	assert.Equal(t, 3, id)
}

func TestExistingIDs(t *testing.T) {
	s := initTestStore(t, initTestFs(t))
	before := s.ExistingIDs()
	id, err := s.Add(sampleRace())
	require.NoError(t, err)

	_, ok := before[id]
	assert.False(t, ok, "adding a race should add a unique id")
	_, ok = s.ExistingIDs()[id]
	assert.True(t, ok, "the new id should now be in ExistingIDs")
}

func TestSave_Reload(t *testing.T) {
	fs := initTestFs(t)
	s := initTestStore(t, fs)
	for i := 0; i < 10; i++ {
		_, err := s.Add(raceWith("name", "race", "lap", int64(i), "splits", []any{1.5, int64(2)}))
		require.NoError(t, err)
	}
	_, err := s.Update(4, model.Record{"time": 1800.0, "shoes": map[string]any{"brand": "x"}})
	require.NoError(t, err)

	reloaded := initTestStore(t, fs)
	if diff := cmp.Diff(s.List(""), reloaded.List("")); diff != "" {
		t.Errorf("reloaded store differs (-before +after):\n%s", diff)
	}
	assert.Equal(t, s.ExistingIDs(), reloaded.ExistingIDs())
}

func TestRead(t *testing.T) {
	s := initTestStore(t, initTestFs(t))
	funky := raceWith("name", "This race was pretty funky")
	id, err := s.Add(funky)
	require.NoError(t, err)

	got := s.Read(id)
	for k, v := range funky {
		assert.Equal(t, v, got[k], "key %s", k)
	}
	rid, ok := got.ID()
	assert.True(t, ok)
	assert.Equal(t, id, rid)

	got["name"] = "changed"
	assert.Equal(t, "This race was pretty funky", s.Read(id)["name"], "Read returns a copy")
}

func TestRead_Miss(t *testing.T) {
	s := initTestStore(t, initTestFs(t))
	_, err := s.Add(sampleRace())
	require.NoError(t, err)

	for _, id := range []int{-1, 1, 1000} {
		got := s.Read(id)
		assert.NotNil(t, got)
		assert.True(t, got.IsEmpty(), "id %d", id)
	}
}

func TestUpdate(t *testing.T) {
	s := initTestStore(t, initTestFs(t))
	fun := model.Record{"foo": "bar", "new stuff": "wooo", "name": "update old stuff"}
	id, err := s.Add(sampleRace())
	require.NoError(t, err)

	v1 := s.Read(id)
	for k, v := range fun {
		assert.NotEqual(t, v, v1[k], "fields aren't in race yet")
	}
	v2, err := s.Update(id, fun)
	require.NoError(t, err)
	v3 := s.Read(id)
	for k, v := range fun {
		assert.Equal(t, v, v2[k], "fields are in race now")
		assert.Equal(t, v, v3[k], "even if we ask for a new copy")
	}
	assert.Equal(t, "Boston", v3["city"], "other fields are kept")
	assert.Equal(t, int64(5000), v3["distance"])
}

func TestUpdate_IDIsKept(t *testing.T) {
	s := initTestStore(t, initTestFs(t))
	id, err := s.Add(sampleRace())
	require.NoError(t, err)

	got, err := s.Update(id, model.Record{"id": 7, "city": "Salem"})
	require.NoError(t, err)
	gotID, _ := got.ID()
	assert.Equal(t, id, gotID)
	assert.Equal(t, "Salem", s.Read(id)["city"])
	assert.True(t, s.Read(7).IsEmpty())
}

func TestUpdate_Shallow(t *testing.T) {
	s := initTestStore(t, initTestFs(t))
	id, err := s.Add(raceWith("shoes", map[string]any{"brand": "a", "size": int64(44)}))
	require.NoError(t, err)

	_, err = s.Update(id, model.Record{"shoes": map[string]any{"brand": "b"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"brand": "b"}, s.Read(id)["shoes"])
}

func TestUpdate_NotFound(t *testing.T) {
	fs := initTestFs(t)
	s := initTestStore(t, fs)
	_, err := s.Add(sampleRace())
	require.NoError(t, err)
	before, err := afero.ReadFile(fs, testPath)
	require.NoError(t, err)

	got, err := s.Update(42, model.Record{"foo": "bar"})
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())

	after, err := afero.ReadFile(fs, testPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDelete(t *testing.T) {
	fs := initTestFs(t)
	s := initTestStore(t, fs)
	id, err := s.Add(sampleRace())
	require.NoError(t, err)
	other, err := s.Add(sampleRace())
	require.NoError(t, err)

	_, ok := s.ExistingIDs()[id]
	assert.True(t, ok)
	require.NoError(t, s.Delete(id))
	_, ok = s.ExistingIDs()[id]
	assert.False(t, ok)
	_, ok = s.ExistingIDs()[other]
	assert.True(t, ok)

	require.NoError(t, s.Delete(id, 100, -3), "unknown ids are ignored")
	assert.Len(t, s.List(""), 1)

	reloaded := initTestStore(t, fs)
	assert.Equal(t, s.ExistingIDs(), reloaded.ExistingIDs())
}

func TestDelete_Multiple(t *testing.T) {
	s := initTestStore(t, initTestFs(t))
	for i := 0; i < 5; i++ {
		_, err := s.Add(sampleRace())
		require.NoError(t, err)
	}
	require.NoError(t, s.Delete(0, 2, 4))
	assert.Equal(t, map[int]struct{}{1: {}, 3: {}}, s.ExistingIDs())
}

func TestList(t *testing.T) {
	s := initTestStore(t, initTestFs(t))
	races := []model.Record{
		raceWith("date", "2017-03-04", "name", "Spring 10K"),
		raceWith("date", "2015-11-26", "name", "Turkey Trot", "notes", "very FUNKY costumes"),
		raceWith("date", "2016-05-01", "name", "Funky Town Mile"),
		raceWith("date", nil, "name", "Unknown date"),
	}
	for _, r := range races {
		_, err := s.Add(r)
		require.NoError(t, err)
	}
	names := func(rs []model.Record) []string {
		ret := make([]string, 0, len(rs))
		for _, r := range rs {
			ret = append(ret, r.String("name"))
		}
		return ret
	}

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{
			name:   "no filter",
			search: "",
			want:   []string{"Unknown date", "Turkey Trot", "Funky Town Mile", "Spring 10K"},
		},
		{
			name:   "case insensitive across fields",
			search: "funky",
			want:   []string{"Turkey Trot", "Funky Town Mile"},
		},
		{name: "upper case search", search: "FUNKY TOWN", want: []string{"Funky Town Mile"}},
		{name: "numeric value", search: "340", want: []string{"Unknown date", "Turkey Trot", "Funky Town Mile", "Spring 10K"}},
		{name: "no match", search: "marathon", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(s.List(tt.search)))
		})
	}
}

func TestList_ReturnsCopies(t *testing.T) {
	s := initTestStore(t, initTestFs(t))
	id, err := s.Add(sampleRace())
	require.NoError(t, err)
	s.List("")[0]["name"] = "changed"
	assert.Equal(t, "Bridge Run", s.Read(id)["name"])
}

func TestQuery(t *testing.T) {
	s := initTestStore(t, initTestFs(t))
	for _, r := range []model.Record{
		raceWith("distance", int64(5000), "date", "2016-01-01"),
		raceWith("distance", int64(10000), "date", "2016-03-01"),
		raceWith("distance", int64(42195), "date", "2016-02-01"),
	} {
		_, err := s.Add(r)
		require.NoError(t, err)
	}

	got, err := s.Query("$.races[?(@.distance > 5000)]")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(42195), got[0]["distance"])
	assert.Equal(t, int64(10000), got[1]["distance"])

	got, err = s.Query("$.races[*].name")
	require.NoError(t, err)
	assert.Empty(t, got, "non race matches are dropped")

	got, err = s.Query("$..races[?(@.distance == 5000)]")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = s.Query("$.races[?(@.distance >")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestCopy(t *testing.T) {
	fs := initTestFs(t)
	s := initTestStore(t, fs)
	for i := 0; i < 3; i++ {
		_, err := s.Add(raceWith("name", "race", "n", int64(i)))
		require.NoError(t, err)
	}
	require.NoError(t, fs.MkdirAll("/backup", 0o755))
	require.NoError(t, s.Copy("/backup/copy.json"))

	src, err := afero.ReadFile(fs, testPath)
	require.NoError(t, err)
	dst, err := afero.ReadFile(fs, "/backup/copy.json")
	require.NoError(t, err)
	assert.Equal(t, src, dst)

	other, err := New("/backup/copy.json", WithFs(fs), WithLogger(log.New(&bytes.Buffer{}, log.DebugLevel)))
	require.NoError(t, err)
	if diff := cmp.Diff(s.List(""), other.List("")); diff != "" {
		t.Errorf("copy differs (-src +copy):\n%s", diff)
	}
}

func TestCopy_IntoDirectory(t *testing.T) {
	fs := initTestFs(t)
	s := initTestStore(t, fs)
	require.NoError(t, fs.MkdirAll("/backup", 0o755))
	require.NoError(t, s.Copy("/backup"))

	exists, err := afero.Exists(fs, "/backup/races.json")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCopy_SourceRemoved(t *testing.T) {
	fs := initTestFs(t)
	s := initTestStore(t, fs)
	require.NoError(t, fs.Remove(testPath))
	assert.Error(t, s.Copy("/data/copy.json"))
}

func TestCopy_OntoDataFile(t *testing.T) {
	fs := initTestFs(t)
	s := initTestStore(t, fs)
	_, err := s.Add(sampleRace())
	require.NoError(t, err)
	before, err := afero.ReadFile(fs, testPath)
	require.NoError(t, err)

	for _, dest := range []string{"/data", "/data/", testPath, "/data/../data/races.json"} {
		t.Run(dest, func(t *testing.T) {
			err := s.Copy(dest)
			assert.ErrorIs(t, err, ErrSameFile)

			after, err := afero.ReadFile(fs, testPath)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}

	reloaded := initTestStore(t, fs)
	assert.Equal(t, s.ExistingIDs(), reloaded.ExistingIDs())
}

func TestNoTempFilesLeft(t *testing.T) {
	fs := initTestFs(t)
	s := initTestStore(t, fs)
	id, err := s.Add(sampleRace())
	require.NoError(t, err)
	_, err = s.Update(id, model.Record{"foo": "bar"})
	require.NoError(t, err)
	require.NoError(t, s.Delete(id))

	entries, err := afero.ReadDir(fs, "/data")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "races.json", entries[0].Name())
}

func TestAdd_WholeTimeStaysFloat(t *testing.T) {
	fs := initTestFs(t)
	s := initTestStore(t, fs)
	id, err := s.Add(raceWith("time", 1000.0))
	require.NoError(t, err)
	assert.Equal(t, 1000.0, s.Read(id)["time"])

	_, err = s.Update(id, model.Record{"time": 1800.0})
	require.NoError(t, err)
	assert.Equal(t, 1800.0, s.Read(id)["time"])

	reloaded := initTestStore(t, fs)
	assert.Equal(t, 1800.0, reloaded.Read(id)["time"])
	assert.Equal(t, int64(5000), reloaded.Read(id)["distance"])
}

func TestNew_LegacyFile(t *testing.T) {
	fs := initTestFs(t)
	legacy := `{"races": [{"city": "Boston", "place_ag": 3, "name": "Bridge Run", "time": 1000, ` +
		`"notes": null, "date": "2016-05-01", "id": 0}, {"id": 2, "name": "Other", "date": "2015-01-01"}]}`
	require.NoError(t, afero.WriteFile(fs, testPath, []byte(legacy), 0o644))

	s := initTestStore(t, fs)
	assert.Equal(t, map[int]struct{}{0: {}, 2: {}}, s.ExistingIDs())
	assert.Equal(t, 1000.0, s.Read(0)["time"])
	assert.Nil(t, s.Read(0)["notes"])

	id, err := s.Add(sampleRace())
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}
