// Package cmdtest provides helpers to run cobra commands against a temporary
// data file.
package cmdtest

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/racedb/pkg/config"
	"github.com/mpapenbr/racedb/pkg/model"
	"github.com/mpapenbr/racedb/pkg/repository/race"
)

// InitTestStore points config.Filename to a fresh file in a temp dir and
// stores the given races there.
func InitTestStore(t *testing.T, races ...model.Record) *race.Store {
	t.Helper()
	config.Filename = filepath.Join(t.TempDir(), "races.json")
	t.Cleanup(func() { config.Filename = "" })
	s, err := race.New(config.Filename)
	require.NoError(t, err)
	for _, r := range races {
		_, err := s.Add(r)
		require.NoError(t, err)
	}
	return s
}

// RunCmd executes cmd with args, feeding input to stdin. It returns stdout.
func RunCmd(cmd *cobra.Command, input string, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
