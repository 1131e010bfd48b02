package query

import (
	"github.com/spf13/cobra"

	"github.com/mpapenbr/racedb/pkg/cmd/util"
	"github.com/mpapenbr/racedb/pkg/render"
)

func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query expression",
		Short: "List races matched by a JSONPath expression",
		Long: `List races matched by a JSONPath expression evaluated against the data file.

Example:
  racedb query '$.races[?(@.distance > 10000)]'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := util.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			races, err := store.Query(args[0])
			if err != nil {
				return err
			}
			return render.Table(cmd.OutOrStdout(), races)
		},
	}
	return cmd
}
