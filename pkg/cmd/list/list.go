package list

import (
	"github.com/spf13/cobra"

	"github.com/mpapenbr/racedb/pkg/cmd/util"
	"github.com/mpapenbr/racedb/pkg/render"
)

var search string

func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the races, optionally filtered by a search term",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := util.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			return render.Table(cmd.OutOrStdout(), store.List(search))
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "",
		"only show races containing this text (case insensitive)")
	return cmd
}
