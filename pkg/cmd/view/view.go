package view

import (
	"github.com/spf13/cobra"

	"github.com/mpapenbr/racedb/pkg/cmd/util"
	"github.com/mpapenbr/racedb/pkg/render"
)

var raceID int

func NewViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show all fields of a race",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := util.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			r, err := util.ReadRace(store, raceID)
			if err != nil {
				return err
			}
			return render.Race(cmd.OutOrStdout(), r)
		},
	}
	cmd.Flags().IntVar(&raceID, "race-id", 0, "id of the race to show")
	_ = cmd.MarkFlagRequired("race-id")
	return cmd
}
