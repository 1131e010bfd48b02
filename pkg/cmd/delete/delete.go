package delete

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racedb/pkg/cmd/util"
)

var raceIDs []int

func NewDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete races by id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := util.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.Delete(raceIDs...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted races %v\n", raceIDs)
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&raceIDs, "race-id", nil,
		"id of a race to delete (may be repeated)")
	_ = cmd.MarkFlagRequired("race-id")
	return cmd
}
