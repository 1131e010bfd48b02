package edit

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racedb/log"
	"github.com/mpapenbr/racedb/pkg/cmd/util"
	"github.com/mpapenbr/racedb/pkg/prompt"
)

var raceID int

func NewEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit an existing race, current values are offered as defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return editRace(cmd, raceID)
		},
	}
	cmd.Flags().IntVar(&raceID, "race-id", 0, "id of the race to edit")
	_ = cmd.MarkFlagRequired("race-id")
	return cmd
}

func editRace(cmd *cobra.Command, id int) error {
	store, err := util.OpenStore(cmd.Context())
	if err != nil {
		return err
	}
	current, err := util.ReadRace(store, id)
	if err != nil {
		return err
	}
	patch, err := prompt.New(cmd.InOrStdin(), cmd.OutOrStdout()).Race(current)
	if err != nil {
		return err
	}
	if _, err = store.Update(id, patch); err != nil {
		return err
	}
	log.GetFromContext(cmd.Context()).Info("race updated", log.Int("id", id))
	fmt.Fprintf(cmd.OutOrStdout(), "Race %d updated\n", id)
	return nil
}
