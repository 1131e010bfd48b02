package add

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racedb/log"
	"github.com/mpapenbr/racedb/pkg/cmd/util"
	"github.com/mpapenbr/racedb/pkg/prompt"
)

func NewAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new race entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return addRace(cmd)
		},
	}
	return cmd
}

func addRace(cmd *cobra.Command) error {
	store, err := util.OpenStore(cmd.Context())
	if err != nil {
		return err
	}
	r, err := prompt.New(cmd.InOrStdin(), cmd.OutOrStdout()).Race(nil)
	if err != nil {
		return err
	}
	id, err := store.Add(r)
	if err != nil {
		return err
	}
	log.GetFromContext(cmd.Context()).Info("race added",
		log.Int("id", id), log.String("file", store.Path()))
	fmt.Fprintf(cmd.OutOrStdout(), "Race added with id %d\n", id)
	return nil
}
