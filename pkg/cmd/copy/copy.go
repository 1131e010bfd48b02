package copy

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racedb/pkg/cmd/util"
)

var dest string

func NewCopyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy the data file to another location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := util.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.Copy(dest); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied %s to %s\n", store.Path(), dest)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dest, "dest", "d", "", "destination file or directory")
	_ = cmd.MarkFlagRequired("dest")
	return cmd
}
