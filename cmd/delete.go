package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// deleteCmd removes files from a bucket
var deleteCmd = &cobra.Command{
	Use:   "delete [bucket] [id...]",
	Short: "Delete files from a bucket",
	Long:  `Deletes the given file ids in order and stops at the first failure. Files deleted before the failure stay deleted.`,
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := bootstrap()
		if err != nil {
			return err
		}
		defer logg.Sync()

		svc, release, err := openService(cmd.Context(), cfg, logg)
		if err != nil {
			return err
		}
		defer release()

		result, err := svc.Delete(cmd.Context(), args[0], args[1:])
		out := cmd.OutOrStdout()
		for _, id := range result.DeletedIDs {
			fmt.Fprintf(out, "deleted  %s\n", id)
		}
		if err != nil {
			if result.FailedID != "" {
				fmt.Fprintf(out, "failed   %s\n", result.FailedID)
			}
			logg.Error("Delete stopped", zap.Int("deleted", len(result.DeletedIDs)), zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(deleteCmd)
}
