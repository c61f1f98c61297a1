package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// bucketsCmd lists the configured buckets and their unique indexes
var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "List configured buckets and unique indexes",
	Long:  `Validates the bucket configuration and prints every bucket with its unique index, without connecting to storage.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := bootstrap()
		if err != nil {
			return err
		}
		if err := cfg.GridFS.Validate(); err != nil {
			return err
		}

		indexes := make(map[string][]string, len(cfg.GridFS.Indexes))
		for _, idx := range cfg.GridFS.Indexes {
			if !idx.Inert() {
				indexes[idx.BucketName] = idx.Labels()
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Engine: %s\n", cfg.GridFS.Engine)
		fmt.Fprintln(out, "-----------------------------")
		for _, name := range cfg.GridFS.BucketNames {
			unique := "-"
			if labels, ok := indexes[name]; ok {
				unique = "[" + strings.Join(labels, ", ") + "]"
			}
			fmt.Fprintf(out, "%-24s unique: %s\n", name, unique)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(bucketsCmd)
}
