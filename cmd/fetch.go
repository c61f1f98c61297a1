package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gridfs-manager/core/engine"
	"gridfs-manager/core/gridfs"

	"github.com/spf13/cobra"
)

var (
	fetchFilter string
	fetchSingle bool
	fetchBuffer bool
	fetchOut    string
)

// fetchCmd queries a bucket
var fetchCmd = &cobra.Command{
	Use:   "fetch [bucket]",
	Short: "Query files in a bucket",
	Long: `Prints the descriptors of files matching --filter as JSON, ordered by upload date.
With --out, the content of every match is written into that directory as <id>-<filename>.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := bootstrap()
		if err != nil {
			return err
		}
		defer logg.Sync()

		var filter engine.Filter
		if fetchFilter != "" {
			if err := json.Unmarshal([]byte(fetchFilter), &filter); err != nil {
				return fmt.Errorf("%w: --filter: %v", gridfs.ErrInvalidArgument, err)
			}
		}

		svc, release, err := openService(cmd.Context(), cfg, logg)
		if err != nil {
			return err
		}
		defer release()

		opts := gridfs.FetchOptions{Filter: filter, IncludeBuffer: fetchBuffer || fetchOut != ""}

		var found []gridfs.FileDescriptor
		if fetchSingle {
			one, err := svc.FetchOne(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			if one != nil {
				found = []gridfs.FileDescriptor{*one}
			}
		} else {
			found, err = svc.FetchMany(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
		}

		if fetchOut != "" {
			if err := writeContents(fetchOut, found); err != nil {
				return err
			}
			// Content went to disk, keep the listing readable
			for i := range found {
				found[i].Buffer = nil
			}
		}

		var result any = found
		if fetchSingle {
			var one *gridfs.FileDescriptor
			if len(found) > 0 {
				one = &found[0]
			}
			result = one
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func writeContents(dir string, found []gridfs.FileDescriptor) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, d := range found {
		if d.Buffer == nil {
			return fmt.Errorf("%w: content of %s could not be read", gridfs.ErrStorageIO, d.ID)
		}
		name := filepath.Join(dir, d.ID+"-"+filepath.Base(d.Filename))
		if err := os.WriteFile(name, d.Buffer.Data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchFilter, "filter", "f", "", `flat JSON filter, e.g. '{"metadata.position":1}'`)
	fetchCmd.Flags().BoolVar(&fetchSingle, "single", false, "return the first match only")
	fetchCmd.Flags().BoolVar(&fetchBuffer, "buffer", false, "include content as a base64 data URI")
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "", "write matching contents into this directory")
	RootCmd.AddCommand(fetchCmd)
}
