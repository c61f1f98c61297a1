package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"gridfs-manager/core/gridfs"
	"gridfs-manager/core/metadata"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var uploadMetadata string

// uploadCmd stores local files in a bucket
var uploadCmd = &cobra.Command{
	Use:   "upload [bucket] [file...]",
	Short: "Upload files into a bucket",
	Long: `Uploads the given files in order. Every file receives its own copy of --metadata.
The mimetype is detected from the file extension or content unless --metadata sets one.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := bootstrap()
		if err != nil {
			return err
		}
		defer logg.Sync()

		var md metadata.Metadata
		if uploadMetadata != "" {
			if err := json.Unmarshal([]byte(uploadMetadata), &md); err != nil {
				return fmt.Errorf("%w: --metadata: %v", gridfs.ErrInvalidArgument, err)
			}
		}

		uploads := make([]gridfs.UploadFile, 0, len(args)-1)
		for _, path := range args[1:] {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			contentType, err := detectContentType(f, path)
			if err != nil {
				return err
			}
			uploads = append(uploads, gridfs.UploadFile{
				Filename:    filepath.Base(path),
				ContentType: contentType,
				Content:     f,
			})
		}

		svc, release, err := openService(cmd.Context(), cfg, logg)
		if err != nil {
			return err
		}
		defer release()

		results, err := svc.Upload(cmd.Context(), args[0], uploads, md)
		out := cmd.OutOrStdout()
		for _, r := range results {
			mimeType, _ := r.Metadata.MimeType()
			fmt.Fprintf(out, "%s  %-32s %s\n", r.ID, r.Filename, mimeType)
		}
		if err != nil {
			logg.Error("Upload stopped", zap.Int("committed", len(results)), zap.Error(err))
			return err
		}
		return nil
	},
}

// detectContentType uses the extension first, then sniffs the first 512 bytes.
func detectContentType(f *os.File, path string) (string, error) {
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt, nil
	}

	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && n == 0 {
		// Empty file
		return metadata.DefaultMimeType, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadMetadata, "metadata", "m", "", `flat JSON object, e.g. '{"clientId":"c-1","position":1}'`)
	RootCmd.AddCommand(uploadCmd)
}
