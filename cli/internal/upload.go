package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newUploadCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload an image or document",
		Long:  `Upload a file (images, PDF) and print the URL it is served from.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputFormat(format); err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open file: %w", err)
			}
			defer f.Close()

			result, err := getCliContext(cmd).API.Upload(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if format == outputJSON {
				return printJSON(out, result)
			}
			fmt.Fprintf(out, "✓ Uploaded %s (%d bytes)\n", result.Filename, result.Size)
			fmt.Fprintln(out, result.URL)
			return nil
		},
	}
	addOutputFlag(cmd, &format)

	return cmd
}
