package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trezcool/darasa/core/drive"
)

func (cli *commandLine) driveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drive",
		Short: "Work with stored files directly",
	}

	info := &cobra.Command{
		Use:   "info FILE_ID",
		Short: "Show the metadata of a stored file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := cli.drive.FileInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "ID:   %s\n", file.ID)
			fmt.Fprintf(cli.out, "Name: %s\n", file.Name)
			fmt.Fprintf(cli.out, "Type: %s\n", file.MimeType)
			if file.Size > 0 {
				fmt.Fprintf(cli.out, "Size: %d bytes\n", file.Size)
			}
			if file.WebViewLink != "" {
				fmt.Fprintf(cli.out, "Link: %s\n", file.WebViewLink)
			}
			return nil
		},
	}

	var destDir string
	download := &cobra.Command{
		Use:   "download FILE_ID",
		Short: "Download a stored file, exporting Workspace documents to Office formats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := cli.downloadRoot(destDir)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			path, method, err := drive.Fetch(cmd.Context(), cli.drive, args[0], "", dir)
			if err != nil {
				return err
			}
			success.Fprintf(cli.out, "Saved %s %s\n", path, faint.Sprintf("(%s)", method))
			return nil
		},
	}
	download.Flags().StringVarP(&destDir, "dir", "d", "", "download folder (defaults to the configured one)")

	cmd.AddCommand(info, download)
	return cmd
}
