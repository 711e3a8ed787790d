package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"textsummarizer/internal/fileutil"
)

func newSizeCommand() *cobra.Command {
	var human bool

	cmd := &cobra.Command{
		Use:         "size <path>...",
		Short:       "Report file sizes in kilobytes",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, path := range args {
				size, err := fileutil.Size(path)
				if human {
					size, err = fileutil.HumanSize(path)
				}
				if err != nil {
					return fmt.Errorf("size of %s: %w", path, err)
				}
				fmt.Fprintf(out, "%s\t%s\n", size, path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&human, "human", false, "Use IEC units instead of ~N KB")
	return cmd
}

func newDirsCommand(ctx *commandContext) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:         "dirs <path>...",
		Short:       "Create directories, including missing parents",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return fileutil.CreateDirectories(args, !quiet, ctx.bootstrapLogger())
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not log each directory")
	return cmd
}
