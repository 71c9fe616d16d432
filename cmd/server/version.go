package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hello-base/ohashi/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "输出版本号",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := version.Get(version.Current)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", version.Title, v)
			return nil
		},
	}
}
