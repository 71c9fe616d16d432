package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/hello-base/ohashi/internal/model/fields"
	"github.com/hello-base/ohashi/internal/pkg/database"
)

func newFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "输出模型字段的冻结描述（JSON）",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tables, err := database.FreezeSchemas(fields.DefaultRules())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(tables)
		},
	}
}
