package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hello-base/ohashi/config"
)

func newConfigCmd() *cobra.Command {
	var (
		output   string
		defaults bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "输出当前生效的配置，或写入配置文件",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if !defaults {
				var err error
				if cfg, err = loadConfig(); err != nil {
					return err
				}
			}

			if output != "" {
				if err := cfg.Save(output); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "配置已写入 %s\n", output)
				return nil
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "写入的配置文件路径")
	cmd.Flags().BoolVar(&defaults, "defaults", false, "忽略配置文件与环境变量，只输出默认值")
	return cmd
}
