package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/hello-base/ohashi/internal/eventbus"
	"github.com/hello-base/ohashi/internal/storage"
	"github.com/hello-base/ohashi/internal/subscriber"
	"github.com/hello-base/ohashi/internal/utils"
)

func newCollectStaticCmd() *cobra.Command {
	var (
		dryRun        bool
		noPostProcess bool
		ignore        []string
		source        string
	)

	cmd := &cobra.Command{
		Use:   "collectstatic",
		Short: "收集静态资源到远端 bucket 与本地缓存",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if source == "" {
				source = cfg.Static.Root
			}

			bus := eventbus.NewStaticEventBus()
			st, err := storage.NewFromConfig(ctx, cfg, storage.WithEvents(bus))
			if err != nil {
				return err
			}
			subscriber.NewStaticEventSubscriber(st).Register(bus)

			collector := storage.NewCollector(st)
			collector.DryRun = dryRun
			collector.PostProcess = !noPostProcess
			collector.IgnorePatterns = append(collector.IgnorePatterns, ignore...)

			summary, err := collector.Collect(ctx, source)
			if err != nil {
				return err
			}
			klog.V(6).Infof("collectstatic 完成: %s", utils.ToJSON(summary))
			fmt.Fprintln(cmd.OutOrStdout(), summary.String())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "只列出将要收集的文件")
	cmd.Flags().BoolVar(&noPostProcess, "no-post-process", false, "不生成带哈希的副本")
	cmd.Flags().StringSliceVarP(&ignore, "ignore", "i", nil, "额外忽略的文件模式")
	cmd.Flags().StringVar(&source, "source", "", "静态资源源目录（默认 static.root）")
	return cmd
}
