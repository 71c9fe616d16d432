package main

import (
	"flag"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/hello-base/ohashi/config"
)

var configPath string

func main() {
	defer klog.Flush()

	if err := newRootCmd().Execute(); err != nil {
		klog.Errorf("%v", err)
		klog.Flush()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ohashi",
		Short:         "ohashi 示例服务：自定义字段、静态资源存储与 PJAX 视图",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if configPath != "" {
				os.Setenv("CONFIG_PATH", configPath)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	// 初始化 klog，-v 等参数挂到 cobra 上
	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(klogFlags)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径（默认读取 CONFIG_PATH 或 config.yaml）")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCollectStaticCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newFieldsCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

// loadConfig 子命令每次重新读取配置，不复用进程级单例
func loadConfig() (*config.Config, error) {
	return config.Load(os.Getenv("CONFIG_PATH"))
}
