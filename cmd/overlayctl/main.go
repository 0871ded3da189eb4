// Package main 提供 overlayctl 命令行入口
//
// 子命令：
//
//	overlayctl run      启动节点并等待退出信号
//	overlayctl decode   解码一条线上消息
//	overlayctl route    构造并规整路由
//	overlayctl walk     模拟有限范围游走的 TTL 递减
//	overlayctl config   打印、校验配置与预设
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-overlay/pkg/lib/log"
)

var logger = log.Logger("overlay/cmd")

var rootFlags struct {
	logLevel string
}

var rootCmd = &cobra.Command{
	Use:   "overlayctl",
	Short: "Overlay connectivity core tooling",
	Long: `overlayctl runs an overlay node and inspects the messages it exchanges:
route queries and responses, limited-range walk envelopes, rendezvous lease
requests and responses, and SRDI index messages.`,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := log.LevelFromEnv()
		if rootFlags.logLevel != "" {
			level = log.ParseLevel(rootFlags.logLevel)
		}
		log.SetOutputWithLevel(os.Stderr, level)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.logLevel, "log-level", "",
		"日志级别 (debug/info/warn/error)，默认读取 "+log.EnvLogLevel)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
