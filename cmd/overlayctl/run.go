package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	overlay "github.com/dep2p/go-overlay"
)

var runFlags struct {
	configFile string
	preset     string
	peerID     string
	endpoints  []string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a node and wait for a termination signal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		opts, err := buildOptions()
		if err != nil {
			return fmt.Errorf("配置错误: %w", err)
		}

		node, err := overlay.New(opts...)
		if err != nil {
			return fmt.Errorf("创建节点失败: %w", err)
		}
		defer func() { _ = node.Close() }()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if err := node.Start(ctx); err != nil {
			return err
		}
		logger.Info("节点运行中", "peer", node.ID(), "preset", runFlags.preset)
		fmt.Fprintf(cmd.OutOrStdout(), "节点 %s 已启动，按 Ctrl+C 退出\n", node.ID())

		<-ctx.Done()
		fmt.Fprintln(cmd.OutOrStdout(), "正在关闭节点...")
		return nil
	},
}

// buildOptions 构建节点选项
//
// 优先级：配置文件 < 预设 < 命令行参数。
func buildOptions() ([]overlay.Option, error) {
	var opts []overlay.Option
	if runFlags.configFile != "" {
		opts = append(opts, overlay.WithConfigFile(runFlags.configFile))
	}
	if runFlags.preset != "" {
		if !overlay.IsValidPreset(runFlags.preset) {
			return nil, fmt.Errorf("%w: %q", overlay.ErrUnknownPreset, runFlags.preset)
		}
		opts = append(opts, overlay.WithPreset(runFlags.preset))
	}
	if runFlags.peerID != "" {
		opts = append(opts, overlay.WithPeerID(runFlags.peerID))
	}
	if len(runFlags.endpoints) > 0 {
		opts = append(opts, overlay.WithEndpoints(runFlags.endpoints...))
	}
	return opts, nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runFlags.configFile, "config", "c", "", "JSON 配置文件路径")
	runCmd.Flags().StringVarP(&runFlags.preset, "preset", "p", "", "预设 (edge/rendezvous)")
	runCmd.Flags().StringVar(&runFlags.peerID, "peer-id", "", "本地 PeerID，为空时生成临时标识")
	runCmd.Flags().StringSliceVarP(&runFlags.endpoints, "endpoint", "e", nil, "本地可达端点，可重复")
}
