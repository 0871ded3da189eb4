package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-overlay/internal/protocol/walk"
	"github.com/dep2p/go-overlay/pkg/types"
)

var walkFlags struct {
	direction string
	source    string
	service   string
}

var walkCmd = &cobra.Command{
	Use:   "walk <ttl>",
	Short: "Show how far a limited-range walk travels",
	Long: `walk wraps an envelope with the given TTL and forwards it hop by hop until
the TTL is exhausted, printing the envelope seen at each hop.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		var ttl uint32
		if _, err := fmt.Sscanf(args[0], "%d", &ttl); err != nil {
			return fmt.Errorf("invalid ttl %q: %w", args[0], err)
		}
		dir, err := types.ParseDirection(walkFlags.direction)
		if err != nil {
			return err
		}
		env, err := walk.Wrap(ttl, dir, types.PeerID(walkFlags.source), walkFlags.service, nil)
		if err != nil {
			return fmt.Errorf("%s: %w", types.KindOf(err), err)
		}

		out := cmd.OutOrStdout()
		for hop := 0; env != nil; hop++ {
			fmt.Fprintf(out, "hop %d: ttl=%d direction=%s source=%s\n", hop, env.TTL, env.Direction, env.SourcePeer)
			env = walk.Forward(env)
		}
		fmt.Fprintln(out, "terminal")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(walkCmd)
	walkCmd.Flags().StringVarP(&walkFlags.direction, "direction", "d", "both", "传播方向 (up/down/both)")
	walkCmd.Flags().StringVar(&walkFlags.source, "source", "SELF", "发起方节点")
	walkCmd.Flags().StringVar(&walkFlags.service, "service", "walk", "发起方服务名")
}
