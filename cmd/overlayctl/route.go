package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-overlay/internal/codec"
	"github.com/dep2p/go-overlay/internal/protocol/route"
	"github.com/dep2p/go-overlay/pkg/types"
)

var routeFlags struct {
	badHops []string
	query   bool
}

var routeCmd = &cobra.Command{
	Use:   "route <destination> [hop...]",
	Short: "Build, normalize and encode a route",
	Long: `route builds a route from a destination access point and an ordered list of
hops, normalizes it (adjacent duplicates merged, trailing destination folded into
the destination access point) and prints the encoded route response.

Each argument is PEER or PEER@endpoint,endpoint, for example P3@tcp://10.0.0.3:9701.
With --query the command instead prints an encoded route query for the
destination, excluding the peers given with --bad-hop.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		dest, err := parseAccessPoint(args[0])
		if err != nil {
			return err
		}
		hops := make([]types.AccessPoint, 0, len(args)-1)
		for _, a := range args[1:] {
			ap, err := parseAccessPoint(a)
			if err != nil {
				return err
			}
			hops = append(hops, ap)
		}

		c := codec.New(codec.DefaultRegistry())
		out := cmd.OutOrStdout()

		if routeFlags.query {
			bad := make([]types.PeerID, len(routeFlags.badHops))
			for i, b := range routeFlags.badHops {
				bad[i] = types.PeerID(b)
			}
			q, err := route.BuildQuery(dest.Peer, nil, bad)
			if err != nil {
				return err
			}
			data, err := c.Encode(q)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, hex.EncodeToString(data))
			return nil
		}

		r, err := types.NormalizeRoute(dest.Peer, dest, hops)
		if err != nil {
			return fmt.Errorf("%s: %w", types.KindOf(err), err)
		}
		resp, err := route.NewRouteResponse(&r, nil)
		if err != nil {
			return err
		}
		data, err := c.Encode(resp)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "route: %s\nhops: %d\nencoded: %s\n", r, r.HopCount(), hex.EncodeToString(data))
		return nil
	},
}

// parseAccessPoint 解析 PEER 或 PEER@ep1,ep2
func parseAccessPoint(s string) (types.AccessPoint, error) {
	peer, eps, found := strings.Cut(s, "@")
	id, err := types.ParsePeerID(peer)
	if err != nil {
		return types.AccessPoint{}, err
	}
	if !found {
		return types.NewAccessPoint(id), nil
	}
	endpoints := strings.Split(eps, ",")
	for i, ep := range endpoints {
		endpoints[i] = strings.TrimSpace(ep)
	}
	return types.NewAccessPoint(id, endpoints...), nil
}

func init() {
	rootCmd.AddCommand(routeCmd)
	routeCmd.Flags().BoolVar(&routeFlags.query, "query", false, "输出到目的节点的路由查询")
	routeCmd.Flags().StringSliceVar(&routeFlags.badHops, "bad-hop", nil, "查询中排除的节点，可重复")
}
