package codec

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-overlay/pkg/types"
)

// AccessPoint 字段
const (
	apPeer      protowire.Number = 1
	apEndpoints protowire.Number = 2
)

// Route 字段
const (
	routeDestination protowire.Number = 1
	routeDestAP      protowire.Number = 2
	routeHops        protowire.Number = 3
)

func encodeAccessPoint(ap types.AccessPoint) []byte {
	var b []byte
	b = appendString(b, apPeer, string(ap.Peer))
	for _, ep := range ap.Endpoints {
		b = protowire.AppendTag(b, apEndpoints, protowire.BytesType)
		b = protowire.AppendString(b, ep)
	}
	return b
}

func decodeAccessPoint(body []byte) (types.AccessPoint, error) {
	var ap types.AccessPoint
	err := parseFields(body, func(f field) error {
		switch f.num {
		case apPeer:
			s, err := f.str()
			ap.Peer = types.PeerID(s)
			return err
		case apEndpoints:
			s, err := f.str()
			ap.Endpoints = append(ap.Endpoints, s)
			return err
		}
		return nil
	})
	return ap, err
}

// encodeRoute 编码路由，目的接入点去掉冗余的节点标识
func encodeRoute(r types.Route) []byte {
	var b []byte
	b = appendString(b, routeDestination, string(r.Destination()))
	b = appendMessage(b, routeDestAP, encodeAccessPoint(r.WireAccessPoint()))
	for _, h := range r.Hops() {
		b = appendMessage(b, routeHops, encodeAccessPoint(h))
	}
	return b
}

// decodeRoute 解码路由并规整
//
// 目的接入点上的冗余节点标识被接受，但必须与目的节点一致。
func decodeRoute(body []byte) (types.Route, error) {
	var (
		dest   types.PeerID
		destAP types.AccessPoint
		hops   []types.AccessPoint
	)
	err := parseFields(body, func(f field) error {
		switch f.num {
		case routeDestination:
			s, err := f.str()
			dest = types.PeerID(s)
			return err
		case routeDestAP:
			if err := f.wantType(protowire.BytesType); err != nil {
				return err
			}
			ap, err := decodeAccessPoint(f.b)
			destAP = ap
			return err
		case routeHops:
			if err := f.wantType(protowire.BytesType); err != nil {
				return err
			}
			ap, err := decodeAccessPoint(f.b)
			hops = append(hops, ap)
			return err
		}
		return nil
	})
	if err != nil {
		return types.Route{}, err
	}
	return types.NormalizeRoute(dest, destAP, hops)
}

// decodeRoutePtr 解码嵌入的路由字段
func decodeRoutePtr(f field) (*types.Route, error) {
	if err := f.wantType(protowire.BytesType); err != nil {
		return nil, err
	}
	r, err := decodeRoute(f.b)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
