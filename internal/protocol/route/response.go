package route

import (
	"github.com/dep2p/go-overlay/pkg/types"
)

// ============================================================================
//                              RouteResponse
// ============================================================================

// RouteResponse 路由应答
//
// 无法给出目的路由时 DestinationRoute 为 nil。
type RouteResponse struct {
	// DestinationRoute 到目的节点的路由
	DestinationRoute *types.Route

	// SourceRoute 到应答方自身的路由
	SourceRoute *types.Route
}

// NewRouteResponse 构造路由应答
func NewRouteResponse(dest, source *types.Route) (*RouteResponse, error) {
	resp := &RouteResponse{}
	if dest != nil {
		r := *dest
		resp.DestinationRoute = &r
	}
	if source != nil {
		r := *source
		resp.SourceRoute = &r
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	return resp, nil
}

// Validate 校验应答：出现的路由必须完整
func (r *RouteResponse) Validate() error {
	if r.DestinationRoute != nil && r.DestinationRoute.IsZero() {
		return types.MissingField("destination_route.destination_peer")
	}
	if r.SourceRoute != nil && r.SourceRoute.IsZero() {
		return types.MissingField("source_route.destination_peer")
	}
	return nil
}

// HasDestinationRoute 是否给出了目的路由
func (r *RouteResponse) HasDestinationRoute() bool {
	return r.DestinationRoute != nil
}
