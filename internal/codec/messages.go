package codec

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-overlay/internal/protocol/lease"
	"github.com/dep2p/go-overlay/internal/protocol/route"
	"github.com/dep2p/go-overlay/internal/protocol/srdi"
	"github.com/dep2p/go-overlay/internal/protocol/walk"
	"github.com/dep2p/go-overlay/pkg/types"
)

// ============================================================================
//                              RouteQuery / RouteResponse
// ============================================================================

func encodeRouteQuery(q *route.RouteQuery) []byte {
	var b []byte
	b = appendString(b, 1, string(q.Destination))
	if q.SourceRoute != nil {
		b = appendMessage(b, 2, encodeRoute(*q.SourceRoute))
	}
	for _, p := range q.BadHops {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendString(b, string(p))
	}
	return b
}

func decodeRouteQuery(body []byte) (*route.RouteQuery, error) {
	q := &route.RouteQuery{}
	err := parseFields(body, func(f field) error {
		var err error
		switch f.num {
		case 1:
			var s string
			s, err = f.str()
			q.Destination = types.PeerID(s)
		case 2:
			q.SourceRoute, err = decodeRoutePtr(f)
		case 3:
			var s string
			s, err = f.str()
			q.BadHops = append(q.BadHops, types.PeerID(s))
		}
		return err
	})
	return q, err
}

func encodeRouteResponse(r *route.RouteResponse) []byte {
	var b []byte
	if r.DestinationRoute != nil {
		b = appendMessage(b, 1, encodeRoute(*r.DestinationRoute))
	}
	if r.SourceRoute != nil {
		b = appendMessage(b, 2, encodeRoute(*r.SourceRoute))
	}
	return b
}

func decodeRouteResponse(body []byte) (*route.RouteResponse, error) {
	r := &route.RouteResponse{}
	err := parseFields(body, func(f field) error {
		var err error
		switch f.num {
		case 1:
			r.DestinationRoute, err = decodeRoutePtr(f)
		case 2:
			r.SourceRoute, err = decodeRoutePtr(f)
		}
		return err
	})
	return r, err
}

// ============================================================================
//                              LimitedRangeEnvelope
// ============================================================================

func encodeEnvelope(e *walk.LimitedRangeEnvelope) []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(e.TTL))
	b = appendVarint(b, 2, uint64(e.Direction))
	b = appendString(b, 3, string(e.SourcePeer))
	b = appendString(b, 4, e.SourceServiceName)
	if e.SourceServiceParams != nil {
		b = protowire.AppendTag(b, 5, protowire.BytesType)
		b = protowire.AppendString(b, *e.SourceServiceParams)
	}
	return b
}

func decodeEnvelope(body []byte) (*walk.LimitedRangeEnvelope, error) {
	e := &walk.LimitedRangeEnvelope{}
	err := parseFields(body, func(f field) error {
		switch f.num {
		case 1:
			ttl, err := f.varint32()
			e.TTL = ttl
			return err
		case 2:
			v, err := f.varint()
			if err != nil {
				return err
			}
			e.Direction, err = types.DirectionFromCode(v)
			return err
		case 3:
			s, err := f.str()
			e.SourcePeer = types.PeerID(s)
			return err
		case 4:
			s, err := f.str()
			e.SourceServiceName = s
			return err
		case 5:
			s, err := f.str()
			e.SourceServiceParams = &s
			return err
		}
		return nil
	})
	return e, err
}

// ============================================================================
//                              LeaseRequest / LeaseResponse
// ============================================================================

func encodeGeneration(b []byte, num protowire.Number, g uuid.NullUUID) []byte {
	if !g.Valid {
		return b
	}
	return appendMessage(b, num, g.UUID[:])
}

func decodeGeneration(f field) (uuid.NullUUID, error) {
	if err := f.wantType(protowire.BytesType); err != nil {
		return uuid.NullUUID{}, err
	}
	id, err := uuid.FromBytes(f.b)
	if err != nil {
		return uuid.NullUUID{}, malformed(err)
	}
	return uuid.NullUUID{UUID: id, Valid: true}, nil
}

func encodeLeaseRequest(r *lease.LeaseRequest) []byte {
	var b []byte
	b = appendString(b, 1, string(r.ClientPeer))
	if r.RequestedLease != nil {
		b = appendMillis(b, 2, *r.RequestedLease)
	}
	b = encodeGeneration(b, 3, r.KnownGeneration)
	if r.RequestedReferrals != nil {
		b = appendVarint(b, 4, uint64(*r.RequestedReferrals))
	}
	b = appendBytes(b, 5, r.ClientCredential)
	if a := r.ClientAdvertisement; a != nil {
		var ab []byte
		ab = appendBytes(ab, 1, a.Document)
		ab = appendMillis(ab, 2, a.Expiration)
		b = appendMessage(b, 6, ab)
	}
	return b
}

func decodeLeaseRequest(body []byte) (*lease.LeaseRequest, error) {
	r := &lease.LeaseRequest{}
	err := parseFields(body, func(f field) error {
		var err error
		switch f.num {
		case 1:
			var s string
			s, err = f.str()
			r.ClientPeer = types.PeerID(s)
		case 2:
			var d time.Duration
			d, err = f.millis("requested_lease_millis")
			r.RequestedLease = &d
		case 3:
			r.KnownGeneration, err = decodeGeneration(f)
		case 4:
			var n uint32
			n, err = f.varint32()
			r.RequestedReferrals = &n
		case 5:
			r.ClientCredential, err = f.bytes()
		case 6:
			r.ClientAdvertisement, err = decodeAdvertisement(f)
		}
		return err
	})
	return r, err
}

func decodeAdvertisement(f field) (*lease.Advertisement, error) {
	if err := f.wantType(protowire.BytesType); err != nil {
		return nil, err
	}
	a := &lease.Advertisement{}
	err := parseFields(f.b, func(f field) error {
		var err error
		switch f.num {
		case 1:
			a.Document, err = f.bytes()
		case 2:
			a.Expiration, err = f.millis("client_advertisement.expiration_millis")
		}
		return err
	})
	return a, err
}

func encodeLeaseResponse(r *lease.LeaseResponse) []byte {
	var b []byte
	b = appendString(b, 1, string(r.ServerPeer))
	if r.OfferedLease != nil {
		b = appendMillis(b, 2, *r.OfferedLease)
	}
	if a := r.ServerAdvertisement; a != nil {
		var ab []byte
		ab = appendMessage(ab, 1, encodeRoute(a.Route))
		ab = encodeGeneration(ab, 2, a.Generation)
		if a.Expiration != nil {
			ab = appendMillis(ab, 3, *a.Expiration)
		}
		b = appendMessage(b, 3, ab)
	}
	for _, ref := range r.Referrals {
		var rb []byte
		rb = appendMessage(rb, 1, encodeRoute(ref.Route))
		rb = appendMillis(rb, 2, ref.Expiration)
		b = appendMessage(b, 4, rb)
	}
	b = appendBytes(b, 5, r.ServerCredential)
	return b
}

func decodeLeaseResponse(body []byte) (*lease.LeaseResponse, error) {
	r := &lease.LeaseResponse{}
	err := parseFields(body, func(f field) error {
		var err error
		switch f.num {
		case 1:
			var s string
			s, err = f.str()
			r.ServerPeer = types.PeerID(s)
		case 2:
			var d time.Duration
			d, err = f.millis("offered_lease_millis")
			r.OfferedLease = &d
		case 3:
			r.ServerAdvertisement, err = decodeServerAdvertisement(f)
		case 4:
			var ref lease.Referral
			ref, err = decodeReferral(f)
			r.Referrals = append(r.Referrals, ref)
		case 5:
			r.ServerCredential, err = f.bytes()
		}
		return err
	})
	return r, err
}

func decodeServerAdvertisement(f field) (*lease.ServerAdvertisement, error) {
	if err := f.wantType(protowire.BytesType); err != nil {
		return nil, err
	}
	a := &lease.ServerAdvertisement{}
	err := parseFields(f.b, func(f field) error {
		switch f.num {
		case 1:
			r, err := decodeRoutePtr(f)
			if err != nil {
				return err
			}
			a.Route = *r
		case 2:
			g, err := decodeGeneration(f)
			a.Generation = g
			return err
		case 3:
			d, err := f.millis("server_advertisement.expiration_millis")
			a.Expiration = &d
			return err
		}
		return nil
	})
	return a, err
}

func decodeReferral(f field) (lease.Referral, error) {
	var ref lease.Referral
	if err := f.wantType(protowire.BytesType); err != nil {
		return ref, err
	}
	err := parseFields(f.b, func(f field) error {
		switch f.num {
		case 1:
			r, err := decodeRoutePtr(f)
			if err != nil {
				return err
			}
			ref.Route = *r
		case 2:
			d, err := f.millis("referral.expiration_millis")
			ref.Expiration = d
			return err
		}
		return nil
	})
	return ref, err
}

// ============================================================================
//                              SRDI
// ============================================================================

func encodeSrdi(m *srdi.Message) []byte {
	var b []byte
	b = appendString(b, 1, string(m.Owner))
	b = appendVarint(b, 2, uint64(m.Scope))
	b = appendString(b, 3, m.PrimaryKey)
	for _, e := range m.Entries {
		var eb []byte
		eb = appendString(eb, 1, e.SecondaryKey)
		eb = appendString(eb, 2, e.Value)
		eb = appendMillis(eb, 3, e.Expiration)
		b = appendMessage(b, 4, eb)
	}
	return b
}

func decodeSrdi(body []byte) (*srdi.Message, error) {
	m := &srdi.Message{}
	err := parseFields(body, func(f field) error {
		switch f.num {
		case 1:
			s, err := f.str()
			m.Owner = types.PeerID(s)
			return err
		case 2:
			v, err := f.varint()
			if err != nil {
				return err
			}
			if v > math.MaxUint8 {
				return types.UnrecognizedValue("scope", v)
			}
			m.Scope = srdi.Scope(v)
		case 3:
			s, err := f.str()
			m.PrimaryKey = s
			return err
		case 4:
			e, err := decodeSrdiEntry(f)
			m.Entries = append(m.Entries, e)
			return err
		}
		return nil
	})
	return m, err
}

func decodeSrdiEntry(f field) (srdi.Entry, error) {
	var e srdi.Entry
	if err := f.wantType(protowire.BytesType); err != nil {
		return e, err
	}
	err := parseFields(f.b, func(f field) error {
		var err error
		switch f.num {
		case 1:
			e.SecondaryKey, err = f.str()
		case 2:
			e.Value, err = f.str()
		case 3:
			e.Expiration, err = f.millis("entry.expiration_millis")
		}
		return err
	})
	if err != nil {
		return e, fmt.Errorf("srdi entry: %w", err)
	}
	return e, nil
}
