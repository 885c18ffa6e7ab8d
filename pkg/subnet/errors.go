package subnet

import "errors"

var (
	// ErrUnauthorized is returned when the caller is not the admin of the subnet.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInactiveNetwork is returned for a peer or relation change on an inactive subnet.
	ErrInactiveNetwork = errors.New("inactive network")
	// ErrNetworkDeleted is returned for any change on a subnet deleted through the subnet manager.
	ErrNetworkDeleted = errors.New("network deleted")
	// ErrDuplicatePeer is returned when a peer is already in the subnet.
	ErrDuplicatePeer = errors.New("duplicate peer")
	// ErrPeerNotFound is returned when a peer is not in the subnet.
	ErrPeerNotFound = errors.New("peer not found")
	// ErrRelationNotFound is returned when two peers are not neighbors.
	ErrRelationNotFound = errors.New("relation not found")
	// ErrSelfRelation is returned when a peer is related to itself.
	ErrSelfRelation = errors.New("self relation")
)
