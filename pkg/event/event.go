// Package event defines the change records emitted by subnets and the subnet manager.
//
// Every successful mutating operation emits exactly one Event. The Log is the
// append-only channel through which external collaborators (indexers, auditors,
// the admin web, NATS) observe changes.
package event

import "time"

// Name is the name of an event record.
type Name string

const (
	// NetworkCreated is emitted when the subnet manager creates a subnet.
	NetworkCreated Name = "NetworkCreated"
	// NetworkDeleted is emitted when the subnet manager deletes a subnet.
	NetworkDeleted Name = "NetworkDeleted"
	// NetworkStateUpdated is emitted when a subnet's admin toggles its active flag.
	NetworkStateUpdated Name = "NetworkStateUpdated"
	// PeerAdded is emitted when a peer joins a subnet.
	PeerAdded Name = "PeerAdded"
	// PeerRemoved is emitted when a peer leaves a subnet.
	PeerRemoved Name = "PeerRemoved"
	// PeerRelationAdded is emitted when two peers become neighbors.
	PeerRelationAdded Name = "PeerRelationAdded"
	// PeerRelationRemoved is emitted when two peers stop being neighbors.
	PeerRelationRemoved Name = "PeerRelationRemoved"
	// UserRegistered is emitted when a user is registered in the user directory.
	UserRegistered Name = "UserRegistered"
)

// Args represents the arguments of an event record.
// NetworkID is nil for records that are not scoped to a subnet.
type Args struct {
	NetworkID       *int   `json:"networkId,omitempty"`
	NetworkContract string `json:"networkContract,omitempty"`
	Admin           string `json:"admin,omitempty"`
	PubKeyHash      string `json:"pubKeyHash,omitempty"`
	PubKeyHashMine  string `json:"pubKeyHashMine,omitempty"`
	PubKeyHashOther string `json:"pubKeyHashOther,omitempty"`
	MacHash         string `json:"macHash,omitempty"`
	Active          *bool  `json:"active,omitempty"`
}

// Event represents a structured change record.
// ID, Sequence and Timestamp are set by the Log on emission.
type Event struct {
	ID        string    `json:"id"`
	Sequence  uint64    `json:"sequence"`
	Name      Name      `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Args      Args      `json:"args"`
}

// Emitter is implemented by anything that accepts event records.
// Emit returns the record as it was recorded.
type Emitter interface {
	Emit(e Event) Event
}

// Discard is an Emitter that records nothing.
var Discard Emitter = discard{}

type discard struct{}

func (discard) Emit(e Event) Event { return e }

func networkID(id int) *int {
	return &id
}

// NewNetworkCreated builds a NetworkCreated record.
func NewNetworkCreated(id int, networkContract, admin string) Event {
	return Event{Name: NetworkCreated, Args: Args{NetworkID: networkID(id), NetworkContract: networkContract, Admin: admin}}
}

// NewNetworkDeleted builds a NetworkDeleted record.
func NewNetworkDeleted(id int, admin string) Event {
	return Event{Name: NetworkDeleted, Args: Args{NetworkID: networkID(id), Admin: admin}}
}

// NewNetworkStateUpdated builds a NetworkStateUpdated record.
func NewNetworkStateUpdated(id int, active bool) Event {
	return Event{Name: NetworkStateUpdated, Args: Args{NetworkID: networkID(id), Active: &active}}
}

// NewPeerAdded builds a PeerAdded record.
func NewPeerAdded(id int, pubKeyHash string) Event {
	return Event{Name: PeerAdded, Args: Args{NetworkID: networkID(id), PubKeyHash: pubKeyHash}}
}

// NewPeerRemoved builds a PeerRemoved record.
func NewPeerRemoved(id int, pubKeyHash string) Event {
	return Event{Name: PeerRemoved, Args: Args{NetworkID: networkID(id), PubKeyHash: pubKeyHash}}
}

// NewPeerRelationAdded builds a PeerRelationAdded record, identities in call order.
func NewPeerRelationAdded(id int, mine, other string) Event {
	return Event{Name: PeerRelationAdded, Args: Args{NetworkID: networkID(id), PubKeyHashMine: mine, PubKeyHashOther: other}}
}

// NewPeerRelationRemoved builds a PeerRelationRemoved record, identities in call order.
func NewPeerRelationRemoved(id int, mine, other string) Event {
	return Event{Name: PeerRelationRemoved, Args: Args{NetworkID: networkID(id), PubKeyHashMine: mine, PubKeyHashOther: other}}
}

// NewUserRegistered builds a UserRegistered record.
func NewUserRegistered(pubKeyHash, macHash string) Event {
	return Event{Name: UserRegistered, Args: Args{PubKeyHash: pubKeyHash, MacHash: macHash}}
}
