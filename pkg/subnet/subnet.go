// Package subnet implements the registry of one subnet: its peers, their
// addresses and the symmetric neighbor relations between them.
//
// Only the admin of a subnet may change it. Peer and relation changes also
// require the subnet to be active, and a subnet deleted through the subnet
// manager refuses every change. Validation precedes mutation, so a failed call
// leaves the subnet untouched.
package subnet

import (
	"context"
	"encoding/json"
	"sync"

	etcdkey "github.com/cloud-barista/cb-subnet/pkg/etcd-key"
	"github.com/cloud-barista/cb-subnet/pkg/event"
	idpool "github.com/cloud-barista/cb-subnet/pkg/identity-pool"
	"github.com/cloud-barista/cb-subnet/pkg/logger"
	"github.com/cloud-barista/cb-subnet/pkg/store"
	subnetstate "github.com/cloud-barista/cb-subnet/pkg/subnet-state"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

// CBLogger represents a logger to show execution processes according to the logging level.
var CBLogger *logrus.Logger

func init() {
	CBLogger = logger.GetLogger()
}

// Snapshot represents a consistent copy of a subnet.
// It is also the record a subnet keeps in the store.
type Snapshot struct {
	ID             int    `json:"id"`
	Address        string `json:"address"`
	Admin          string `json:"admin"`
	NetworkManager string `json:"networkManager"`
	Active         bool   `json:"active"`
	Deleted        bool   `json:"deleted"`
	State          string `json:"state"`
	Peers          []Peer `json:"peers"`
}

type state struct {
	active  bool
	deleted bool
	peers   []Peer
}

func (st state) clone() state {
	peers := make([]Peer, len(st.peers))
	for i, p := range st.peers {
		peers[i] = p.clone()
	}
	st.peers = peers
	return st
}

func (st state) find(pubKeyHash string) int {
	for i, p := range st.peers {
		if p.PubKeyHash == pubKeyHash {
			return i
		}
	}
	return -1
}

// freeSlot returns the lowest slot not used by a live peer.
func (st state) freeSlot() int {
	used := make(map[int]bool, len(st.peers))
	for _, p := range st.peers {
		used[p.Slot] = true
	}
	slot := 0
	for used[slot] {
		slot++
	}
	return slot
}

// Subnet represents the peer registry of one subnet.
type Subnet struct {
	mutex sync.RWMutex

	id             int
	address        string
	admin          string
	networkManager string
	st             state

	pool    *idpool.Pool
	store   store.Store
	emitter event.Emitter
}

// Option configures a Subnet.
type Option func(*Subnet)

// WithPool assigns peer addresses from pool instead of idpool.Default().
func WithPool(pool *idpool.Pool) Option {
	return func(s *Subnet) {
		s.pool = pool
	}
}

// WithStore keeps the subnet record in st. Every change is written before it is applied.
func WithStore(st store.Store) Option {
	return func(s *Subnet) {
		s.store = st
	}
}

// WithEmitter sends the event records of the subnet to emitter.
func WithEmitter(emitter event.Emitter) Option {
	return func(s *Subnet) {
		s.emitter = emitter
	}
}

// WithAddress sets the address of the subnet instead of generating one.
func WithAddress(address string) Option {
	return func(s *Subnet) {
		s.address = address
	}
}

// New represents a constructor of Subnet.
// The subnet starts active with no peers.
func New(id int, admin, networkManager string, opts ...Option) *Subnet {
	s := &Subnet{
		id:             id,
		admin:          admin,
		networkManager: networkManager,
		st:             state{active: true},
		pool:           idpool.Default(),
		emitter:        event.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.address == "" {
		s.address = xid.New().String()
	}
	return s
}

// Restore rebuilds a subnet from its record.
func Restore(snap Snapshot, opts ...Option) *Subnet {
	opts = append([]Option{WithAddress(snap.Address)}, opts...)
	s := New(snap.ID, snap.Admin, snap.NetworkManager, opts...)
	s.st = state{
		active:  snap.Active,
		deleted: snap.Deleted,
		peers:   make([]Peer, len(snap.Peers)),
	}
	for i, p := range snap.Peers {
		s.st.peers[i] = p.clone()
	}
	return s
}

// ID returns the id assigned by the subnet manager.
func (s *Subnet) ID() int {
	return s.id
}

// Admin returns the identity allowed to change the subnet.
func (s *Subnet) Admin() string {
	return s.admin
}

// Address returns the reference of the subnet.
func (s *Subnet) Address() string {
	return s.address
}

// NetworkManager returns the address of the owning subnet manager.
func (s *Subnet) NetworkManager() string {
	return s.networkManager
}

// Active reports whether the subnet accepts peer and relation changes.
func (s *Subnet) Active() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.st.active
}

// Deleted reports whether the subnet was deleted through the subnet manager.
func (s *Subnet) Deleted() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.st.deleted
}

// PeerCount returns the number of peers.
func (s *Subnet) PeerCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.st.peers)
}

// PeerInfo returns the query view of a peer.
func (s *Subnet) PeerInfo(pubKeyHash string) (PeerInfo, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	i := s.st.find(pubKeyHash)
	if i < 0 {
		return PeerInfo{}, ErrPeerNotFound
	}
	return s.st.peers[i].info(s.id), nil
}

// Peers returns copies of the peers in insertion order.
func (s *Subnet) Peers() []Peer {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.st.clone().peers
}

// Snapshot returns a consistent copy of the subnet.
func (s *Subnet) Snapshot() Snapshot {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.snapshotOf(s.st.clone())
}

func (s *Subnet) snapshotOf(st state) Snapshot {
	return Snapshot{
		ID:             s.id,
		Address:        s.address,
		Admin:          s.admin,
		NetworkManager: s.networkManager,
		Active:         st.active,
		Deleted:        st.deleted,
		State:          subnetstate.Of(st.active, st.deleted),
		Peers:          st.peers,
	}
}

// authorize checks the tombstone, then the caller, then the active flag when required.
func (s *Subnet) authorize(caller string, requireActive bool) error {
	if s.st.deleted {
		return ErrNetworkDeleted
	}
	if caller != s.admin {
		return ErrUnauthorized
	}
	if requireActive && !s.st.active {
		return ErrInactiveNetwork
	}
	return nil
}

// commit writes next to the store, then replaces the current state with it.
func (s *Subnet) commit(ctx context.Context, next state) error {
	if s.store != nil {
		doc, err := json.Marshal(s.snapshotOf(next))
		if err != nil {
			return errors.Wrap(err, "encode subnet")
		}
		CBLogger.Tracef("Subnet record: %s", doc)
		if err := s.store.Put(ctx, etcdkey.SubnetKey(s.id), string(doc)); err != nil {
			return err
		}
	}
	s.st = next
	return nil
}

// Persist writes the current record of the subnet to its store.
func (s *Subnet) Persist(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.commit(ctx, s.st)
}

// AddPeer represents a function to add a peer with the address of the lowest free slot.
func (s *Subnet) AddPeer(ctx context.Context, caller, pubKeyHash string, opts ...PeerOption) (event.Event, error) {
	CBLogger.Debug("Start.........")
	defer CBLogger.Debug("End.........")

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.authorize(caller, true); err != nil {
		return event.Event{}, err
	}
	if s.st.find(pubKeyHash) >= 0 {
		return event.Event{}, ErrDuplicatePeer
	}

	slot := s.st.freeSlot()
	ip, err := s.pool.IPFor(slot)
	if err != nil {
		return event.Event{}, err
	}

	peer := Peer{
		PubKeyHash: pubKeyHash,
		IP:         ip,
		Slot:       slot,
		Active:     true,
		Neighbors:  []string{},
	}
	for _, opt := range opts {
		opt(&peer)
	}
	CBLogger.Tracef("Peer: %+v", peer)

	next := s.st.clone()
	next.peers = append(next.peers, peer)
	if err := s.commit(ctx, next); err != nil {
		return event.Event{}, err
	}

	return s.emitter.Emit(event.NewPeerAdded(s.id, pubKeyHash)), nil
}

// RemovePeer represents a function to remove a peer and prune it from every neighbor list.
func (s *Subnet) RemovePeer(ctx context.Context, caller, pubKeyHash string) (event.Event, error) {
	CBLogger.Debug("Start.........")
	defer CBLogger.Debug("End.........")

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.authorize(caller, true); err != nil {
		return event.Event{}, err
	}
	i := s.st.find(pubKeyHash)
	if i < 0 {
		return event.Event{}, ErrPeerNotFound
	}

	next := s.st.clone()
	next.peers = append(next.peers[:i], next.peers[i+1:]...)
	for j := range next.peers {
		next.peers[j].Neighbors = without(next.peers[j].Neighbors, pubKeyHash)
	}
	if err := s.commit(ctx, next); err != nil {
		return event.Event{}, err
	}

	return s.emitter.Emit(event.NewPeerRemoved(s.id, pubKeyHash)), nil
}

// relationPeers validates a relation change and returns the indexes of both peers.
func (s *Subnet) relationPeers(caller, mine, other string) (int, int, error) {
	if err := s.authorize(caller, true); err != nil {
		return -1, -1, err
	}
	if mine == other {
		return -1, -1, ErrSelfRelation
	}
	i, j := s.st.find(mine), s.st.find(other)
	if i < 0 || j < 0 {
		return -1, -1, ErrPeerNotFound
	}
	return i, j, nil
}

// AddPeerRelation represents a function to make two peers neighbors of each other.
// Adding an existing relation changes nothing and still succeeds.
func (s *Subnet) AddPeerRelation(ctx context.Context, caller, mine, other string) (event.Event, error) {
	CBLogger.Debug("Start.........")
	defer CBLogger.Debug("End.........")

	s.mutex.Lock()
	defer s.mutex.Unlock()

	i, j, err := s.relationPeers(caller, mine, other)
	if err != nil {
		return event.Event{}, err
	}

	if !s.st.peers[i].hasNeighbor(other) || !s.st.peers[j].hasNeighbor(mine) {
		next := s.st.clone()
		if !next.peers[i].hasNeighbor(other) {
			next.peers[i].Neighbors = append(next.peers[i].Neighbors, other)
		}
		if !next.peers[j].hasNeighbor(mine) {
			next.peers[j].Neighbors = append(next.peers[j].Neighbors, mine)
		}
		if err := s.commit(ctx, next); err != nil {
			return event.Event{}, err
		}
	}

	return s.emitter.Emit(event.NewPeerRelationAdded(s.id, mine, other)), nil
}

// RemovePeerRelation represents a function to remove the relation between two peers in both directions.
func (s *Subnet) RemovePeerRelation(ctx context.Context, caller, mine, other string) (event.Event, error) {
	CBLogger.Debug("Start.........")
	defer CBLogger.Debug("End.........")

	s.mutex.Lock()
	defer s.mutex.Unlock()

	i, j, err := s.relationPeers(caller, mine, other)
	if err != nil {
		return event.Event{}, err
	}
	if !s.st.peers[i].hasNeighbor(other) && !s.st.peers[j].hasNeighbor(mine) {
		return event.Event{}, ErrRelationNotFound
	}

	next := s.st.clone()
	next.peers[i].Neighbors = without(next.peers[i].Neighbors, other)
	next.peers[j].Neighbors = without(next.peers[j].Neighbors, mine)
	if err := s.commit(ctx, next); err != nil {
		return event.Event{}, err
	}

	return s.emitter.Emit(event.NewPeerRelationRemoved(s.id, mine, other)), nil
}

// UpdateNetworkState represents a function to activate or deactivate the subnet.
// An inactive subnet can be activated again.
func (s *Subnet) UpdateNetworkState(ctx context.Context, caller string, active bool) (event.Event, error) {
	CBLogger.Debug("Start.........")
	defer CBLogger.Debug("End.........")

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.authorize(caller, false); err != nil {
		return event.Event{}, err
	}

	next := s.st.clone()
	next.active = active
	if err := s.commit(ctx, next); err != nil {
		return event.Event{}, err
	}

	return s.emitter.Emit(event.NewNetworkStateUpdated(s.id, active)), nil
}

// MarkDeleted sets the tombstone of the subnet. It is called by the subnet manager,
// which checks the caller first; in-flight changes complete before it returns.
func (s *Subnet) MarkDeleted(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.st.deleted {
		return ErrNetworkDeleted
	}
	next := s.st.clone()
	next.deleted = true
	return s.commit(ctx, next)
}
