// Package manager implements the subnet manager: the directory that creates
// and deletes subnets and keeps the global user directory.
//
// The manager hands out subnets; later peer and relation calls go to the
// subnet itself, which checks its own admin, active flag and tombstone.
package manager

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	etcdkey "github.com/cloud-barista/cb-subnet/pkg/etcd-key"
	"github.com/cloud-barista/cb-subnet/pkg/event"
	idpool "github.com/cloud-barista/cb-subnet/pkg/identity-pool"
	"github.com/cloud-barista/cb-subnet/pkg/logger"
	"github.com/cloud-barista/cb-subnet/pkg/store"
	"github.com/cloud-barista/cb-subnet/pkg/subnet"
	userdir "github.com/cloud-barista/cb-subnet/pkg/user-directory"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

// CBLogger represents a logger to show execution processes according to the logging level.
var CBLogger *logrus.Logger

func init() {
	CBLogger = logger.GetLogger()
}

// ErrNetworkNotFound is returned when no live subnet has the id.
var ErrNetworkNotFound = errors.New("network not found")

// record is the manager's own entry in the store.
type record struct {
	Address string `json:"address"`
}

// userRecord is the entry of a user in the store.
type userRecord struct {
	PubKeyHash string `json:"pubKeyHash"`
	MacHash    string `json:"macHash"`
	Position   int    `json:"position"`
}

// Manager represents the subnet manager.
type Manager struct {
	mutex    sync.RWMutex
	address  string
	networks []*subnet.Subnet
	count    int

	userMutex sync.Mutex
	users     *userdir.Directory

	pool    *idpool.Pool
	store   store.Store
	emitter event.Emitter
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore keeps the manager, its subnets and its users in st.
func WithStore(st store.Store) Option {
	return func(m *Manager) {
		m.store = st
	}
}

// WithEmitter sends the event records of the manager and its subnets to emitter.
func WithEmitter(emitter event.Emitter) Option {
	return func(m *Manager) {
		m.emitter = emitter
	}
}

// WithPool makes the subnets assign peer addresses from pool.
func WithPool(pool *idpool.Pool) Option {
	return func(m *Manager) {
		m.pool = pool
	}
}

// WithAddress sets the address of the manager instead of generating one.
func WithAddress(address string) Option {
	return func(m *Manager) {
		m.address = address
	}
}

// New represents a constructor of Manager.
func New(opts ...Option) *Manager {
	m := &Manager{
		users:   userdir.New(),
		pool:    idpool.Default(),
		emitter: event.Discard,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.address == "" {
		m.address = xid.New().String()
	}
	return m
}

func (m *Manager) subnetOptions() []subnet.Option {
	opts := []subnet.Option{subnet.WithPool(m.pool), subnet.WithEmitter(m.emitter)}
	if m.store != nil {
		opts = append(opts, subnet.WithStore(m.store))
	}
	return opts
}

// Address returns the address of the manager.
func (m *Manager) Address() string {
	return m.address
}

// Load represents a function to restore the manager, its subnets and its users from the store.
// The manager record is created when the store has none.
func (m *Manager) Load(ctx context.Context) error {
	CBLogger.Debug("Start.........")
	defer CBLogger.Debug("End.........")

	if m.store == nil {
		return nil
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	doc, err := m.store.Get(ctx, etcdkey.SubnetManager)
	switch {
	case errors.Is(err, store.ErrNotFound):
		doc, _ := json.Marshal(record{Address: m.address})
		if err := m.store.Put(ctx, etcdkey.SubnetManager, string(doc)); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		var r record
		if err := json.Unmarshal([]byte(doc), &r); err != nil {
			return pkgerrors.Wrap(err, "decode subnet manager")
		}
		m.address = r.Address
	}

	kvs, err := m.store.GetWithPrefix(ctx, etcdkey.Subnet+"/")
	if err != nil {
		return err
	}
	networks := make([]*subnet.Subnet, 0, len(kvs))
	count := 0
	for i, kv := range kvs {
		var snap subnet.Snapshot
		if err := json.Unmarshal([]byte(kv.Value), &snap); err != nil {
			return pkgerrors.Wrapf(err, "decode %s", kv.Key)
		}
		if snap.ID != i {
			return pkgerrors.Errorf("subnet records are not contiguous: expected id %d, got %d", i, snap.ID)
		}
		networks = append(networks, subnet.Restore(snap, m.subnetOptions()...))
		if !snap.Deleted {
			count++
		}
	}

	kvs, err = m.store.GetWithPrefix(ctx, etcdkey.User+"/")
	if err != nil {
		return err
	}
	records := make([]userRecord, 0, len(kvs))
	for _, kv := range kvs {
		var r userRecord
		if err := json.Unmarshal([]byte(kv.Value), &r); err != nil {
			return pkgerrors.Wrapf(err, "decode %s", kv.Key)
		}
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Position < records[j].Position })
	users := userdir.New()
	for _, r := range records {
		users.Register(r.PubKeyHash, r.MacHash)
	}

	m.networks = networks
	m.count = count
	m.userMutex.Lock()
	m.users = users
	m.userMutex.Unlock()

	CBLogger.Infof("Loaded %d subnets (%d live) and %d users", len(networks), count, users.Count())
	return nil
}

// CreateNetwork represents a function to create a subnet administered by caller.
// Subnet ids start at 0 and are never reused.
func (m *Manager) CreateNetwork(ctx context.Context, caller string) (*subnet.Subnet, event.Event, error) {
	CBLogger.Debug("Start.........")
	defer CBLogger.Debug("End.........")

	m.mutex.Lock()
	defer m.mutex.Unlock()

	id := len(m.networks)
	sn := subnet.New(id, caller, m.address, m.subnetOptions()...)
	if err := sn.Persist(ctx); err != nil {
		return nil, event.Event{}, err
	}

	m.networks = append(m.networks, sn)
	m.count++
	CBLogger.Tracef("Subnet %d (%s) created by %s", id, sn.Address(), caller)

	return sn, m.emitter.Emit(event.NewNetworkCreated(id, sn.Address(), caller)), nil
}

// DeleteNetwork represents a function to delete a subnet. Only its admin may delete it.
// The subnet stays enumerable and refuses every later change.
func (m *Manager) DeleteNetwork(ctx context.Context, id int, caller string) (event.Event, error) {
	CBLogger.Debug("Start.........")
	defer CBLogger.Debug("End.........")

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if id < 0 || id >= len(m.networks) || m.networks[id].Deleted() {
		return event.Event{}, ErrNetworkNotFound
	}
	sn := m.networks[id]
	if caller != sn.Admin() {
		return event.Event{}, subnet.ErrUnauthorized
	}

	if err := sn.MarkDeleted(ctx); err != nil {
		if errors.Is(err, subnet.ErrNetworkDeleted) {
			return event.Event{}, ErrNetworkNotFound
		}
		return event.Event{}, err
	}
	m.count--

	return m.emitter.Emit(event.NewNetworkDeleted(id, sn.Admin())), nil
}

// NetworkCount returns the number of live subnets.
func (m *Manager) NetworkCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.count
}

// Network returns the subnet with the id, deleted or not.
func (m *Manager) Network(id int) (*subnet.Subnet, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if id < 0 || id >= len(m.networks) {
		return nil, ErrNetworkNotFound
	}
	return m.networks[id], nil
}

// Networks returns every subnet in id order.
func (m *Manager) Networks() []*subnet.Subnet {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return append([]*subnet.Subnet{}, m.networks...)
}

// RegisterUser represents a function to register a user or overwrite its macHash.
func (m *Manager) RegisterUser(ctx context.Context, pubKeyHash, macHash string) (event.Event, error) {
	CBLogger.Debug("Start.........")
	defer CBLogger.Debug("End.........")

	m.userMutex.Lock()
	defer m.userMutex.Unlock()

	if m.store != nil {
		position := m.users.Position(pubKeyHash)
		if position < 0 {
			position = m.users.Count()
		}
		doc, err := json.Marshal(userRecord{PubKeyHash: pubKeyHash, MacHash: macHash, Position: position})
		if err != nil {
			return event.Event{}, pkgerrors.Wrap(err, "encode user")
		}
		if err := m.store.Put(ctx, etcdkey.UserKey(pubKeyHash), string(doc)); err != nil {
			return event.Event{}, err
		}
	}

	if m.users.Register(pubKeyHash, macHash) {
		CBLogger.Tracef("User %s overwritten", pubKeyHash)
	}

	return m.emitter.Emit(event.NewUserRegistered(pubKeyHash, macHash)), nil
}

// UserCount returns the number of registered users.
func (m *Manager) UserCount() int {
	return m.directory().Count()
}

// UserMacHash returns the macHash of a user.
func (m *Manager) UserMacHash(pubKeyHash string) (string, error) {
	return m.directory().MacHash(pubKeyHash)
}

// Users returns the registered users in registration order.
func (m *Manager) Users() []userdir.User {
	return m.directory().Users()
}

func (m *Manager) directory() *userdir.Directory {
	m.userMutex.Lock()
	defer m.userMutex.Unlock()
	return m.users
}
