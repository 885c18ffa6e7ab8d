// Package userdir keeps the global mapping from a public-key identity to a device identity.
package userdir

import (
	"errors"
	"sync"
)

// ErrUserNotFound is returned when an identity is not registered.
var ErrUserNotFound = errors.New("user not found")

// User represents a registered identity.
type User struct {
	PubKeyHash string `json:"pubKeyHash"`
	MacHash    string `json:"macHash"`
}

// Directory represents an insertion-ordered table of users.
type Directory struct {
	mutex sync.RWMutex
	order []string
	users map[string]string
}

// New represents a constructor of Directory.
func New() *Directory {
	return &Directory{users: make(map[string]string)}
}

// Register inserts a user or overwrites its macHash in place.
// It reports whether the identity was already registered.
func (d *Directory) Register(pubKeyHash, macHash string) bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	_, exists := d.users[pubKeyHash]
	if !exists {
		d.order = append(d.order, pubKeyHash)
	}
	d.users[pubKeyHash] = macHash
	return exists
}

// MacHash returns the macHash of an identity.
func (d *Directory) MacHash(pubKeyHash string) (string, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	macHash, ok := d.users[pubKeyHash]
	if !ok {
		return "", ErrUserNotFound
	}
	return macHash, nil
}

// Count returns the number of registered identities.
func (d *Directory) Count() int {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return len(d.order)
}

// Position returns the registration position of an identity, or -1.
func (d *Directory) Position(pubKeyHash string) int {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	for i, h := range d.order {
		if h == pubKeyHash {
			return i
		}
	}
	return -1
}

// Users returns the registered users in registration order.
func (d *Directory) Users() []User {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	users := make([]User, 0, len(d.order))
	for _, h := range d.order {
		users = append(users, User{PubKeyHash: h, MacHash: d.users[h]})
	}
	return users
}
