package etcdkey

import "fmt"

const (
	// SubnetRegistry is a constant variable of "/registry/cb-subnet" key
	SubnetRegistry = "/registry/cb-subnet"

	// SubnetManager is a constant variable of "/registry/cb-subnet/manager" key
	SubnetManager = SubnetRegistry + "/manager"

	// Subnet is a constant variable of "/registry/cb-subnet/subnet" key
	Subnet = SubnetRegistry + "/subnet"

	// User is a constant variable of "/registry/cb-subnet/user" key
	User = SubnetRegistry + "/user"

	// Event is a constant variable of "/registry/cb-subnet/event" key
	Event = SubnetRegistry + "/event"
)

// SubnetKey returns the key of a subnet record, e.g., "/registry/cb-subnet/subnet/0000000007".
// Ids are zero-padded so that a prefix scan returns the subnets in id order.
func SubnetKey(networkID int) string {
	return fmt.Sprintf("%s/%010d", Subnet, networkID)
}

// UserKey returns the key of a user record.
func UserKey(pubKeyHash string) string {
	return User + "/" + pubKeyHash
}

// EventKey returns the key of an event record, zero-padded for ordered scans.
func EventKey(sequence uint64) string {
	return fmt.Sprintf("%s/%020d", Event, sequence)
}
