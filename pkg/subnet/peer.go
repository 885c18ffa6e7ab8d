package subnet

import "strings"

// Peer represents a host registered in a subnet.
type Peer struct {
	PubKeyHash string   `json:"pubKeyHash"`
	MacHash    string   `json:"macHash"`
	IP         string   `json:"ip"`
	Slot       int      `json:"slot"`
	Active     bool     `json:"active"`
	Neighbors  []string `json:"neighbors"`
}

// PeerInfo represents the query view of a peer.
// Neighbors is the comma-joined list of neighbor identities.
type PeerInfo struct {
	NetworkID  int    `json:"networkId"`
	PubKeyHash string `json:"pubKeyHash"`
	Neighbors  string `json:"neighbors"`
	IP         string `json:"ip"`
	Active     bool   `json:"active"`
}

// PeerOption sets optional attributes of a peer being added.
type PeerOption func(*Peer)

// WithMacHash sets the macHash of a peer being added.
func WithMacHash(macHash string) PeerOption {
	return func(p *Peer) {
		p.MacHash = macHash
	}
}

func (p Peer) clone() Peer {
	p.Neighbors = append([]string{}, p.Neighbors...)
	return p
}

func (p Peer) hasNeighbor(pubKeyHash string) bool {
	return indexOf(p.Neighbors, pubKeyHash) >= 0
}

func (p Peer) info(networkID int) PeerInfo {
	return PeerInfo{
		NetworkID:  networkID,
		PubKeyHash: p.PubKeyHash,
		Neighbors:  strings.Join(p.Neighbors, ","),
		IP:         p.IP,
		Active:     p.Active,
	}
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func without(list []string, s string) []string {
	i := indexOf(list, s)
	if i < 0 {
		return list
	}
	return append(list[:i:i], list[i+1:]...)
}
