// Package idpool assigns peer IP addresses within a subnet.
//
// An address is a pure function of a slot index: slot i of the default pool is
// "10.27.16.{10+i}/24". The pool never wraps; once a candidate reaches the
// broadcast address of the block, ErrPoolExhausted is returned.
package idpool

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
)

const (
	// DefaultCIDRBlock is the private block peers are addressed from.
	DefaultCIDRBlock = "10.27.16.0/24"
	// DefaultFirstOffset is the host offset of slot 0 within the block.
	DefaultFirstOffset = 10
)

// ErrPoolExhausted is returned when a slot index falls outside of the address block.
var ErrPoolExhausted = errors.New("identity pool exhausted")

// Pool represents a deterministic allocator of IP/CIDR strings over an IPv4 block.
type Pool struct {
	cidrBlock   string
	networkIP   net.IP
	firstIP     uint32
	lastIP      uint32
	cidrPrefix  int
	firstOffset uint32
}

var defaultPool = mustNew(DefaultCIDRBlock, DefaultFirstOffset)

// Default returns the pool of DefaultCIDRBlock starting at DefaultFirstOffset.
func Default() *Pool {
	return defaultPool
}

// New represents a constructor of Pool.
// firstOffset is the host offset of slot 0, e.g., 10 makes slot 0 "x.x.x.10".
func New(cidrBlock string, firstOffset uint32) (*Pool, error) {
	_, ipv4Net, err := net.ParseCIDR(cidrBlock)
	if err != nil {
		return nil, fmt.Errorf("parse CIDR block %q: %w", cidrBlock, err)
	}
	ip := ipv4Net.IP.To4()
	if ip == nil {
		return nil, fmt.Errorf("CIDR block %q is not IPv4", cidrBlock)
	}

	// Get NetworkAddress(uint32) (The first IP address of this block)
	firstIP := binary.BigEndian.Uint32(ip)

	// Get Subnet Mask(uint32) from IPNet struct
	subnetMask := binary.BigEndian.Uint32(ipv4Net.Mask)

	// Get BroadcastAddress(uint32) (The last IP address of this block)
	lastIP := (firstIP & subnetMask) | (subnetMask ^ 0xffffffff)

	if firstOffset == 0 || uint64(firstIP)+uint64(firstOffset) >= uint64(lastIP) {
		return nil, fmt.Errorf("first offset %d does not fit in %q", firstOffset, cidrBlock)
	}

	cidrPrefix, _ := ipv4Net.Mask.Size()

	return &Pool{
		cidrBlock:   ipv4Net.String(),
		networkIP:   ip,
		firstIP:     firstIP,
		lastIP:      lastIP,
		cidrPrefix:  cidrPrefix,
		firstOffset: firstOffset,
	}, nil
}

func mustNew(cidrBlock string, firstOffset uint32) *Pool {
	p, err := New(cidrBlock, firstOffset)
	if err != nil {
		panic(err)
	}
	return p
}

// CIDRBlock returns the address block of the pool.
func (p *Pool) CIDRBlock() string {
	return p.cidrBlock
}

// Capacity returns the number of slots of the pool.
func (p *Pool) Capacity() int {
	return int(p.lastIP - p.firstIP - p.firstOffset)
}

// IPFor represents a function to get the host IP CIDR block of a slot index, e.g., "10.27.16.10/24".
// The network address and the broadcast address are never assigned.
func (p *Pool) IPFor(index int) (string, error) {
	if index < 0 || index >= p.Capacity() {
		return "", fmt.Errorf("%w: slot %d, capacity %d", ErrPoolExhausted, index, p.Capacity())
	}

	ip := IncrementIP(p.networkIP, uint(p.firstOffset)+uint(index))

	// Create Host IP CIDR Block
	return fmt.Sprint(ip, "/", p.cidrPrefix), nil
}

// IncrementIP represents a function to increase IP by input number
func IncrementIP(ip net.IP, inc uint) net.IP {
	i := ip.To4()
	v := uint(i[0])<<24 + uint(i[1])<<16 + uint(i[2])<<8 + uint(i[3])
	v += inc
	v3 := byte(v & 0xFF)
	v2 := byte((v >> 8) & 0xFF)
	v1 := byte((v >> 16) & 0xFF)
	v0 := byte((v >> 24) & 0xFF)
	return net.IPv4(v0, v1, v2, v3)
}
