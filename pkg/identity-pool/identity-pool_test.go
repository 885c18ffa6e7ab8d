package idpool

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPoolFirstSlots(t *testing.T) {
	p := Default()

	ip, err := p.IPFor(0)
	require.NoError(t, err)
	assert.Equal(t, "10.27.16.10/24", ip)

	ip, err = p.IPFor(1)
	require.NoError(t, err)
	assert.Equal(t, "10.27.16.11/24", ip)

	assert.Equal(t, "10.27.16.0/24", p.CIDRBlock())
}

func TestDefaultPoolExhaustion(t *testing.T) {
	p := Default()
	assert.Equal(t, 245, p.Capacity())

	ip, err := p.IPFor(244)
	require.NoError(t, err)
	assert.Equal(t, "10.27.16.254/24", ip)

	_, err = p.IPFor(245)
	assert.ErrorIs(t, err, ErrPoolExhausted)

	_, err = p.IPFor(-1)
	assert.ErrorIs(t, err, ErrPoolExhausted)
}

func TestNewPool(t *testing.T) {
	p, err := New("192.168.119.0/28", 2)
	require.NoError(t, err)
	assert.Equal(t, 13, p.Capacity())

	ip, err := p.IPFor(0)
	require.NoError(t, err)
	assert.Equal(t, "192.168.119.2/28", ip)

	ip, err = p.IPFor(12)
	require.NoError(t, err)
	assert.Equal(t, "192.168.119.14/28", ip)

	_, err = p.IPFor(13)
	assert.ErrorIs(t, err, ErrPoolExhausted)
}

func TestNewPoolInvalid(t *testing.T) {
	_, err := New("not-a-cidr", 10)
	assert.Error(t, err)

	_, err = New("fc00::/7", 10)
	assert.Error(t, err)

	_, err = New("10.0.0.0/30", 3)
	assert.Error(t, err)

	_, err = New("10.0.0.0/24", 0)
	assert.Error(t, err)
}

func TestIncrementIP(t *testing.T) {
	ip := IncrementIP(net.ParseIP("10.27.16.255"), 1)
	assert.Equal(t, "10.27.17.0", ip.String())
}
