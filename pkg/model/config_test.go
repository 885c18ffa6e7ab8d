package model

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(`
etcd_cluster:
  endpoints: [ "etcd-0:2379", "etcd-1:2379" ]
admin_web:
  host: "0.0.0.0"
  port: "9000"
registry:
  store: "etcd"
  cidr_block: "192.168.0.0/24"
  first_offset: 2
nats:
  url: "nats://nats:4222"
`), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"etcd-0:2379", "etcd-1:2379"}, config.ETCD.Endpoints)
	assert.Equal(t, "9000", config.AdminWeb.Port)
	assert.Equal(t, StoreEtcd, config.Registry.Store)
	assert.Equal(t, uint32(2), config.Registry.FirstOffset)
	assert.Equal(t, "nats://nats:4222", config.NATS.URL)
	assert.Equal(t, "cb-subnet.events", config.NATS.Subject)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte("admin_web:\n  port: \"8000\"\n"), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost", config.AdminWeb.Host)
	assert.Equal(t, StoreMemory, config.Registry.Store)
	assert.Equal(t, "10.27.16.0/24", config.Registry.CIDRBlock)
	assert.Equal(t, uint32(10), config.Registry.FirstOffset)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte("admin_web: [\n"), 0644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}
