package model

import (
	"io/ioutil"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Store backends of the registry
const (
	StoreEtcd   = "etcd"
	StoreBadger = "badger"
	StoreMemory = "memory"
)

// ETCDConfig represents the configuration information for a etcd cluster
type ETCDConfig struct {
	Endpoints []string `yaml:"endpoints"`
}

// AdminWebConfig represents the configuration information for a AdminWeb
type AdminWebConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// RegistryConfig represents the configuration information for the subnet registry
type RegistryConfig struct {
	Store       string `yaml:"store"`
	BadgerPath  string `yaml:"badger_path"`
	CIDRBlock   string `yaml:"cidr_block"`
	FirstOffset uint32 `yaml:"first_offset"`
}

// NATSConfig represents the configuration information for the NATS event publisher
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// Config represents the configuration information for cb-subnet
type Config struct {
	ETCD     ETCDConfig     `yaml:"etcd_cluster"`
	AdminWeb AdminWebConfig `yaml:"admin_web"`
	Registry RegistryConfig `yaml:"registry"`
	NATS     NATSConfig     `yaml:"nats"`
}

// LoadConfig represents a function to read the configuration information from a file
func LoadConfig(path string) (Config, error) {

	filename, _ := filepath.Abs(path)
	yamlFile, err := ioutil.ReadFile(filename)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read %s", filename)
	}

	var configTemp Config

	err = yaml.Unmarshal(yamlFile, &configTemp)
	if err != nil {
		return Config{}, errors.Wrapf(err, "parse %s", filename)
	}

	configTemp.setDefaults()
	return configTemp, nil
}

func (c *Config) setDefaults() {
	if c.AdminWeb.Host == "" {
		c.AdminWeb.Host = "localhost"
	}
	if c.AdminWeb.Port == "" {
		c.AdminWeb.Port = "8054"
	}
	if c.Registry.Store == "" {
		c.Registry.Store = StoreMemory
	}
	if c.Registry.CIDRBlock == "" {
		c.Registry.CIDRBlock = "10.27.16.0/24"
	}
	if c.Registry.FirstOffset == 0 {
		c.Registry.FirstOffset = 10
	}
	if c.NATS.Subject == "" {
		c.NATS.Subject = "cb-subnet.events"
	}
}
