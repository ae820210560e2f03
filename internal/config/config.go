package config

import (
	"os"

	"github.com/go-yaml/yaml"
)

type Config struct {
	NodeInfo NodeInfo `yaml:"nodeInfo"`
	Server   Server   `yaml:"server"`
}

type NodeInfo struct {
	FQDN string `yaml:"fqdn"`
}

type Server struct {
	Bind          string `yaml:"bind"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	CacheBackend  string `yaml:"cacheBackend"` // redis, memcached, local
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.Bind == "" {
		config.Server.Bind = ":8000"
	}
	if config.Server.CacheBackend == "" {
		config.Server.CacheBackend = "local"
	}

	return config, nil
}
