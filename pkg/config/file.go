package config

import (
	"github.com/BurntSushi/toml"
)

// fileConfig is the shape of the optional TOML settings file. Azure
// credentials are not accepted here, they only come from the environment.
type fileConfig struct {
	ListenAddr string `toml:"listen_addr"`
	Debug      *bool  `toml:"debug"`
	Persona    string `toml:"persona"`
}

func loadFile(path string) (*fileConfig, error) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

func (fc *fileConfig) apply(cfg *Config) {
	if fc.ListenAddr != "" {
		cfg.ListenAddr = fc.ListenAddr
	}
	if fc.Debug != nil {
		cfg.Debug = *fc.Debug
	}
	if fc.Persona != "" {
		cfg.Persona = fc.Persona
	}
}
