package main

import (
	"errors"

	"github.com/BurntSushi/toml"

	"github.com/l2rollup/settlement/types"
)

// config is the on-disk shape of a rollupd deployment: the initial
// validator set, the threshold mode to run under, and any tokens to
// pre-register at startup.
type config struct {
	ThresholdMode string   `toml:"threshold_mode"`
	Validators    []string `toml:"validators"`
	Tokens        []string `toml:"tokens"`
}

var errNoValidators = errors.New("rollupd: config must list at least one validator")

func loadConfig(path string) (config, error) {
	var cfg config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return config{}, err
	}
	if len(cfg.Validators) == 0 {
		return config{}, errNoValidators
	}
	return cfg, nil
}

func (c config) validatorAddresses() []types.Address {
	addrs := make([]types.Address, len(c.Validators))
	for i, v := range c.Validators {
		addrs[i] = types.HexToAddress(v)
	}
	return addrs
}

func (c config) tokenAddresses() []types.Address {
	addrs := make([]types.Address, len(c.Tokens))
	for i, v := range c.Tokens {
		addrs[i] = types.HexToAddress(v)
	}
	return addrs
}
