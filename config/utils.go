package config

import (
	"errors"
	"fmt"

	"github.com/libsv/go-p2p/wire"
)

var ErrConfigUnknownNetwork = errors.New("unknown bitcoin network")

func GetNetwork(networkStr string) (wire.BitcoinNet, error) {
	switch networkStr {
	case "mainnet":
		return wire.MainNet, nil
	case "testnet":
		return wire.TestNet3, nil
	case "regtest":
		return wire.TestNet, nil
	}

	return 0, errors.Join(ErrConfigUnknownNetwork, fmt.Errorf("network: %s", networkStr))
}

// PeerAddresses flattens the configured peers into dialable addresses.
func (c *SentinelConfig) PeerAddresses() []string {
	addresses := make([]string, 0, len(c.Peers))
	for _, peer := range c.Peers {
		addresses = append(addresses, peer.Address())
	}

	return addresses
}
