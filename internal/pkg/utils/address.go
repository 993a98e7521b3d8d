package utils

import (
	"regexp"

	"github.com/ethereum/go-ethereum/common"
)

var evmAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{1,40}$`)

// NormalizeEVMAddress validates an EVM-shaped address and returns the form sent to
// upstreams. Full 40-digit addresses are returned unchanged. Shorter ones are
// left-padded to 20 bytes and checksummed.
func NormalizeEVMAddress(address string) (string, bool) {
	if !evmAddressPattern.MatchString(address) {
		return "", false
	}
	if len(address) == 42 {
		return address, true
	}
	return common.HexToAddress(address).Hex(), true
}
