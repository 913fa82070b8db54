package validation

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// Address checks an on-chain address before it is sent anywhere. TRON
// addresses are 34-char base58 strings starting with T; everything else is
// treated as an EVM hex address.
func Address(field, addr string, tron bool) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return New(field, fmt.Sprintf("%s is required", field))
	}
	if tron {
		if !isTronAddress(addr) {
			return New(field, fmt.Sprintf("%s is not a valid TRON address", field))
		}
		return nil
	}
	if !common.IsHexAddress(addr) {
		return New(field, fmt.Sprintf("%s is not a valid EVM address", field))
	}
	return nil
}

func isTronAddress(addr string) bool {
	if len(addr) != 34 || addr[0] != 'T' {
		return false
	}
	for _, r := range addr {
		if !strings.ContainsRune(base58Alphabet, r) {
			return false
		}
	}
	return true
}
