package common

import (
	"math/rand"
	"strings"
	"time"
)

// GenerateReference returns a short upper-case reference for admin-issued
// credits, e.g. "ADM-7K2Q9XZ".
func GenerateReference() string {
	const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	result := make([]byte, 7)
	for i := range result {
		result[i] = characters[r.Intn(len(characters))]
	}
	return "ADM-" + string(result)
}

// ShortAddress trims an on-chain address for display, keeping both ends.
func ShortAddress(addr string) string {
	if len(addr) <= 14 {
		return addr
	}
	return addr[:8] + "..." + addr[len(addr)-4:]
}

// SplitTrim splits a comma separated list and drops blanks.
func SplitTrim(s string) []string {
	if s == "" {
		return nil
	}
	var result []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
