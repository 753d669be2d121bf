package internal

import (
	"crypto/md5"
	"encoding/hex"
	"net/netip"
	"strconv"
	"strings"
)

// ValidIP reports whether v is a literal IPv4 or IPv6 address. Zoned IPv6
// addresses are rejected.
func ValidIP(v string) bool {
	if v == "" {
		return false
	}
	addr, err := netip.ParseAddr(v)
	if err != nil {
		return false
	}
	return addr.Zone() == ""
}

// FirstValidIP scans comma-separated header values in order and returns the
// first entry that is a valid IP literal.
func FirstValidIP(values ...string) (string, bool) {
	for _, value := range values {
		if value == "" {
			continue
		}
		for _, part := range strings.Split(value, ",") {
			ip := strings.TrimSpace(part)
			if ValidIP(ip) {
				return ip, true
			}
		}
	}
	return "", false
}

// UnreproducibleValue hashes a clock reading into a stand-in for missing client
// context. The input is never recoverable from the output.
func UnreproducibleValue(tick int64) string {
	sum := md5.Sum([]byte(strconv.FormatInt(tick, 10)))
	return hex.EncodeToString(sum[:])
}
