package operator

import (
	"encoding/binary"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// parseIPv4 parses a dotted-quad IPv4 address into its 32-bit big-endian
// integer value.
func parseIPv4(s string) (uint32, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return 0, fmt.Errorf("invalid IPv4 address %q: %w", s, err)
	}
	if !addr.Is4() {
		return 0, fmt.Errorf("invalid IPv4 address %q: not a 4-byte address", s)
	}
	b := addr.As4()
	return binary.BigEndian.Uint32(b[:]), nil
}

// parseIPv4Mask parses a network mask given either as a dotted quad
// ("255.255.0.0") or as a prefix length ("16") into its 32-bit integer form.
// Both spellings of the same network yield the identical mask.
func parseIPv4Mask(s string) (uint32, error) {
	if strings.Contains(s, ".") {
		return parseIPv4(s)
	}

	prefix, err := strconv.Atoi(s)
	if err != nil || prefix < 0 || prefix > 32 {
		return 0, fmt.Errorf("invalid prefix length %q", s)
	}
	if prefix == 0 {
		return 0, nil
	}
	return ^uint32(0) << (32 - prefix), nil
}
