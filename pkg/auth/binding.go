package auth

import (
	"fmt"
	"net/netip"
	"strings"
)

// UserMetadata is the client snapshot embedded in every issued token under
// the "user_metadata" claim. It is written once at issuance.
type UserMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
}

// MetadataFor builds the metadata to embed for the given fingerprint.
func MetadataFor(fp Fingerprint) UserMetadata {
	return UserMetadata{
		IPAddress: fp.IPAddress,
		UserAgent: fp.UserAgent,
	}
}

// CheckBinding reports whether fp still matches the metadata stored in a token.
// The user agent must match exactly and the current IP must fall inside the
// stored address or network. Anything that cannot be evaluated is a mismatch.
func CheckBinding(meta UserMetadata, fp Fingerprint) error {
	if meta.UserAgent != fp.UserAgent {
		return fmt.Errorf("%w: user agent changed", ErrTokenBindingMismatch)
	}

	ok, err := IPInRange(fp.IPAddress, meta.IPAddress)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTokenBindingMismatch, err)
	}
	if !ok {
		return fmt.Errorf("%w: client address outside bound range", ErrTokenBindingMismatch)
	}
	return nil
}

// IPInRange reports whether ip is contained in allowed. allowed is either a
// single address (treated as a full-length prefix) or a CIDR network whose host
// bits are zero.
func IPInRange(ip, allowed string) (bool, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return false, fmt.Errorf("invalid client address %q", ip)
	}

	network, err := parseNetwork(allowed)
	if err != nil {
		return false, err
	}

	return network.Contains(addr.Unmap()), nil
}

func parseNetwork(s string) (netip.Prefix, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Prefix{}, fmt.Errorf("no bound address")
	}

	if !strings.Contains(s, "/") {
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("invalid bound address %q", s)
		}
		addr = addr.Unmap()
		return netip.PrefixFrom(addr, addr.BitLen()), nil
	}

	prefix, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid bound network %q", s)
	}
	if prefix.Masked() != prefix {
		return netip.Prefix{}, fmt.Errorf("bound network %q has host bits set", s)
	}
	if prefix.Addr().Is4In6() {
		// ::ffff:a.b.c.d/n with n >= 96 maps onto an IPv4 network
		if prefix.Bits() < 96 {
			return netip.Prefix{}, fmt.Errorf("bound network %q mixes address families", s)
		}
		return netip.PrefixFrom(prefix.Addr().Unmap(), prefix.Bits()-96), nil
	}
	return prefix, nil
}
