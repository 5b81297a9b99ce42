package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckBinding(t *testing.T) {
	meta := UserMetadata{IPAddress: "198.51.100.7", UserAgent: "Mozilla/5.0 A"}

	tests := []struct {
		name    string
		meta    UserMetadata
		fp      Fingerprint
		wantErr bool
	}{
		{"same address and agent", meta, Fingerprint{"198.51.100.7", "Mozilla/5.0 A"}, false},
		{"different address", meta, Fingerprint{"203.0.113.9", "Mozilla/5.0 A"}, true},
		{"different agent", meta, Fingerprint{"198.51.100.7", "Mozilla/5.0 B"}, true},
		{"agent match is case sensitive", meta, Fingerprint{"198.51.100.7", "mozilla/5.0 a"}, true},
		{"empty agent matches empty agent", UserMetadata{IPAddress: "198.51.100.7"}, Fingerprint{"198.51.100.7", ""}, false},
		{"inside stored network", UserMetadata{"10.0.0.0/24", "ua"}, Fingerprint{"10.0.0.77", "ua"}, false},
		{"outside stored network", UserMetadata{"10.0.0.0/24", "ua"}, Fingerprint{"10.0.1.1", "ua"}, true},
		{"ipv6 network", UserMetadata{"2001:db8::/32", "ua"}, Fingerprint{"2001:db8:1::5", "ua"}, false},
		{"mapped client address", meta, Fingerprint{"::ffff:198.51.100.7", "Mozilla/5.0 A"}, false},
		{"family mismatch", UserMetadata{"2001:db8::/32", "ua"}, Fingerprint{"10.0.0.1", "ua"}, true},
		{"malformed client address", meta, Fingerprint{"not-an-ip", "Mozilla/5.0 A"}, true},
		{"empty client address", meta, Fingerprint{"", "Mozilla/5.0 A"}, true},
		{"malformed stored address", UserMetadata{"nonsense", "ua"}, Fingerprint{"10.0.0.1", "ua"}, true},
		{"missing stored address", UserMetadata{"", "ua"}, Fingerprint{"10.0.0.1", "ua"}, true},
		{"stored network with host bits", UserMetadata{"10.0.0.1/24", "ua"}, Fingerprint{"10.0.0.1", "ua"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBinding(tt.meta, tt.fp)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTokenBindingMismatch)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIPInRange(t *testing.T) {
	t.Run("every address of a /24 is contained", func(t *testing.T) {
		for _, ip := range []string{"10.0.0.0", "10.0.0.1", "10.0.0.128", "10.0.0.255"} {
			ok, err := IPInRange(ip, "10.0.0.0/24")
			assert.NoError(t, err)
			assert.True(t, ok, ip)
		}
	})

	t.Run("single address degenerates to equality", func(t *testing.T) {
		ok, err := IPInRange("198.51.100.7", "198.51.100.7")
		assert.NoError(t, err)
		assert.True(t, ok)

		ok, err = IPInRange("198.51.100.8", "198.51.100.7")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("mapped ipv4 network", func(t *testing.T) {
		ok, err := IPInRange("10.0.0.9", "::ffff:10.0.0.0/120")
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("parse failures are errors", func(t *testing.T) {
		_, err := IPInRange("1.2.3", "10.0.0.0/24")
		assert.Error(t, err)

		_, err = IPInRange("10.0.0.1", "10.0.0.0/33")
		assert.Error(t, err)
	})
}

func TestMetadataFor(t *testing.T) {
	meta := MetadataFor(Fingerprint{IPAddress: "198.51.100.7", UserAgent: "curl/8.0"})
	assert.Equal(t, UserMetadata{IPAddress: "198.51.100.7", UserAgent: "curl/8.0"}, meta)
}
