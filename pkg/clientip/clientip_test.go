package clientip

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealClientIP(t *testing.T) {
	cases := map[string]string{
		"10.0.0.1:5432":              "10.0.0.1",
		"[2001:db8::1]:443":          "2001:db8::1",
		"[fe80::1%eth0]:80":          "fe80::1",
		"[2001:0db8:0000::0001]:443": "2001:db8::1",
		"not-an-addr":                "not-an-addr",
	}
	for remote, want := range cases {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = remote
		assert.Equal(t, want, RealClientIP(r), remote)
	}
}

func TestRateLimitKey(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.7:1234"
	assert.Equal(t, "192.0.2.7", RateLimitKey(r))

	a := httptest.NewRequest("GET", "/", nil)
	a.RemoteAddr = "[2001:db8:1:2:aaaa::1]:443"
	b := httptest.NewRequest("GET", "/", nil)
	b.RemoteAddr = "[2001:db8:1:2:bbbb::9]:443"
	assert.Equal(t, "2001:db8:1:2::/64", RateLimitKey(a))
	assert.Equal(t, RateLimitKey(a), RateLimitKey(b))
}
