package network

import (
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatURL(t *testing.T) {
	assert.Equal(t, "https://192.168.1.20:4443/", FormatURL("192.168.1.20", 4443))
	assert.Equal(t, "https://[fe80::1]:8443/", FormatURL("fe80::1", 8443))
}

func TestConnectURL(t *testing.T) {
	url := ConnectURL(4443)
	assert.True(t, strings.HasPrefix(url, "https://"))
	assert.True(t, strings.HasSuffix(url, ":4443/"))
}

func TestIPv4Of(t *testing.T) {
	assert.Equal(t, "10.0.0.5", ipv4Of(&net.IPNet{IP: net.ParseIP("10.0.0.5"), Mask: net.CIDRMask(24, 32)}))
	assert.Equal(t, "", ipv4Of(&net.IPAddr{IP: net.ParseIP("127.0.0.1")}))
	assert.Equal(t, "", ipv4Of(&net.IPAddr{IP: net.ParseIP("fe80::1")}))
}
