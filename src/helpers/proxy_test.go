package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProxyManagerRotation(t *testing.T) {
	pm := NewProxyManager("10.0.0.1:3128, https://10.0.0.2:443,,ftp://bad", "agent/1.0")
	assert.True(t, pm.HasProxies())

	p, err := pm.GetCurrentProxy()
	assert.NoError(t, err)
	assert.Equal(t, "http://10.0.0.1:3128", p)

	pm.RotateProxy()
	p, _ = pm.GetCurrentProxy()
	assert.Equal(t, "https://10.0.0.2:443", p)

	pm.RotateProxy()
	p, _ = pm.GetCurrentProxy()
	assert.Equal(t, "http://10.0.0.1:3128", p)
	assert.Equal(t, "agent/1.0", pm.GetUserAgent())
}

func TestProxyManagerEmpty(t *testing.T) {
	pm := NewProxyManager("", "")
	assert.False(t, pm.HasProxies())
	p, err := pm.GetCurrentProxy()
	assert.NoError(t, err)
	assert.Empty(t, p)
	assert.Equal(t, "Go-http-client/1.1", pm.GetUserAgent())
}
