package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delegator/testutil"
)

const scratchDir = "testdata-scratch"

func TestMain(m *testing.M) {
	testutil.WithCleanDir(m, scratchDir)
}

func writeHCL(t *testing.T, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(scratchDir, 0o755))
	path := filepath.Join(scratchDir, t.Name()+".hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Cleanup(func() { os.Remove(path) })
	return path
}

const sampleHCL = `
http = {
  host = "0.0.0.0"
  port = 8080
  cors = {
    allowed_origins = ["https://app.example.com"]
    allowed_methods = ["GET", "POST"]
    allowed_headers = ["Content-Type"]
  }
  client = {
    user_agent      = "delegator/test"
    default_timeout = "5s"
  }
}

services = {
  catalog = {
    scheme    = "https"
    authority = "catalog.internal"
    methods = {
      search = { http_method = "POST", path_and_query = "/search/" }
      lookup = { http_method = "POST", path_and_query = "/product_variants/" }
    }
  }
}

virtualhosts = {
  "www.example.com" = {
    routes = {
      "/search" = {
        cryptogram = "{\"current\":0,\"steps\":[{\"service\":\"catalog\",\"method\":\"search\"}]}"
      }
    }
  }
}
`

func TestLoadConfigParsesHTTPBlock(t *testing.T) {
	path := writeHCL(t, sampleHCL)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "delegator/test", cfg.HTTP.Client.UserAgent)
}

func TestLoadConfigParsesCORSBlock(t *testing.T) {
	path := writeHCL(t, sampleHCL)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.HTTP.CORS.AllowedOrigins)
	assert.Equal(t, []string{"GET", "POST"}, cfg.HTTP.CORS.AllowedMethods)
	assert.Equal(t, []string{"Content-Type"}, cfg.HTTP.CORS.AllowedHeaders)
}

func TestLoadConfigCORSDefaultsToZeroValue(t *testing.T) {
	path := writeHCL(t, `
http = { host = "0.0.0.0", port = 8080 }
services = {}
virtualhosts = {}
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.HTTP.CORS.AllowedOrigins)
}

func TestLoadConfigDefaultsUserAgent(t *testing.T) {
	path := writeHCL(t, `
http = { host = "0.0.0.0", port = 8080 }
services = {}
virtualhosts = {}
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, cfg.HTTP.Client.UserAgent)
}

func TestClientConfigTimeoutParsesSeconds(t *testing.T) {
	cc := ClientConfig{DefaultTimeout: "2.5s"}
	d, err := cc.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, d)
}

func TestClientConfigTimeoutDefaultsWhenUnset(t *testing.T) {
	cc := ClientConfig{}
	d, err := cc.Timeout()
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, d)
}

func TestClientConfigTimeoutRejectsBadUnit(t *testing.T) {
	cc := ClientConfig{DefaultTimeout: "30ms"}
	_, err := cc.Timeout()
	assert.Error(t, err)
}

func TestConfigServiceRegistry(t *testing.T) {
	path := writeHCL(t, sampleHCL)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	reg := cfg.ServiceRegistry()
	svc, ok := reg.Service("catalog")
	require.True(t, ok)
	assert.Equal(t, "https", svc.Scheme)
	assert.Equal(t, "catalog.internal", svc.Authority)

	meth, ok := svc.Method("search")
	require.True(t, ok)
	assert.Equal(t, "POST", meth.HTTPMethod)
	assert.Equal(t, "/search/", meth.PathAndQuery)
}

func TestConfigRouteParsesConfiguredCryptogram(t *testing.T) {
	path := writeHCL(t, sampleHCL)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	cg, ok, err := cfg.Route("www.example.com", "/search")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, cg.Steps, 1)
	assert.Equal(t, "catalog", cg.Steps[0].Service)
	assert.Equal(t, "search", cg.Steps[0].Method)
}

func TestConfigRouteMatchesExplicitHostFieldOverMapKey(t *testing.T) {
	path := writeHCL(t, `
http = { host = "0.0.0.0", port = 8080 }
services = {}
virtualhosts = {
  "storefront" = {
    host = "shop.example.com"
    routes = {
      "/search" = {
        cryptogram = "{\"current\":0,\"steps\":[{\"service\":\"catalog\",\"method\":\"search\"}]}"
      }
    }
  }
}
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	_, ok, err := cfg.Route("storefront", "/search")
	require.NoError(t, err)
	assert.False(t, ok, "the map key is a label, not a host, once an explicit host field is set")

	cg, ok, err := cfg.Route("shop.example.com", "/search")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, cg.Steps, 1)
}

func TestConfigRouteUnknownHostReturnsFalse(t *testing.T) {
	path := writeHCL(t, sampleHCL)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	_, ok, err := cfg.Route("nope.example.com", "/search")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConfigRouteUnknownPathReturnsFalse(t *testing.T) {
	path := writeHCL(t, sampleHCL)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	_, ok, err := cfg.Route("www.example.com", "/nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(scratchDir, "missing.hcl"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidHCL(t *testing.T) {
	path := writeHCL(t, `this is not valid { hcl`)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
