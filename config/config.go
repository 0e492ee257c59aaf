// Package config loads the delegator's HCL configuration file: the HTTP
// listener, the outbound service registry, the virtualhost routing table,
// and the event topics a cryptogram step may publish to.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"encoding/json"

	"delegator/cryptogram"
)

// Config is the fully decoded contents of a delegator.hcl file.
type Config struct {
	HTTP         HTTPConfig                   `json:"http"`
	Tracing      *TracingConfig               `json:"tracing,omitempty"`
	Services     map[string]ServiceConfig     `json:"services"`
	Virtualhosts map[string]VirtualhostConfig `json:"virtualhosts"`
	Events       map[string]EventTopicConfig  `json:"events,omitempty"`
}

// HTTPConfig controls the inbound listener.
type HTTPConfig struct {
	Host   string       `json:"host,omitempty"`
	Port   int          `json:"port,omitempty"`
	CORS   CORSConfig   `json:"cors,omitempty"`
	Client ClientConfig `json:"client,omitempty"`
}

// CORSConfig controls the inbound listener's CORS policy. Empty fields
// fall back to the permissive defaults the front end has always applied
// (allow any origin/method/header).
type CORSConfig struct {
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
	AllowedMethods []string `json:"allowed_methods,omitempty"`
	AllowedHeaders []string `json:"allowed_headers,omitempty"`
}

// ClientConfig controls the outbound HTTP invoker.
type ClientConfig struct {
	UserAgent      string `json:"user_agent,omitempty"`
	DefaultTimeout string `json:"default_timeout,omitempty"` // e.g. "30s"
}

// Timeout parses DefaultTimeout, falling back to DefaultTimeout (the
// package constant) when unset.
func (c ClientConfig) Timeout() (time.Duration, error) {
	if c.DefaultTimeout == "" {
		return DefaultTimeout, nil
	}
	return parseSeconds(c.DefaultTimeout)
}

// TracingConfig controls OpenTelemetry tracing exporter and options.
type TracingConfig struct {
	Exporter    string `json:"exporter,omitempty"` // "stdout" (default) or "otlp"
	Endpoint    string `json:"endpoint,omitempty"`
	ServiceName string `json:"service_name,omitempty"`
}

// ServiceConfig is one backend a cryptogram step may call into.
type ServiceConfig struct {
	Scheme       string                 `json:"scheme"`
	Authority    string                 `json:"authority"`
	Methods      map[string]MethodConfig `json:"methods"`
	Virtualhosts []string               `json:"virtualhosts,omitempty"`
}

// MethodConfig is one named operation on a service.
type MethodConfig struct {
	HTTPMethod   string `json:"http_method"`
	PathAndQuery string `json:"path_and_query"`
}

// VirtualhostConfig groups routes served under one Host header value. The
// map key under Config.Virtualhosts is a label for the virtualhost block;
// Host is the actual value matched against the inbound Host header.
type VirtualhostConfig struct {
	Host   string                 `json:"host,omitempty"`
	Routes map[string]RouteConfig `json:"routes"`
}

// RouteConfig names a preconfigured edge route's cryptogram template,
// expressed as jq-lite-bearing JSON source text.
type RouteConfig struct {
	Cryptogram string `json:"cryptogram"`
}

// EventTopicConfig names where a step's emit_event call publishes to.
type EventTopicConfig struct {
	QueueURL string `json:"queue_url"`
}

// parseSeconds parses a duration expressed as "<float>s", the only unit
// the config format accepts for timeouts.
func parseSeconds(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "s") {
		return 0, fmt.Errorf("config: duration %q must be of the form \"<seconds>s\"", s)
	}
	secs, err := strconv.ParseFloat(strings.TrimSuffix(s, "s"), 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// LoadConfig parses an HCL config file at path into a Config. It walks the
// HCL body's top-level attributes, evaluates each into a cty.Value, then
// round-trips the assembled object through go-cty's JSON encoding so the
// result can be unmarshaled into the ordinary Go structs above.
func LoadConfig(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: parse %s: %w", path, diags)
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: %s: %w", path, diags)
	}

	vals := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("config: %s: attribute %q: %w", path, name, diags)
		}
		vals[name] = v
	}

	obj := cty.ObjectVal(vals)
	raw, err := ctyjson.Marshal(obj, obj.Type())
	if err != nil {
		return nil, fmt.Errorf("config: %s: encode: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: %s: decode: %w", path, err)
	}
	if cfg.HTTP.Client.UserAgent == "" {
		cfg.HTTP.Client.UserAgent = DefaultUserAgent
	}
	return &cfg, nil
}

// ServiceRegistry builds a cryptogram.ServiceRegistry from the configured
// services, translating MethodConfig into cryptogram.MethodDef.
func (c *Config) ServiceRegistry() cryptogram.ServiceRegistry {
	reg := make(cryptogram.ServiceRegistry, len(c.Services))
	for name, svc := range c.Services {
		methods := make(map[string]cryptogram.MethodDef, len(svc.Methods))
		for mname, m := range svc.Methods {
			methods[mname] = cryptogram.MethodDef{
				HTTPMethod:   m.HTTPMethod,
				PathAndQuery: m.PathAndQuery,
			}
		}
		reg[name] = cryptogram.ServiceDefinition{
			Scheme:       svc.Scheme,
			Authority:    svc.Authority,
			Methods:      methods,
			Virtualhosts: svc.Virtualhosts,
		}
	}
	return reg
}

// Route looks up a preconfigured route by Host header and path, returning
// the parsed cryptogram template fresh each call (callers mutate it while
// evaluating, so every request needs its own copy). A virtualhost block's
// own Host field is matched against the header; if it's unset, the block's
// map key under Virtualhosts is used as the host instead.
func (c *Config) Route(host, path string) (*cryptogram.Cryptogram, bool, error) {
	vh, ok := c.virtualhostFor(host)
	if !ok {
		return nil, false, nil
	}
	route, ok := vh.Routes[path]
	if !ok {
		return nil, false, nil
	}
	cg, err := cryptogram.Parse(route.Cryptogram)
	if err != nil {
		return nil, true, fmt.Errorf("config: route %s%s: %w", host, path, err)
	}
	return cg, true, nil
}

func (c *Config) virtualhostFor(host string) (VirtualhostConfig, bool) {
	for name, vh := range c.Virtualhosts {
		effectiveHost := vh.Host
		if effectiveHost == "" {
			effectiveHost = name
		}
		if effectiveHost == host {
			return vh, true
		}
	}
	return VirtualhostConfig{}, false
}
