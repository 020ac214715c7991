package config

import (
	_ "embed"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/akgarg/urlshortener-gateway/src/utils"
)

//go:embed default_gateway.yaml
var defaultGatewayYaml string

type yamlRewrite struct {
	Regex       string `yaml:"regex"`
	Replacement string `yaml:"replacement"`
}

type yamlRateLimit struct {
	Strategy          string `yaml:"strategy"`
	RequestsPerWindow string `yaml:"requests_per_window"`
}

type yamlRoute struct {
	Name         string         `yaml:"name"`
	Pattern      string         `yaml:"pattern"`
	Service      string         `yaml:"service"`
	Rewrite      *yamlRewrite   `yaml:"rewrite"`
	RateLimit    *yamlRateLimit `yaml:"rate_limit"`
	RequireToken bool           `yaml:"require_token"`
}

type yamlAdminRule struct {
	Method  string `yaml:"method"`
	Pattern string `yaml:"pattern"`
}

type yamlRoot struct {
	Routes         []yamlRoute     `yaml:"routes"`
	AdminEndpoints []yamlAdminRule `yaml:"admin_endpoints"`
}

var adminMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

func newGatewayConfigError(name string, err string) GatewayConfigError {
	return GatewayConfigError(fmt.Sprintf("%s: %s", name, err))
}

// Match returns the first route whose pattern matches path.
func (this *GatewayConfig) Match(path string) (*Route, bool) {
	for i := range this.Routes {
		if utils.MatchAntPattern(this.Routes[i].Pattern, path) {
			return &this.Routes[i], true
		}
	}
	return nil, false
}

// IsAdminEndpoint reports whether method and path fall under an admin rule.
func (this *GatewayConfig) IsAdminEndpoint(method string, path string) bool {
	for _, rule := range this.AdminRules {
		if rule.Method == method && utils.MatchAntPattern(rule.Pattern, path) {
			return true
		}
	}
	return false
}

// Dump the configuration into string form for debugging.
func (this *GatewayConfig) Dump() string {
	var b strings.Builder
	for _, route := range this.Routes {
		fmt.Fprintf(&b, "route %s: pattern=%s service=%s token=%t", route.Class, route.Pattern, route.Service, route.RequireToken)
		if route.RateLimit != nil {
			fmt.Fprintf(&b, " limit=%s/%s", route.RateLimit.RequestsPerWindow, route.RateLimit.Strategy)
		}
		b.WriteString("\n")
	}
	for _, rule := range this.AdminRules {
		fmt.Fprintf(&b, "admin: %s %s\n", rule.Method, rule.Pattern)
	}
	return b.String()
}

// Load parses and validates a route table.
// @param name supplies the source name used in error messages.
// @param content supplies the YAML document.
// @throws GatewayConfigError if the table is invalid.
func Load(name string, content string) *GatewayConfig {
	var root yamlRoot
	if err := yaml.UnmarshalStrict([]byte(content), &root); err != nil {
		panic(newGatewayConfigError(name, fmt.Sprintf("error loading config file: %s", err.Error())))
	}

	if len(root.Routes) == 0 {
		panic(newGatewayConfigError(name, "config file declares no routes"))
	}

	ret := &GatewayConfig{}
	seen := map[string]bool{}
	for _, route := range root.Routes {
		ret.Routes = append(ret.Routes, loadRoute(name, route, seen))
	}

	for _, rule := range root.AdminEndpoints {
		method := strings.ToUpper(rule.Method)
		if !adminMethods[method] {
			panic(newGatewayConfigError(name, fmt.Sprintf("admin endpoint has invalid method '%s'", rule.Method)))
		}
		if !strings.HasPrefix(rule.Pattern, "/") {
			panic(newGatewayConfigError(name, fmt.Sprintf("admin endpoint pattern '%s' must start with '/'", rule.Pattern)))
		}
		ret.AdminRules = append(ret.AdminRules, AdminRule{Method: method, Pattern: rule.Pattern})
	}

	logger.Debugf("loaded gateway config %s:\n%s", name, ret.Dump())
	return ret
}

func loadRoute(name string, route yamlRoute, seen map[string]bool) Route {
	if route.Name == "" {
		panic(newGatewayConfigError(name, "route has empty name"))
	}
	if seen[route.Name] {
		panic(newGatewayConfigError(name, fmt.Sprintf("duplicate route '%s'", route.Name)))
	}
	seen[route.Name] = true

	if !strings.HasPrefix(route.Pattern, "/") {
		panic(newGatewayConfigError(name, fmt.Sprintf("route '%s' pattern must start with '/'", route.Name)))
	}
	if route.Service == "" {
		panic(newGatewayConfigError(name, fmt.Sprintf("route '%s' has no service", route.Name)))
	}

	ret := Route{
		Class:        route.Name,
		Pattern:      route.Pattern,
		Service:      route.Service,
		RequireToken: route.RequireToken,
	}

	if route.Rewrite != nil {
		regex, err := regexp.Compile(route.Rewrite.Regex)
		if err != nil {
			panic(newGatewayConfigError(name, fmt.Sprintf("route '%s' has invalid rewrite: %s", route.Name, err.Error())))
		}
		ret.Rewrite = &Rewrite{Regex: regex, Replacement: route.Rewrite.Replacement}
	}

	if route.RateLimit != nil {
		strategy := IdentityStrategy(strings.ToUpper(route.RateLimit.Strategy))
		if strategy != StrategyUserId && strategy != StrategyClientIp {
			panic(newGatewayConfigError(name, fmt.Sprintf("route '%s' has invalid rate limit strategy '%s'", route.Name, route.RateLimit.Strategy)))
		}
		ret.RateLimit = &RouteRateLimit{Strategy: strategy, RequestsPerWindow: route.RateLimit.RequestsPerWindow}
	}

	return ret
}

// LoadFile loads the route table at path, or the embedded default table when path is empty.
func LoadFile(path string) *GatewayConfig {
	if path == "" {
		return Default()
	}

	content, err := os.ReadFile(path)
	if err != nil {
		panic(newGatewayConfigError(path, err.Error()))
	}
	return Load(path, string(content))
}

// Default returns the built-in route table.
func Default() *GatewayConfig {
	return Load("default_gateway.yaml", defaultGatewayYaml)
}
