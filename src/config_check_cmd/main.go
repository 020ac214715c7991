package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	gostats "github.com/lyft/gostats"

	"github.com/akgarg/urlshortener-gateway/src/config"
	"github.com/akgarg/urlshortener-gateway/src/limiter"
	"github.com/akgarg/urlshortener-gateway/src/settings"
	"github.com/akgarg/urlshortener-gateway/src/stats"
)

func loadConfig(path string, s settings.Settings) (gateway *config.GatewayConfig, policies *limiter.PolicyTable) {
	defer func() {
		err := recover()
		if err != nil {
			fmt.Printf("error loading gateway config: %v\n", err)
			os.Exit(1)
		}
	}()
	statsManager := stats.NewStatManager(gostats.NewStore(gostats.NewNullSink(), false), s)
	gateway = config.LoadFile(path)
	policies = limiter.NewPolicyTable(gateway.Routes, s.RateLimitWindow, s.RateLimitDefault,
		statsManager, limiter.MapOverrides(s.RateLimitOverrides))
	return
}

func main() {
	configPath := flag.String(
		"config", "", "path to the gateway route table, the built-in table when empty")
	flag.Parse()

	s := settings.NewSettings()
	fmt.Printf("checking gateway config...\n")
	if *configPath == "" {
		fmt.Printf("using built-in route table\n")
	} else {
		fmt.Printf("loading config file: %s\n", *configPath)
	}

	gateway, policies := loadConfig(*configPath, s)
	fmt.Print(gateway.Dump())
	fmt.Printf("effective rate limits:\n%s", policies.Dump())

	// A zero limit is legal but blocks the route, usually because a value failed to parse.
	for _, route := range gateway.Routes {
		if p, ok := policies.Get(route.Class); ok && p.Limit == limiter.BlockingLimit {
			fmt.Printf("warning: route %s rejects every request\n", route.Class)
		}
	}
	if len(s.RateLimitOverrides) > 0 {
		classes := make([]string, 0, len(s.RateLimitOverrides))
		for class := range s.RateLimitOverrides {
			if _, ok := policies.Get(class); !ok {
				classes = append(classes, class)
			}
		}
		if len(classes) > 0 {
			fmt.Printf("warning: overrides for unknown or unlimited routes: %s\n", strings.Join(classes, ", "))
		}
	}
	fmt.Printf("gateway config ok\n")
}
