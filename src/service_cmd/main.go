package main

import (
	"github.com/akgarg/urlshortener-gateway/src/service_cmd/runner"
	"github.com/akgarg/urlshortener-gateway/src/settings"
)

func main() {
	runner := runner.NewRunner(settings.NewSettings())
	runner.Run()
}
