package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	logger "github.com/sirupsen/logrus"
)

type HealthChecker struct {
	sync.Mutex
	healthMap map[string]bool
	ok        uint32
	name      string
}

const (
	RedisHealthComponentName = "redis"
	SigtermComponentName     = "sigterm"
)

func areAllComponentsHealthy(healthMap map[string]bool) bool {
	for _, value := range healthMap {
		if !value {
			return false
		}
	}
	return true
}

// NewHealthChecker
// Only set the overall health to be Ok if all individual components are healthy.
func NewHealthChecker(name string) *HealthChecker {
	ret := &HealthChecker{}
	ret.name = name

	ret.healthMap = make(map[string]bool)
	ret.healthMap[RedisHealthComponentName] = true
	// True indicates we have not received sigterm
	ret.healthMap[SigtermComponentName] = true
	ret.ok = 1

	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGTERM)

	go func() {
		<-sigterm
		_ = ret.Fail(SigtermComponentName)
	}()

	return ret
}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ok := atomic.LoadUint32(&hc.ok)
	if ok == 1 {
		w.Write([]byte("OK"))
	} else {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (hc *HealthChecker) Fail(componentName string) error {
	hc.Lock()
	defer hc.Unlock()
	if _, ok := hc.healthMap[componentName]; !ok {
		errorText := fmt.Sprintf("Invalid component: %s", componentName)
		logger.Error(errorText)
		return errors.New(errorText)
	}

	if hc.healthMap[componentName] {
		logger.Warnf("%s health component %s is failing", hc.name, componentName)
	}
	hc.healthMap[componentName] = false
	atomic.StoreUint32(&hc.ok, 0)
	return nil
}

func (hc *HealthChecker) Ok(componentName string) error {
	hc.Lock()
	defer hc.Unlock()
	if _, ok := hc.healthMap[componentName]; !ok {
		errorText := fmt.Sprintf("Invalid component: %s", componentName)
		logger.Error(errorText)
		return errors.New(errorText)
	}

	hc.healthMap[componentName] = true
	if areAllComponentsHealthy(hc.healthMap) {
		atomic.StoreUint32(&hc.ok, 1)
	}
	return nil
}

// IsHealthy reports the overall health.
func (hc *HealthChecker) IsHealthy() bool {
	return atomic.LoadUint32(&hc.ok) == 1
}
