package server

import (
	"context"
	"expvar"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/coocood/freecache"
	"github.com/gorilla/mux"
	reuseport "github.com/kavu/go_reuseport"
	"github.com/lyft/goruntime/loader"
	stats "github.com/lyft/gostats"
	logger "github.com/sirupsen/logrus"

	"github.com/akgarg/urlshortener-gateway/src/limiter"
	"github.com/akgarg/urlshortener-gateway/src/settings"
)

type serverDebugListener struct {
	endpoints map[string]string
	debugMux  *http.ServeMux
	listener  net.Listener
}

type server struct {
	addr          string
	debugAddr     string
	gracePeriod   time.Duration
	router        *mux.Router
	gatewayRouter *mux.Router
	httpServer    *http.Server
	store         stats.Store
	scope         stats.Scope
	runtime       loader.IFace
	debugListener serverDebugListener
	health        *HealthChecker

	listenerLock sync.Mutex
	stopOnce     sync.Once
	stopped      chan struct{}
}

func (server *server) AddDebugHttpEndpoint(path string, help string, handler http.HandlerFunc) {
	server.debugListener.debugMux.HandleFunc(path, handler)
	server.debugListener.endpoints[path] = help
}

func (server *server) GatewayRouter() *mux.Router {
	return server.gatewayRouter
}

func (server *server) Start() {
	go server.startDebug()

	server.handleGracefulShutdown()

	logger.Warnf("Listening for HTTP on '%s'", server.addr)
	list, err := reuseport.Listen("tcp", server.addr)
	if err != nil {
		logger.Fatalf("Failed to open HTTP listener: '%+v'", err)
	}
	if err := server.httpServer.Serve(list); err != http.ErrServerClosed {
		logger.Fatal(err)
	}
	<-server.stopped
}

func (server *server) startDebug() {
	logger.Warnf("Listening for debug on '%s'", server.debugAddr)
	list, err := reuseport.Listen("tcp", server.debugAddr)
	if err != nil {
		logger.Errorf("Failed to open debug HTTP listener: '%+v'", err)
		return
	}

	server.listenerLock.Lock()
	server.debugListener.listener = list
	server.listenerLock.Unlock()

	err = http.Serve(list, server.debugListener.debugMux)
	logger.Infof("Debug server stopped: '%+v'", err)
}

func (server *server) Scope() stats.Scope {
	return server.scope
}

func (server *server) Runtime() loader.IFace {
	return server.runtime
}

func (server *server) HealthChecker() *HealthChecker {
	return server.health
}

func (server *server) Stop() {
	server.stopOnce.Do(func() {
		defer close(server.stopped)

		ctx, cancel := context.WithTimeout(context.Background(), server.gracePeriod)
		defer cancel()
		if err := server.httpServer.Shutdown(ctx); err != nil {
			logger.Warnf("in-flight requests did not drain within %s: %s", server.gracePeriod, err)
		}

		server.listenerLock.Lock()
		defer server.listenerLock.Unlock()
		if server.debugListener.listener != nil {
			server.debugListener.listener.Close()
		}
	})
}

func NewServer(s settings.Settings, name string, store stats.Store, localCache *freecache.Cache, opts ...settings.Option) Server {
	return newServer(s, name, store, localCache, opts...)
}

func newServer(s settings.Settings, name string, store stats.Store, localCache *freecache.Cache, opts ...settings.Option) *server {
	for _, opt := range opts {
		opt(&s)
	}

	ret := new(server)
	ret.addr = net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	ret.debugAddr = net.JoinHostPort(s.DebugHost, strconv.Itoa(s.DebugPort))
	ret.gracePeriod = s.ShutdownGracePeriod
	ret.stopped = make(chan struct{})

	// setup stats
	ret.store = store
	ret.scope = ret.store.Scope(name)
	ret.store.AddStatGenerator(stats.NewRuntimeStats(ret.scope.Scope("go")))
	if localCache != nil {
		ret.store.AddStatGenerator(limiter.NewLocalCacheStats(localCache, ret.scope.Scope("localcache")))
	}

	// setup runtime
	if s.RuntimePath != "" {
		loaderOpts := make([]loader.Option, 0, 1)
		if s.RuntimeIgnoreDotFiles {
			loaderOpts = append(loaderOpts, loader.IgnoreDotFiles)
		} else {
			loaderOpts = append(loaderOpts, loader.AllowDotFiles)
		}

		ret.runtime = loader.New(
			filepath.Join(s.RuntimePath, s.RuntimeSubdirectory),
			"limits",
			ret.store.Scope("runtime"),
			&loader.DirectoryRefresher{},
			loaderOpts...)
	}

	// setup http router
	ret.router = mux.NewRouter()

	// setup healthcheck path
	ret.health = NewHealthChecker(name)
	ret.router.Path("/healthcheck").Handler(ret.health)

	// everything else belongs to the gateway
	ret.gatewayRouter = ret.router.PathPrefix("/").Subrouter()

	ret.httpServer = &http.Server{
		Handler:           ret.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// setup default debug listener
	ret.debugListener.debugMux = http.NewServeMux()
	ret.debugListener.endpoints = map[string]string{}
	ret.AddDebugHttpEndpoint(
		"/debug/pprof/",
		"root of various pprof endpoints. hit for help.",
		func(writer http.ResponseWriter, request *http.Request) {
			pprof.Index(writer, request)
		})

	// setup stats endpoint
	ret.AddDebugHttpEndpoint(
		"/stats",
		"print out stats",
		func(writer http.ResponseWriter, request *http.Request) {
			expvar.Do(func(kv expvar.KeyValue) {
				io.WriteString(writer, fmt.Sprintf("%s: %s\n", kv.Key, kv.Value))
			})
		})

	// setup debug root
	ret.debugListener.debugMux.HandleFunc(
		"/",
		func(writer http.ResponseWriter, request *http.Request) {
			sortedKeys := []string{}
			for key := range ret.debugListener.endpoints {
				sortedKeys = append(sortedKeys, key)
			}

			sort.Strings(sortedKeys)
			for _, key := range sortedKeys {
				io.WriteString(
					writer, fmt.Sprintf("%s: %s\n", key, ret.debugListener.endpoints[key]))
			}
		})

	return ret
}

func (server *server) handleGracefulShutdown() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		sig := <-sigs

		logger.Infof("Gateway server received %v, shutting down gracefully", sig)
		server.Stop()
	}()
}
