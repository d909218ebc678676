package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/powchain/app/services/node/handlers"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/powchain/foundation/blockchain/worker"
	"github.com/ardanlabs/powchain/foundation/events"
	"github.com/ardanlabs/powchain/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:90s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			CorsOrigins     []string      `conf:"default:*"`
		}
		Chain struct {
			GenesisFile   string        `conf:"help:optional path to a genesis json file"`
			Difficulty    uint          `conf:"default:2"`
			MaxDifficulty uint          `conf:"default:8"`
			Algorithm     string        `conf:"default:sha256"`
			MaxAttempts   uint64        `conf:"default:0"`
			MiningTimeout time.Duration `conf:"default:60s"`
			QueueSize     int           `conf:"default:100"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "proof of work teaching chain",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Blockchain Support

	gen := genesis.Default()
	if cfg.Chain.GenesisFile != "" {
		gen, err = genesis.Load(cfg.Chain.GenesisFile)
		if err != nil {
			return fmt.Errorf("unable to load genesis file: %w", err)
		}
	} else {
		gen.Difficulty = cfg.Chain.Difficulty
		gen.Algorithm = cfg.Chain.Algorithm
	}

	// The blockchain packages accept a function of this signature to allow the
	// application to log. Messages meant for the viewer are also sent to any
	// websocket client that is connected into the system through the events
	// package.
	evts := events.New()
	ev := func(v string, args ...any) {
		const websocketPrefix = "viewer:"

		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		if strings.HasPrefix(s, websocketPrefix) {
			evts.Send(s)
		}
	}

	// The state value represents the blockchain and manages the blocks in
	// memory and provides an API for application support.
	st, err := state.New(state.Config{
		Genesis:     gen,
		Storage:     memory.New(),
		MaxAttempts: cfg.Chain.MaxAttempts,
		EvHandler:   ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	genesisBlock := st.RetrieveGenesisBlock()
	log.Infow("startup", "status", "genesis", "hash", genesisBlock.Hash, "timestamp", genesisBlock.TimeStamp, "algorithm", gen.Algorithm)

	// The worker package mines queued requests in the background. The worker
	// will register itself with the state.
	worker.Run(st, ev, worker.Config{
		QueueSize:     cfg.Chain.QueueSize,
		MiningTimeout: cfg.Chain.MiningTimeout,
	})

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the debug
	// related endpoints. This includes the standard library endpoints.

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, st)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown:      shutdown,
		Log:           log,
		State:         st,
		Evts:          evts,
		CorsOrigins:   cfg.Web.CorsOrigins,
		MiningTimeout: cfg.Chain.MiningTimeout,
		MaxDifficulty: cfg.Chain.MaxDifficulty,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}
