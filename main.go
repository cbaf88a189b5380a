/*
Interactive Mandelbrot explorer. The fractal is computed on the GPU into two
alternating images while the previous one is displayed, so panning and zooming
stay smooth even when a compute pass takes longer than a frame.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spaghettifunk/mandelbrot/engine"
	"github.com/spaghettifunk/mandelbrot/engine/core"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.toml", "path to the TOML configuration file")
	flag.Parse()

	session := core.NewSession()

	config, err := engine.LoadConfig(*configPath)
	if err != nil {
		core.LogError(err.Error())
		return 1
	}
	if err := core.LogConfigure(config.LogLevel, session.Short()); err != nil {
		core.LogError("invalid log_level '%s': %s", config.LogLevel, err)
		return 1
	}

	// signal channel to capture system calls
	var quit atomic.Bool
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		// the loop notices the flag on its next tick and shuts down on the main thread
		<-sigCh
		quit.Store(true)
	}()

	e, err := engine.New(config, session, &quit)
	if err != nil {
		return 1
	}

	if err := e.Initialize(); err != nil {
		core.LogError("initialization failed in stage '%s': %s", core.Stage(err), err)
		_ = e.Shutdown()
		return 1
	}

	runErr := e.Run()
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
	}
	if runErr != nil {
		core.LogError("fatal error in stage '%s': %s", core.Stage(runErr), runErr)
		return 1
	}
	return 0
}
