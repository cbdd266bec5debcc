package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"

	"github.com/inklet/inklet/internal/server"
)

// Version of the binary, assigned during build.
var Version = "dev"

const shutdownTimeout = 10 * time.Second

type options struct {
	Port    string   `short:"p" long:"port" description:"Host and port to listen on (overrides SERVER_PORT)."`
	Origins []string `long:"origin" description:"Allowed WebSocket origin; repeatable (overrides ALLOWED_ORIGINS)."`
	Version bool     `long:"version" description:"Print version and exit."`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Println(Version)
		return
	}

	cfg := server.NewConfigFromEnv()
	if opts.Port != "" {
		cfg.Port = opts.Port
	}
	if len(opts.Origins) > 0 {
		cfg.AllowedOrigins = opts.Origins
	}
	server.SetConfig(cfg)

	server.StartHubs()

	httpServer := server.CreateServer(cfg.Port, server.SetupRoutes())

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.StartServer(httpServer)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	case sig := <-sigCh:
		log.Printf("Received %s, shutting down", sig)
	}

	if err := server.ShutdownServer(httpServer, shutdownTimeout); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	server.ShutdownHubs(shutdownTimeout)
}
