package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"delegator/cache"
	"delegator/config"
	"delegator/eventsink"
	"delegator/invoker"
	"delegator/logger"
	"delegator/server"
)

var (
	exit       = os.Exit
	configPath string
)

func main() {
	_ = godotenv.Load()

	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the root "delegator" command and its subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{Use: "delegator"}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "delegator.hcl", "Path to the delegator HCL config")
	rootCmd.AddCommand(newServeCmd())
	return rootCmd
}

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the delegator HTTP front end",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				logger.Error("failed to load config %s: %v", configPath, err)
				exit(1)
				return
			}

			if addr != "" {
				host, portStr, found := strings.Cut(addr, ":")
				if !found {
					logger.Error("invalid --addr %q: expected host:port", addr)
					exit(1)
					return
				}
				port, err := strconv.Atoi(portStr)
				if err != nil {
					logger.Error("invalid port in --addr %q: %v", addr, err)
					exit(1)
					return
				}
				cfg.HTTP.Host = host
				cfg.HTTP.Port = port
			}

			deps, err := buildRouteDeps(cfg)
			if err != nil {
				logger.Error("failed to wire dependencies: %v", err)
				exit(1)
				return
			}

			if err := server.Serve(cfg, deps); err != nil {
				logger.Error("server exited with error: %v", err)
				exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address in the form host:port, overriding the config file")
	return cmd
}

// buildRouteDeps wires the live invoker, service registry, and event sink
// from the loaded config. The event sink is a NATS-backed Watermill
// publisher when events.user_action.queue_url is configured, otherwise an
// in-process bus suitable for local development.
func buildRouteDeps(cfg *config.Config) (server.RouteDeps, error) {
	timeout, err := cfg.HTTP.Client.Timeout()
	if err != nil {
		return server.RouteDeps{}, fmt.Errorf("delegator: client timeout: %w", err)
	}

	sink, err := buildEventSink(cfg)
	if err != nil {
		return server.RouteDeps{}, err
	}

	return server.RouteDeps{
		Cache:    cache.New(),
		Invoker:  invoker.NewLiveInvoker(timeout, cfg.HTTP.Client.UserAgent),
		Services: cfg.ServiceRegistry(),
		Sink:     sink,
	}, nil
}

func buildEventSink(cfg *config.Config) (eventsink.Sink, error) {
	topic, ok := cfg.Events["user_action"]
	if !ok || topic.QueueURL == "" {
		return eventsink.NewInMemSink(), nil
	}

	clusterID := os.Getenv("DELEGATOR_NATS_CLUSTER_ID")
	if clusterID == "" {
		clusterID = "delegator"
	}
	sink, err := eventsink.NewNATSSink(clusterID, "delegator-server", topic.QueueURL)
	if err != nil {
		return nil, fmt.Errorf("delegator: event sink: %w", err)
	}
	return sink, nil
}
