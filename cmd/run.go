// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"google.golang.org/grpc"

	"github.com/inkpad-io/inkpad/config"
	"github.com/inkpad-io/inkpad/download"
	"github.com/inkpad-io/inkpad/events"
	"github.com/inkpad-io/inkpad/logging"
	"github.com/inkpad-io/inkpad/metrics"
	"github.com/inkpad-io/inkpad/metrics/prometheus"
	"github.com/inkpad-io/inkpad/plugins"
	"github.com/inkpad-io/inkpad/registry"
	"github.com/inkpad-io/inkpad/security"
	"github.com/inkpad-io/inkpad/server"
	"github.com/inkpad-io/inkpad/server/proto"

	// Registers the external plugin entry factory.
	_ "github.com/inkpad-io/inkpad/server/remote"
)

type runParams struct {
	configFile  string
	addr        string
	dataDir     string
	metricsAddr string
	logLevel    string
	logFormat   string
}

func init() {
	params := runParams{}

	runCommand := &cobra.Command{
		Use:   "run",
		Short: "Start the plugin runtime",
		Long: `Start the plugin runtime in server mode.

The runtime restores previously active plugins from the registry, then
serves the plugin lifecycle API over gRPC until interrupted. Flags may
also be set through the environment with the INKPAD_ prefix, e.g.
INKPAD_ADDR overrides --addr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuntime(resolveParams(cmd))
		},
	}

	runCommand.Flags().StringVarP(&params.configFile, "config-file", "c", "", "set path of configuration file")
	runCommand.Flags().StringVarP(&params.addr, "addr", "a", "", "set listening address of the gRPC server (overrides the configuration file)")
	runCommand.Flags().StringVarP(&params.dataDir, "data-dir", "d", "", "persist the plugin registry under this directory instead of in memory")
	runCommand.Flags().StringVarP(&params.metricsAddr, "metrics-addr", "", "", "expose prometheus metrics over HTTP on this address")
	runCommand.Flags().StringVarP(&params.logLevel, "log-level", "l", "info", "set log level (debug, info, warn, error)")
	runCommand.Flags().StringVarP(&params.logFormat, "log-format", "", "json", "set log format (json, text)")
	RootCommand.AddCommand(runCommand)
}

// resolveParams layers the environment over flag values. Explicit flags win,
// then INKPAD_ environment variables, then flag defaults.
func resolveParams(cmd *cobra.Command) runParams {
	v := viper.New()
	v.SetEnvPrefix("inkpad")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	bindFlags(v, cmd.Flags())
	return runParams{
		configFile:  v.GetString("config-file"),
		addr:        v.GetString("addr"),
		dataDir:     v.GetString("data-dir"),
		metricsAddr: v.GetString("metrics-addr"),
		logLevel:    v.GetString("log-level"),
		logFormat:   v.GetString("log-format"),
	}
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		v.BindPFlag(f.Name, f)
	})
}

func runRuntime(params runParams) error {
	logger, err := setupLogging(params)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if params.configFile != "" {
		cfg, err = config.ParseConfigFile(params.configFile)
		if err != nil {
			return err
		}
	}
	if params.addr != "" {
		cfg.ListenAddr = params.addr
	}

	var mx metrics.Metrics = metrics.New()
	if params.metricsAddr != "" {
		mx = prometheus.New(prom.DefaultRegisterer, logger, "inkpad")
	}

	store, err := setupStore(params.dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	bus := events.NewBus().WithLogger(logger).WithMetrics(mx)
	sec := security.NewManager().WithLogger(logger)
	dl := download.New(cfg).WithLogger(logger).WithMetrics(mx)

	manager := plugins.New(store, bus, sec,
		plugins.Logger(logger),
		plugins.Metrics(mx),
		plugins.Downloader(dl),
		plugins.InstallTimeout(cfg.InstallTimeout()),
		plugins.StopTimeout(cfg.StopTimeout()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := manager.Bootstrap(ctx); err != nil {
		// Bootstrap failures are already reflected in each plugin's state.
		logger.Warn("Bootstrap finished with errors: %v.", err)
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(server.TokenUnaryInterceptor(sec, logger)))
	proto.RegisterPluginServiceServer(grpcServer, server.New(manager, sec).WithLogger(logger))

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %v: %w", cfg.ListenAddr, err)
	}

	errc := make(chan error, 2)
	go func() {
		logger.Info("Plugin runtime listening on %v.", cfg.ListenAddr)
		errc <- grpcServer.Serve(ln)
	}()
	if params.metricsAddr != "" {
		go func() {
			logger.Info("Serving metrics on %v.", params.metricsAddr)
			errc <- http.ListenAndServe(params.metricsAddr, promhttp.Handler())
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errc:
		return err
	}

	logger.Info("Shutting down.")
	grpcServer.GracefulStop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.StopTimeout())
	defer cancel()
	if err := manager.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown finished with errors: %v.", err)
	}
	return bus.Close(shutdownCtx)
}

func setupLogging(params runParams) (*logging.StandardLogger, error) {
	logger := logging.New()
	switch params.logFormat {
	case "", "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format %q", params.logFormat)
	}
	switch params.logLevel {
	case "debug":
		logger.SetLevel(logging.Debug)
	case "", "info":
		logger.SetLevel(logging.Info)
	case "warn":
		logger.SetLevel(logging.Warn)
	case "error":
		logger.SetLevel(logging.Error)
	default:
		return nil, fmt.Errorf("invalid log level %q", params.logLevel)
	}
	return logger, nil
}

func setupStore(dataDir string) (registry.Store, error) {
	if dataDir == "" {
		return registry.NewInmemStore(), nil
	}
	return registry.NewDiskStore(dataDir)
}
