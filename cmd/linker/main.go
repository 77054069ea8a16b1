package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/schedulr/linker/internal/linker"
	"github.com/schedulr/linker/internal/pkg/httpserver"
	log "github.com/schedulr/linker/internal/pkg/logging"
)

func init() {
	log.SetServiceName("linker")
}

func main() {
	logger := log.NewLogEntry()

	config, err := linker.LoadConfig()
	if err != nil {
		logger.Error(err, "error loading in configuration from env vars")
		os.Exit(1)
	}

	err = config.Validate()
	if err != nil {
		logger.Error(err, "error validating configuration")
		os.Exit(1)
	}

	statsdClient, err := linker.NewStatsdClient(config.MetricsConfig.StatsdConfig.Host, config.MetricsConfig.StatsdConfig.Port)
	if err != nil {
		logger.WithStatsdHost(config.MetricsConfig.StatsdConfig.Host).WithStatsdPort(
			config.MetricsConfig.StatsdConfig.Port).Error(err, "error creating statsd client")
		os.Exit(1)
	}

	l, err := linker.NewLinker(config,
		linker.SetRegistryFromConfig(config),
		linker.SetBackendClientFromConfig(config),
		linker.SetTransportStoreFromConfig(config),
		linker.SetStatsdClient(statsdClient),
	)
	if err != nil {
		logger.Error(err, "error creating new Linker")
		os.Exit(1)
	}

	// we leave the message field blank, which will inherit the stdlib timeout page which is sufficient
	// and better than other naive messages we would currently place here
	timeoutHandler := http.TimeoutHandler(l.ServeMux, config.ServerConfig.TimeoutConfig.Request, "")

	s := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.ServerConfig.Port),
		ReadTimeout:  config.ServerConfig.TimeoutConfig.Read,
		WriteTimeout: config.ServerConfig.TimeoutConfig.Write,
		Handler:      linker.NewLoggingHandler(os.Stdout, timeoutHandler, config.LoggingConfig.Enable, statsdClient),
	}

	if err := httpserver.Run(s, config.ServerConfig.TimeoutConfig.Shutdown, logger); err != nil {
		logger.Error(err, "error running server")
		os.Exit(1)
	}
}
