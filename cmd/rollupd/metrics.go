package main

import (
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/l2rollup/settlement/metrics"
)

// serveMetricsCommand exposes the process-wide metrics registry over
// HTTP in Prometheus text exposition format. It is meant to run
// alongside a long-lived deployment that drives chain.Chain directly
// as a library (this standalone CLI's own subcommands are
// short-lived, so this command mostly demonstrates the wiring an
// embedding service would reuse).
var serveMetricsCommand = &cli.Command{
	Name:  "serve-metrics",
	Usage: "serve the metrics registry at /metrics until interrupted",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "addr", Value: ":9090", Usage: "address to listen on"},
	},
	Action: func(c *cli.Context) error {
		exporter := metrics.NewPrometheusExporter(metrics.DefaultRegistry, metrics.DefaultPrometheusConfig())
		addr := c.String("addr")
		logger.Info("serving metrics", "addr", addr, "path", metrics.DefaultPrometheusConfig().Path)
		return http.ListenAndServe(addr, exporter.Handler())
	},
}
