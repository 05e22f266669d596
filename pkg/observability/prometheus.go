package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Textfile exposes OTel metrics through a private Prometheus registry and
// writes them in the text exposition format, for batch runs scraped by the
// node-exporter textfile collector.
type Textfile struct {
	path     string
	registry *prometheus.Registry
	exporter *promexporter.Exporter
}

// NewTextfile creates a Prometheus-backed reader that will write to path.
// Each call uses its own registry so several instances never collide.
func NewTextfile(path string) (*Textfile, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return &Textfile{path: path, registry: registry, exporter: exporter}, nil
}

// Reader returns the metric reader to attach to a MeterProvider.
func (tf *Textfile) Reader() sdkmetric.Reader {
	return tf.exporter
}

// Gatherer returns the registry backing the textfile.
func (tf *Textfile) Gatherer() prometheus.Gatherer {
	return tf.registry
}

// Write gathers the current metric values and atomically replaces the file.
func (tf *Textfile) Write() error {
	err := prometheus.WriteToTextfile(tf.path, tf.registry)
	if err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}

	return nil
}
