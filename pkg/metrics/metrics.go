// Package metrics holds the OpenTelemetry instruments shared by the application.
// Instruments are created from the global MeterProvider, so they export through
// whatever provider the API server installs and are no-ops otherwise.
package metrics

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// meterName scopes every instrument of this application.
const meterName = "primes"

// Scanner groups the instruments recorded by the scanner service.
type Scanner struct {
	// CandidatesChecked counts integers run through the primality checker.
	CandidatesChecked metric.Int64Counter
	// PrimesFound counts integers classified as prime.
	PrimesFound metric.Int64Counter
	// ScanDuration records how long range scans take, in seconds.
	ScanDuration metric.Float64Histogram
}

// NewScanner creates the scanner instruments from the global MeterProvider.
func NewScanner() (*Scanner, error) {
	return NewScannerFromMeter(otel.Meter(meterName))
}

// NewScannerFromMeter creates the scanner instruments from meter.
func NewScannerFromMeter(meter metric.Meter) (*Scanner, error) {
	checked, err := meter.Int64Counter("primes.candidates.checked",
		metric.WithDescription("Number of integers tested for primality"))
	if err != nil {
		return nil, fmt.Errorf("could not create candidates counter: %w", err)
	}

	found, err := meter.Int64Counter("primes.found",
		metric.WithDescription("Number of integers classified as prime"))
	if err != nil {
		return nil, fmt.Errorf("could not create primes counter: %w", err)
	}

	duration, err := meter.Float64Histogram("primes.scan.duration",
		metric.WithDescription("Duration of range scans"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create scan duration histogram: %w", err)
	}

	return &Scanner{
		CandidatesChecked: checked,
		PrimesFound:       found,
		ScanDuration:      duration,
	}, nil
}
