// Package metrics holds the Prometheus collectors describing the OCR pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for processed documents.
const (
	OutcomeSuccess      = "success"
	OutcomeBadRequest   = "bad_request"
	OutcomeOCRError     = "ocr_error"
	OutcomePersistError = "persist_error"
)

// Forward result labels.
const (
	ForwardOK     = "ok"
	ForwardFailed = "failed"
)

// Pipeline groups the pipeline collectors. A nil *Pipeline records nothing.
type Pipeline struct {
	processed   *prometheus.CounterVec
	forwards    *prometheus.CounterVec
	ocrDuration prometheus.Histogram
}

// NewPipeline registers the pipeline collectors on reg.
func NewPipeline(reg prometheus.Registerer) (*Pipeline, error) {
	p := &Pipeline{
		processed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docetl_documents_processed_total",
				Help: "Documents handled by the intake pipeline, by outcome.",
			},
			[]string{"outcome"},
		),
		forwards: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docetl_forward_total",
				Help: "Attempts to forward extracted text to the ingestion endpoint, by result.",
			},
			[]string{"result"},
		),
		ocrDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "docetl_ocr_duration_seconds",
			Help:    "Time spent recognizing text in one document.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}

	for _, c := range []prometheus.Collector{p.processed, p.forwards, p.ocrDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Pipeline) Processed(outcome string) {
	if p == nil {
		return
	}
	p.processed.WithLabelValues(outcome).Inc()
}

func (p *Pipeline) Forwarded(result string) {
	if p == nil {
		return
	}
	p.forwards.WithLabelValues(result).Inc()
}

func (p *Pipeline) ObserveOCR(d time.Duration) {
	if p == nil {
		return
	}
	p.ocrDuration.Observe(d.Seconds())
}
