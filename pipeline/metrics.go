package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the work done by a Decoder.
type Metrics struct {
	chunksPushed prometheus.Counter
	bytesPushed  prometheus.Counter
	bytesEvicted prometheus.Counter
	codePoints   *prometheus.CounterVec
	decodeErrors *prometheus.CounterVec
}

// NewMetrics registers the decoder collectors on reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		chunksPushed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_pushed_total",
			Help:      "Total number of chunks pushed into the window",
		}),
		bytesPushed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_pushed_total",
			Help:      "Total number of bytes pushed into the window",
		}),
		bytesEvicted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_evicted_total",
			Help:      "Total number of bytes shifted out of the window",
		}),
		codePoints: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "code_points_total",
			Help:      "Total number of decoded code points",
		}, []string{"encoding"}),
		decodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Total number of malformed or truncated sequences",
		}, []string{"encoding", "kind"}),
	}
}

func (m *Metrics) pushed(n int) {
	m.chunksPushed.Inc()
	m.bytesPushed.Add(float64(n))
}

func (m *Metrics) evicted(n int) {
	m.bytesEvicted.Add(float64(n))
}

func (m *Metrics) decoded(encoding string, n int) {
	m.codePoints.WithLabelValues(encoding).Add(float64(n))
}

func (m *Metrics) failed(encoding, kind string) {
	m.decodeErrors.WithLabelValues(encoding, kind).Inc()
}
