// Package metrics exposes a running session's link statistics as
// Prometheus metrics, scraped over /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"serialperf/stats"
)

// Collector reports tx/rx byte rates and packet-loss counts from a
// counting session as Prometheus metrics. It reads from the concrete
// types the CLI wires up (*stats.IntervalRate for tx/rx, *stats.Counting
// for loss) rather than the stats.Statistics interface, which doesn't
// expose readable totals for every variant (Dummy has none at all).
type Collector struct {
	txRate    *stats.IntervalRate
	rxRate    *stats.IntervalRate
	lossStats *stats.Counting

	txSuccessBPS *prometheus.Desc
	txFailedBPS  *prometheus.Desc
	rxSuccessBPS *prometheus.Desc
	rxFailedBPS  *prometheus.Desc
	packetsOK    *prometheus.Desc
	packetsLost  *prometheus.Desc
	lossRatio    *prometheus.Desc
}

// NewCollector creates a Collector labeled with runID (a per-invocation
// identifier, typically an xid), reading from txRate, rxRate, and
// lossStats.
func NewCollector(runID string, txRate, rxRate *stats.IntervalRate, lossStats *stats.Counting) *Collector {
	constLabels := prometheus.Labels{"run_id": runID}

	return &Collector{
		txRate:    txRate,
		rxRate:    rxRate,
		lossStats: lossStats,

		txSuccessBPS: prometheus.NewDesc(
			"serialperf_tx_bytes_per_second",
			"Most recently published successful TX byte rate.",
			nil, constLabels,
		),
		txFailedBPS: prometheus.NewDesc(
			"serialperf_tx_errors_per_second",
			"Most recently published failed TX byte rate.",
			nil, constLabels,
		),
		rxSuccessBPS: prometheus.NewDesc(
			"serialperf_rx_bytes_per_second",
			"Most recently published successful RX byte rate.",
			nil, constLabels,
		),
		rxFailedBPS: prometheus.NewDesc(
			"serialperf_rx_errors_per_second",
			"Most recently published failed RX byte rate.",
			nil, constLabels,
		),
		packetsOK: prometheus.NewDesc(
			"serialperf_packets_received_total",
			"Counting-protocol packets successfully decoded.",
			nil, constLabels,
		),
		packetsLost: prometheus.NewDesc(
			"serialperf_packets_lost_total",
			"Counting-protocol packets inferred lost between consecutive decodes.",
			nil, constLabels,
		),
		lossRatio: prometheus.NewDesc(
			"serialperf_packet_loss_ratio",
			"Lost packets divided by (lost + received) packets.",
			nil, constLabels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(descs chan<- *prometheus.Desc) {
	descs <- c.txSuccessBPS
	descs <- c.txFailedBPS
	descs <- c.rxSuccessBPS
	descs <- c.rxFailedBPS
	descs <- c.packetsOK
	descs <- c.packetsLost
	descs <- c.lossRatio
}

// Collect implements prometheus.Collector. A rate for which BPSFloat64
// reports no value (second return false: a zero interval, or a byte count
// above its bound) reports as zero rather than being omitted, so the
// series stays continuous across scrapes. A measurer that has not yet
// published holds 0 bytes over its interval, which also reads as zero.
func (c *Collector) Collect(metrics chan<- prometheus.Metric) {
	metrics <- prometheus.MustNewConstMetric(c.txSuccessBPS, prometheus.GaugeValue, bps(c.txRate.SuccessRate()))
	metrics <- prometheus.MustNewConstMetric(c.txFailedBPS, prometheus.GaugeValue, bps(c.txRate.FailedRate()))
	metrics <- prometheus.MustNewConstMetric(c.rxSuccessBPS, prometheus.GaugeValue, bps(c.rxRate.SuccessRate()))
	metrics <- prometheus.MustNewConstMetric(c.rxFailedBPS, prometheus.GaugeValue, bps(c.rxRate.FailedRate()))

	ok := c.lossStats.Successful()
	lost := c.lossStats.Failed()
	metrics <- prometheus.MustNewConstMetric(c.packetsOK, prometheus.CounterValue, float64(ok))
	metrics <- prometheus.MustNewConstMetric(c.packetsLost, prometheus.CounterValue, float64(lost))

	total := ok + lost
	ratio := 0.0
	if total > 0 {
		ratio = float64(lost) / float64(total)
	}
	metrics <- prometheus.MustNewConstMetric(c.lossRatio, prometheus.GaugeValue, ratio)
}

func bps(r byteRate) float64 {
	v, ok := r.BPSFloat64()
	if !ok {
		return 0
	}
	return v
}

type byteRate interface {
	BPSFloat64() (float64, bool)
}
