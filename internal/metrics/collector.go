package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/relaypulse/beatkeeper/internal/model"
)

// RosterSource provides the collector read access to the running
// monitor's state, without depending on the root package (which would
// create an import cycle back into here).
type RosterSource interface {
	Roster() []model.RecordId
	Get(id model.RecordId) (model.Record, bool)
}

// Collector implements prometheus.Collector, reading live gauges from src
// at scrape time rather than caching its own counters — the same pattern
// as the published snapshot itself: always internally consistent, never
// contended against by a scrape.
type Collector struct {
	src RosterSource

	recordCount    *prometheus.Desc
	capacityUsed   *prometheus.Desc
	ratingCount    *prometheus.Desc
	meanDiffMillis *prometheus.Desc
}

// NewCollector creates a collector reading live state from src at scrape
// time. src may be nil (metrics will report zero records).
func NewCollector(src RosterSource) *Collector {
	return &Collector{
		src: src,
		recordCount: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "records_active"),
			"Current number of registered records.",
			nil, nil,
		),
		capacityUsed: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "capacity_used_ratio"),
			"Fraction of RecordCap currently in use.",
			nil, nil,
		),
		ratingCount: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "records_by_rating"),
			"Current number of records at each activity rating.",
			[]string{"rating"}, nil,
		),
		meanDiffMillis: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "mean_diff_milliseconds"),
			"Per-record difference between mean observed interval and expected frequency, in milliseconds.",
			[]string{"record_id", "name"}, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.recordCount
	ch <- c.capacityUsed
	ch <- c.ratingCount
	ch <- c.meanDiffMillis
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.src == nil {
		ch <- prometheus.MustNewConstMetric(c.recordCount, prometheus.GaugeValue, 0)
		ch <- prometheus.MustNewConstMetric(c.capacityUsed, prometheus.GaugeValue, 0)
		return
	}

	roster := c.src.Roster()
	ch <- prometheus.MustNewConstMetric(c.recordCount, prometheus.GaugeValue, float64(len(roster)))
	ch <- prometheus.MustNewConstMetric(c.capacityUsed, prometheus.GaugeValue, float64(len(roster))/float64(model.RecordCap))

	counts := map[model.ActivityRating]int{}
	for _, id := range roster {
		rec, ok := c.src.Get(id)
		if !ok {
			continue
		}
		counts[rec.ActivityRating()]++
		if diff, ok := rec.MeanDiff(); ok {
			ch <- prometheus.MustNewConstMetric(
				c.meanDiffMillis, prometheus.GaugeValue, float64(diff),
				strconv.Itoa(int(id)), rec.Name,
			)
		}
	}
	for _, rating := range []model.ActivityRating{model.NotOnce, model.OnlyOnce, model.Optimal, model.NotOptimal} {
		ch <- prometheus.MustNewConstMetric(c.ratingCount, prometheus.GaugeValue, float64(counts[rating]), rating.String())
	}
}
