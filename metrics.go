package pico

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	statCompileTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pico_stat_compile_total",
		Help: "Stat map compilations by result",
	}, []string{"result"})

	treeEvaluateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pico_tree_evaluate_duration_seconds",
		Help:    "Time to collect, merge and compile the stats of a tree",
		Buckets: []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01},
	})

	statCacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pico_stat_cache_entries",
		Help: "Compiled stat maps held by stat caches",
	})
)
