package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neardup_searches_total",
		Help: "Fuzzy word searches served by the API.",
	})
	searchCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neardup_search_cache_hits_total",
		Help: "Searches answered from the query cache.",
	})
	filesCleanedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neardup_files_cleaned_total",
		Help: "Duplicate files removed through the API.",
	})
	indexedWords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "neardup_indexed_words",
		Help: "Words currently held in the fuzzy index.",
	})
)
