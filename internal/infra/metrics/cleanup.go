package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(memoriesExpiredFound, memoriesDeletedTotal) }

var memoriesExpiredFound = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "web_memories_expired_found_total",
		Help: "Expired web memories found by the cleanup sweeper.",
	},
)

var memoriesDeletedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "web_memories_deleted_total",
		Help: "Web memories deleted by the cleanup sweeper.",
	},
)

func AddMemoriesFound(n int)   { memoriesExpiredFound.Add(float64(n)) }
func AddMemoriesDeleted(n int) { memoriesDeletedTotal.Add(float64(n)) }
