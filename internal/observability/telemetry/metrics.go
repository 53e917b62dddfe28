package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	BankingOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicebank_banking_operations_total",
		Help: "Banking operations handled, by operation and outcome",
	}, []string{"operation", "status"})

	IntentClassificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicebank_intent_classifications_total",
		Help: "Classified utterances by intent label",
	}, []string{"intent"})

	DialogueTurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicebank_dialogue_turns_total",
		Help: "Dialogue turns by resulting state",
	}, []string{"state"})

	TranscriptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicebank_transcriptions_total",
		Help: "Speech-to-text attempts by decoding assumption and outcome",
	}, []string{"encoding", "status"})

	SynthesesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicebank_syntheses_total",
		Help: "Text-to-speech requests by language and outcome",
	}, []string{"language", "status"})

	// Infrastructure metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicebank_upstream_requests_total",
		Help: "Calls to speech and LLM providers",
	}, []string{"provider", "status"})

	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voicebank_upstream_latency_seconds",
		Help:    "Latency of speech and LLM provider calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	DataStoreLoadSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voicebank_datastore_load_seconds",
		Help:    "Time spent loading the CSV snapshot",
		Buckets: prometheus.DefBuckets,
	})

	DataStoreRows = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "voicebank_datastore_rows",
		Help: "Rows loaded per CSV table",
	}, []string{"table"})
)
