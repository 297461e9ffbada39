package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/JasjusSirsak/bolususu/internal/domain"
)

var (
	csvIngestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "csv_ingest_total", Help: "CSV ingestion attempts by outcome"},
		[]string{"result"},
	)
	csvIngestRows = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "csv_ingested_rows_total", Help: "Rows persisted by successful ingestions"},
	)
	csvDeleteTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "csv_delete_total", Help: "CSV soft-delete attempts by outcome"},
		[]string{"result"},
	)
)

func init() { prometheus.MustRegister(csvIngestTotal, csvIngestRows, csvDeleteTotal) }

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return domain.KindOf(err).String()
}
