package perf

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/odyssey-erp/proposal-wizard/internal/draftstore"
	jobmetrics "github.com/odyssey-erp/proposal-wizard/internal/jobs"
	"github.com/odyssey-erp/proposal-wizard/internal/proposal"
	"github.com/odyssey-erp/proposal-wizard/jobs"
)

func writeJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

func TestSyncJobThroughputAndReliability(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)
	library := draftstore.NewLibrary(draftstore.NewMemoryStorage())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	job := jobs.NewSyncJob(library, jobs.LogUploader{Logger: logger}, logger, metrics)

	const saved = 50
	for i := 0; i < saved; i++ {
		p := proposal.New(proposal.NewOptions{ID: fmt.Sprintf("p-%03d", i)})
		p.ClientDetails.ClientName = "Client"
		if err := library.Put(ctx, p); err != nil {
			t.Fatalf("seed library: %v", err)
		}
	}

	for i := 0; i < saved; i++ {
		task, err := jobs.NewProposalSyncTask(fmt.Sprintf("p-%03d", i))
		if err != nil {
			t.Fatalf("build task: %v", err)
		}
		if err := job.Handle(ctx, task); err != nil {
			t.Fatalf("sync p-%03d: %v", i, err)
		}
	}
	// Tasks for proposals deleted before the worker reached them are dropped.
	for i := 0; i < 3; i++ {
		task, _ := jobs.NewProposalSyncTask(fmt.Sprintf("gone-%d", i))
		if err := job.Handle(ctx, task); err == nil {
			t.Fatal("expected missing proposal to be skipped")
		}
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	success := metricValue(t, families, "proposal_jobs_total", map[string]string{"job": jobs.TaskProposalSync, "status": jobmetrics.StatusSuccess})
	skipped := metricValue(t, families, "proposal_jobs_total", map[string]string{"job": jobs.TaskProposalSync, "status": jobmetrics.StatusSkipped})
	if success != saved {
		t.Fatalf("expected %d successful syncs, got %f", saved, success)
	}
	if skipped != 3 {
		t.Fatalf("expected 3 skipped syncs, got %f", skipped)
	}

	if mean := histogramMean(t, families, "proposal_job_duration_seconds", map[string]string{"job": jobs.TaskProposalSync}); mean > 0.1 {
		t.Fatalf("sync duration above budget: %f", mean)
	}

	items, err := library.List(ctx)
	if err != nil {
		t.Fatalf("list library: %v", err)
	}
	for _, item := range items {
		if !item.IsSynced {
			t.Fatalf("proposal %s not marked synced", item.ID)
		}
	}
}

func metricValue(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				if fam.GetType() == dto.MetricType_COUNTER {
					return metric.GetCounter().GetValue()
				}
				if fam.GetType() == dto.MetricType_GAUGE {
					return metric.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func histogramMean(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				hist := metric.GetHistogram()
				if hist == nil || hist.GetSampleCount() == 0 {
					t.Fatalf("histogram %s missing samples", name)
				}
				return hist.GetSampleSum() / float64(hist.GetSampleCount())
			}
		}
	}
	t.Fatalf("histogram %s with labels %v not found", name, labels)
	return 0
}

func hasLabels(metric *dto.Metric, labels map[string]string) bool {
	for key, want := range labels {
		found := false
		for _, lp := range metric.GetLabel() {
			if lp.GetName() == key {
				found = lp.GetValue() == want
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
