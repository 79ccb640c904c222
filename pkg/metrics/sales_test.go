package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/simpos-backend/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestSalesMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewSalesMetrics(reg)
	metrics.Observe(OperationCreate, 250*time.Millisecond, nil)
	metrics.Observe(OperationCreate, 40*time.Millisecond, pkgerrors.New(pkgerrors.CodeConflict, "already sold"))
	metrics.Observe(OperationRefund, 10*time.Millisecond, pkgerrors.New(pkgerrors.CodeValidation, "nothing to refund"))

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	created := findMetricFamily(mfs, "sales_created_total")
	if created == nil || len(created.GetMetric()) != 1 {
		t.Fatalf("sales_created_total not exported")
	}
	if got := created.GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected created=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "sales_conflicts_total", "operation", OperationCreate); err != nil {
		t.Fatalf("fetch conflicts: %v", err)
	} else if got != 1 {
		t.Fatalf("expected conflicts=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "sales_operations_total", "outcome", "validation"); err != nil {
		t.Fatalf("fetch operations: %v", err)
	} else if got != 1 {
		t.Fatalf("expected validation outcome=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "sales_operation_duration_seconds", "operation", OperationCreate); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0.25 {
		t.Fatalf("expected duration sum > 0.25, got %f", got)
	}
}

func TestSalesMetricsNilSafe(t *testing.T) {
	var nilMetrics *SalesMetrics
	nilMetrics.Observe(OperationCancel, time.Second, nil)
	NewSalesMetrics(nil).Observe(OperationCancel, time.Second, errors.New("boom"))
}

func TestOutcome(t *testing.T) {
	cases := map[string]error{
		"success":   nil,
		"conflict":  fmt.Errorf("wrapped: %w", pkgerrors.New(pkgerrors.CodeConflict, "x")),
		"not_found": pkgerrors.New(pkgerrors.CodeNotFound, "x"),
		"error":     errors.New("plain"),
	}
	for want, err := range cases {
		if got := Outcome(err); got != want {
			t.Fatalf("Outcome(%v) = %q, want %q", err, got, want)
		}
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
