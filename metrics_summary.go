package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// printMetricsSummary writes one line per metric series: counter values, and the count and
// mean of histograms.
func printMetricsSummary(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Exchange metrics:")
	for _, family := range families {
		lines := make([]string, 0, len(family.GetMetric()))
		for _, metric := range family.GetMetric() {
			labels := describeLabels(metric.GetLabel())
			switch family.GetType() {
			case dto.MetricType_COUNTER:
				lines = append(lines, fmt.Sprintf("  %s%s %g", family.GetName(), labels, metric.GetCounter().GetValue()))
			case dto.MetricType_HISTOGRAM:
				h := metric.GetHistogram()
				mean := 0.0
				if h.GetSampleCount() > 0 {
					mean = h.GetSampleSum() / float64(h.GetSampleCount())
				}
				lines = append(lines, fmt.Sprintf("  %s%s count=%d mean=%.6fs",
					family.GetName(), labels, h.GetSampleCount(), mean))
			}
		}
		sort.Strings(lines)
		for _, line := range lines {
			fmt.Fprintln(w, line)
		}
	}
	return nil
}

func describeLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
