package diff

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var friendlyLabels = map[string]string{
	"responseTimeAvg":        "Avg Response Time",
	"responseTimeP95":        "P95 Response Time",
	"responseTimeP99":        "P99 Response Time",
	"avgResponseTime":        "Avg Response Time",
	"p95ResponseTime":        "P95 Response Time",
	"p99ResponseTime":        "P99 Response Time",
	"throughput":             "Throughput",
	"requestsPerSecond":      "Requests / sec",
	"errorRate":              "Error Rate",
	"successRate":            "Success Rate",
	"cpuUsage":               "CPU Usage",
	"memoryUsage":            "Memory Usage",
	"pageLoadTime":           "Page Load Time",
	"timeToFirstByte":        "Time to First Byte",
	"firstContentfulPaint":   "First Contentful Paint",
	"largestContentfulPaint": "Largest Contentful Paint",

	"http_req_duration_avg_ms":  "HTTP Request Duration (avg)",
	"http_req_duration_med_ms":  "HTTP Request Duration (median)",
	"http_req_duration_p90_ms":  "HTTP Request Duration (p90)",
	"http_req_duration_p95_ms":  "HTTP Request Duration (p95)",
	"http_req_duration_max_ms":  "HTTP Request Duration (max)",
	"http_req_waiting_avg_ms":   "Time Waiting (avg)",
	"http_req_waiting_p95_ms":   "Time Waiting (p95)",
	"http_req_failed_rate":      "HTTP Failure Rate",
	"http_reqs_count":           "HTTP Requests",
	"throughput_rps":            "Throughput (req/s)",
	"iterations_count":          "Iterations",
	"iterations_rps":            "Iterations / sec",
	"iteration_duration_avg_ms": "Iteration Duration (avg)",
	"iteration_duration_p95_ms": "Iteration Duration (p95)",
	"vus_max":                   "Max Virtual Users",
	"data_received_bytes":       "Data Received",
	"data_sent_bytes":           "Data Sent",
	"checks_pass_rate":          "Checks Pass Rate",
	"checks_total_passes":       "Checks Passed",
	"checks_total_fails":        "Checks Failed",
	"checks_success_rate":       "Checks Success Rate",
	"lcp_avg_ms":                "LCP (avg)",
	"lcp_p95_ms":                "LCP (p95)",
	"fcp_avg_ms":                "FCP (avg)",
	"fcp_p95_ms":                "FCP (p95)",
	"inp_avg_ms":                "INP (avg)",
	"inp_p95_ms":                "INP (p95)",
	"ttfb_avg_ms":               "TTFB (avg)",
	"ttfb_p95_ms":               "TTFB (p95)",
	"fid_avg_ms":                "FID (avg)",
	"fid_p95_ms":                "FID (p95)",
	"cls_avg":                   "CLS (avg)",
	"cls_p95":                   "CLS (p95)",
}

var (
	upperLetter = regexp.MustCompile(`([A-Z])`)
	spaces      = regexp.MustCompile(`\s+`)
)

// Label returns a human-readable name for a metric key.
func Label(key string) string {
	if label, ok := friendlyLabels[key]; ok {
		return label
	}

	label := upperLetter.ReplaceAllString(key, " $1")
	label = strings.ReplaceAll(label, "_", " ")
	label = strings.TrimSpace(spaces.ReplaceAllString(label, " "))
	if label == "" {
		return key
	}

	first, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(first)) + label[size:]
}
