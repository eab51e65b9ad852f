package imagekit

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Report is the outcome of a Scan.
type Report struct {
	ID         string           `json:"id" yaml:"id"`
	Root       string           `json:"root" yaml:"root"`
	Pattern    string           `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	StartedAt  time.Time        `json:"started_at" yaml:"started_at"`
	Duration   time.Duration    `json:"duration" yaml:"duration"`
	Results    []Result         `json:"results" yaml:"results"`
	Summary    Summary          `json:"summary" yaml:"summary"`
	CacheStats *CacheStatistics `json:"cache,omitempty" yaml:"cache,omitempty"`
}

// Summary counts the results of a Report.
type Summary struct {
	Total        int            `json:"total" yaml:"total"`
	Recognized   int            `json:"recognized" yaml:"recognized"`
	Unrecognized int            `json:"unrecognized" yaml:"unrecognized"`
	Rejected     int            `json:"rejected" yaml:"rejected"`
	Failed       int            `json:"failed" yaml:"failed"`
	ByFormat     map[string]int `json:"by_format,omitempty" yaml:"by_format,omitempty"`
}

// summarize counts results by the class Scan recorded for each.
func summarize(results []Result, classes []resultClass) Summary {
	s := Summary{Total: len(results), ByFormat: make(map[string]int)}
	for i, res := range results {
		switch classes[i] {
		case classOK:
			s.Recognized++
			s.ByFormat[res.Format.String()]++
		case classUnrecognized:
			s.Unrecognized++
		case classRejected:
			s.Rejected++
			s.ByFormat[res.Format.String()]++
		default:
			s.Failed++
		}
	}
	return s
}

// ReportFormat selects the encoding used by WriteReport.
type ReportFormat string

const (
	ReportJSON ReportFormat = "json"
	ReportYAML ReportFormat = "yaml"
	ReportText ReportFormat = "text"
)

// ParseReportFormat parses a report format name, case-insensitively.
func ParseReportFormat(s string) (ReportFormat, error) {
	switch f := ReportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case ReportJSON, ReportYAML, ReportText:
		return f, nil
	case "yml":
		return ReportYAML, nil
	case "", "table":
		return ReportText, nil
	default:
		return "", fmt.Errorf("%w: report format %q", ErrNotSupported, s)
	}
}

// WriteReport encodes rep to w.
func WriteReport(w io.Writer, rep *Report, format ReportFormat) error {
	switch format {
	case ReportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case ReportYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	case ReportText:
		return writeText(w, rep.Results, &rep.Summary)
	default:
		return fmt.Errorf("%w: report format %q", ErrNotSupported, format)
	}
}

// WriteResults encodes individual results to w, as a list for json and yaml
// and as a table for text.
func WriteResults(w io.Writer, results []Result, format ReportFormat) error {
	switch format {
	case ReportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case ReportYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return err
		}
		return enc.Close()
	case ReportText:
		return writeText(w, results, nil)
	default:
		return fmt.Errorf("%w: report format %q", ErrNotSupported, format)
	}
}

func writeText(w io.Writer, results []Result, summary *Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tFORMAT\tSIZE\tMIME\tNOTE")
	for _, res := range results {
		size := "-"
		if res.Size().Known() {
			size = res.Size().String()
		}
		format := "-"
		if res.Format.Valid() {
			format = res.Format.String()
		}
		note := res.Error
		if note == "" && len(res.Entries) > 1 {
			note = fmt.Sprintf("%d entries", len(res.Entries))
		}
		if res.Compression != CompressionNone {
			note = strings.TrimSpace(string(res.Compression) + " " + note)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", res.Path, format, size, orDash(res.MIME), note)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if summary == nil {
		return nil
	}

	formats := make([]string, 0, len(summary.ByFormat))
	for f := range summary.ByFormat {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	parts := make([]string, 0, len(formats))
	for _, f := range formats {
		parts = append(parts, fmt.Sprintf("%s=%d", f, summary.ByFormat[f]))
	}
	_, err := fmt.Fprintf(w, "\n%d files: %d recognized, %d unrecognized, %d rejected, %d failed  %s\n",
		summary.Total, summary.Recognized, summary.Unrecognized, summary.Rejected, summary.Failed,
		strings.Join(parts, " "))
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
