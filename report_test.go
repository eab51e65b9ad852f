package imagekit_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/gobeaver/imagekit"
	"github.com/gobeaver/imagekit/imageinfo"
)

func scanFixture(t *testing.T) *imagekit.Report {
	t.Helper()
	fs := newStore(t, map[string][]byte{
		"a.png":     pngHeader(3, 4),
		"b.gif.gz":  gzipped(t, gifHeader(5, 6)),
		"notes.txt": []byte("definitely not an image"),
	})
	rep, err := imagekit.NewInspector(fs).Scan(context.Background(), "", "")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	return rep
}

func TestParseReportFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    imagekit.ReportFormat
		wantErr bool
	}{
		{"json", imagekit.ReportJSON, false},
		{"JSON", imagekit.ReportJSON, false},
		{"yml", imagekit.ReportYAML, false},
		{"yaml", imagekit.ReportYAML, false},
		{"", imagekit.ReportText, false},
		{"table", imagekit.ReportText, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := imagekit.ParseReportFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseReportFormat(%q) = %q, %v", tt.in, got, err)
		}
		if tt.wantErr && !errors.Is(err, imagekit.ErrNotSupported) {
			t.Errorf("ParseReportFormat(%q) error = %v, want ErrNotSupported", tt.in, err)
		}
	}
}

func TestWriteReportJSON(t *testing.T) {
	rep := scanFixture(t)

	var buf bytes.Buffer
	if err := imagekit.WriteReport(&buf, rep, imagekit.ReportJSON); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	var got struct {
		ID      string `json:"id"`
		Results []struct {
			Path        string `json:"path"`
			Format      string `json:"format"`
			Width       int64  `json:"width"`
			Compression string `json:"compression"`
		} `json:"results"`
		Summary imagekit.Summary `json:"summary"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if got.ID != rep.ID {
		t.Errorf("id = %q, want %q", got.ID, rep.ID)
	}
	if len(got.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(got.Results))
	}
	gif := got.Results[1]
	if gif.Path != "b.gif.gz" || gif.Format != "gif" || gif.Width != 5 || gif.Compression != "gzip" {
		t.Errorf("results[1] = %+v", gif)
	}
	if got.Summary.Recognized != 2 || got.Summary.Unrecognized != 1 {
		t.Errorf("summary = %+v", got.Summary)
	}
}

func TestWriteReportYAML(t *testing.T) {
	rep := scanFixture(t)

	var buf bytes.Buffer
	if err := imagekit.WriteReport(&buf, rep, imagekit.ReportYAML); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	var got struct {
		Results []struct {
			Path   string `yaml:"path"`
			Format string `yaml:"format"`
			MIME   string `yaml:"mime"`
		} `yaml:"results"`
		Summary struct {
			Total    int            `yaml:"total"`
			ByFormat map[string]int `yaml:"by_format"`
		} `yaml:"summary"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid yaml: %v\n%s", err, buf.String())
	}
	if len(got.Results) != 3 || got.Results[0].Format != "png" || got.Results[0].MIME != "image/png" {
		t.Errorf("results = %+v", got.Results)
	}
	if got.Summary.Total != 3 || got.Summary.ByFormat["gif"] != 1 {
		t.Errorf("summary = %+v", got.Summary)
	}
}

func TestWriteReportText(t *testing.T) {
	rep := scanFixture(t)

	var buf bytes.Buffer
	if err := imagekit.WriteReport(&buf, rep, imagekit.ReportText); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"PATH", "FORMAT", "SIZE",
		"a.png", "3x4", "image/png",
		"b.gif.gz", "5x6", "gzip",
		"3 files: 2 recognized, 1 unrecognized, 0 rejected, 0 failed",
		"gif=1 png=1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q:\n%s", want, out)
		}
	}

	lines := strings.Split(out, "\n")
	var notes string
	for _, l := range lines {
		if strings.HasPrefix(l, "notes.txt") {
			notes = l
		}
	}
	if fields := strings.Fields(notes); len(fields) < 4 || fields[1] != "-" || fields[2] != "-" || fields[3] != "-" {
		t.Errorf("unrecognized row = %q, want dashes for format, size and mime", notes)
	}
}

func TestWriteResults(t *testing.T) {
	results := []imagekit.Result{{
		Path:    "icon.ico",
		Format:  imageinfo.ICO,
		MIME:    "image/ico",
		Width:   32,
		Height:  32,
		Entries: []imageinfo.Size{{Width: 16, Height: 16}, {Width: 32, Height: 32}},
	}}

	var buf bytes.Buffer
	if err := imagekit.WriteResults(&buf, results, imagekit.ReportText); err != nil {
		t.Fatalf("WriteResults() error = %v", err)
	}
	if !strings.Contains(buf.String(), "2 entries") {
		t.Errorf("text output missing entry count:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "files:") {
		t.Error("WriteResults printed a summary")
	}

	buf.Reset()
	if err := imagekit.WriteResults(&buf, results, imagekit.ReportJSON); err != nil {
		t.Fatalf("WriteResults() error = %v", err)
	}
	var decoded []imagekit.Result
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Format != imageinfo.ICO || len(decoded[0].Entries) != 2 {
		t.Errorf("decoded = %+v", decoded)
	}

	if err := imagekit.WriteResults(&buf, results, "xml"); !errors.Is(err, imagekit.ErrNotSupported) {
		t.Errorf("WriteResults(xml) error = %v, want ErrNotSupported", err)
	}
}
