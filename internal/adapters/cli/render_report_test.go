package cli

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func fixedReport(subject string) (*RenderReport, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	r := NewRenderReport(NewOutputTo(&out, &errOut), subject)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.startTime = start
	r.now = func() time.Time { return start.Add(250 * time.Millisecond) }
	return r, &out, &errOut
}

func TestRenderReportMinimal(t *testing.T) {
	r, out, errOut := fixedReport("site/document.json")
	r.SetComponentCount(3)
	r.EndStep(r.StartStep("Load document"), nil)
	r.EndStep(r.StartStep("Render page /"), nil)
	r.Render()

	want := "  ✓ 3 components\n  ✓ Done in 250ms\n\n  Document: site/document.json\n"
	if out.String() != want {
		t.Errorf("Render() = %q, want %q", out.String(), want)
	}
	if errOut.Len() != 0 {
		t.Errorf("unexpected stderr: %q", errOut.String())
	}
	if r.HasFailures() {
		t.Error("HasFailures() = true, want false")
	}
}

func TestRenderReportFailedStep(t *testing.T) {
	r, out, _ := fixedReport("")
	r.EndStep(r.StartStep("Load document"), errors.New("no such file"))
	r.Render()

	if !strings.Contains(out.String(), "✗ Load document: no such file") {
		t.Errorf("Render() = %q", out.String())
	}
	if !r.HasFailures() {
		t.Error("HasFailures() = false, want true")
	}
}

func TestRenderReportVerbose(t *testing.T) {
	r, out, errOut := fixedReport("doc")
	r.SetComponentCount(2)
	r.EndStep(r.StartStep("Render page /"), nil)
	r.AddError("hero", "runtime error: kaboom", "line 3", "line 3")
	r.AddWarning("footer", "rendered from template")
	r.Render()

	if !strings.Contains(errOut.String(), "Errors (1):") {
		t.Errorf("stderr = %q", errOut.String())
	}
	if !strings.Contains(errOut.String(), "line 3 (2 occurrences)") {
		t.Errorf("details not folded: %q", errOut.String())
	}
	if !strings.Contains(errOut.String(), "Failed after 250ms") {
		t.Errorf("stderr = %q", errOut.String())
	}
	if !strings.Contains(out.String(), "Warnings (1):") || !strings.Contains(out.String(), "footer") {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestDeduplicateStrings(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{in: nil, want: nil},
		{in: []string{"a"}, want: []string{"a"}},
		{in: []string{"b", "a", "b"}, want: []string{"b (2 occurrences)", "a"}},
	}
	for _, tt := range tests {
		if got := deduplicateStrings(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("deduplicateStrings(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(1500 * time.Millisecond); got != "1.5s" {
		t.Errorf("formatDuration() = %q, want 1.5s", got)
	}
	if got := formatDuration(42 * time.Millisecond); got != "42ms" {
		t.Errorf("formatDuration() = %q, want 42ms", got)
	}
}
