package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/samber/lo"
)

type ReportStep struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time
	Success   bool
	Error     string
}

type colorizer interface {
	Green(text string) string
	Yellow(text string) string
	Red(text string) string
	Gray(text string) string
}

// ReportIssue is a failure or warning tied to one component.
type ReportIssue struct {
	Component string
	Message   string
	Details   []string
}

// RenderReport summarizes a render or doctor run for the terminal.
type RenderReport struct {
	out         io.Writer
	errOut      io.Writer
	colors      colorizer
	steps       []ReportStep
	warnings    []ReportIssue
	errors      []ReportIssue
	startTime   time.Time
	now         func() time.Time
	subject     string
	components  int
	hasFailures bool
}

func NewRenderReport(output *Output, subject string) *RenderReport {
	return &RenderReport{
		out:       output.out,
		errOut:    output.errOut,
		colors:    output,
		startTime: time.Now(),
		now:       time.Now,
		subject:   subject,
	}
}

func (r *RenderReport) SetComponentCount(count int) {
	r.components = count
}

func (r *RenderReport) StartStep(name string) int {
	r.steps = append(r.steps, ReportStep{Name: name, StartTime: r.now()})
	return len(r.steps) - 1
}

func (r *RenderReport) EndStep(step int, err error) {
	s := &r.steps[step]
	s.EndTime = r.now()
	s.Success = err == nil
	if err != nil {
		s.Error = err.Error()
		r.hasFailures = true
	}
}

func (r *RenderReport) AddWarning(component, message string, details ...string) {
	r.warnings = append(r.warnings, ReportIssue{Component: component, Message: message, Details: details})
}

func (r *RenderReport) AddError(component, message string, details ...string) {
	r.errors = append(r.errors, ReportIssue{Component: component, Message: message, Details: details})
	r.hasFailures = true
}

func (r *RenderReport) HasFailures() bool {
	return r.hasFailures
}

func (r *RenderReport) Render() {
	duration := r.now().Sub(r.startTime)
	if len(r.errors) == 0 && len(r.warnings) == 0 {
		r.renderMinimal(duration)
	} else {
		r.renderVerbose(duration)
	}
}

func (r *RenderReport) renderMinimal(duration time.Duration) {
	fmt.Fprintf(r.out, "  "+r.colors.Green("✓ ")+"%d components\n", r.components)

	failed := lo.Filter(r.steps, func(s ReportStep, _ int) bool { return !s.Success })
	if len(failed) == 0 {
		fmt.Fprintf(r.out, "  "+r.colors.Green("✓ ")+"Done in %s\n", formatDuration(duration))
	} else {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, "Failed steps:")
		for _, step := range failed {
			fmt.Fprintf(r.out, "  "+r.colors.Red("✗ ")+"%s: %s\n", step.Name, step.Error)
		}
	}

	if r.subject != "" {
		fmt.Fprintf(r.out, "\n  %s\n", r.colors.Gray("Document: "+r.subject))
	}
}

func (r *RenderReport) renderVerbose(duration time.Duration) {
	fmt.Fprintf(r.out, "  %d components\n", r.components)

	fmt.Fprintln(r.out)
	for _, step := range r.steps {
		status := r.colors.Green("✓")
		if !step.Success {
			status = r.colors.Red("✗")
		}
		fmt.Fprintf(r.out, "  %s %s\n", status, step.Name)
	}

	if len(r.errors) > 0 {
		fmt.Fprintln(r.out)
		fmt.Fprintf(r.errOut, "  "+r.colors.Red("✗ ")+"Errors (%d):\n", len(r.errors))
		r.renderIssues(r.errOut, r.errors, r.colors.Red("✗"))
	}

	if len(r.warnings) > 0 {
		fmt.Fprintln(r.out)
		fmt.Fprintf(r.out, "  "+r.colors.Yellow("⚠ ")+"Warnings (%d):\n", len(r.warnings))
		r.renderIssues(r.out, r.warnings, r.colors.Yellow("⚠"))
	}

	fmt.Fprintln(r.out)
	if r.hasFailures {
		fmt.Fprintf(r.errOut, "  %s\n", r.colors.Red(fmt.Sprintf("Failed after %s", formatDuration(duration))))
	} else {
		fmt.Fprintf(r.out, "  "+r.colors.Green("✓ ")+"Done in %s\n", formatDuration(duration))
	}

	if r.subject != "" {
		fmt.Fprintf(r.out, "\n  %s\n", r.colors.Gray("Document: "+r.subject))
	}
}

func (r *RenderReport) renderIssues(w io.Writer, issues []ReportIssue, mark string) {
	for _, issue := range issues {
		fmt.Fprintf(w, "  %s %s\n", mark, issue.Component)
		fmt.Fprintf(w, "    %s\n", issue.Message)
		for _, detail := range deduplicateStrings(issue.Details) {
			fmt.Fprintf(w, "      • %s\n", detail)
		}
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.1fs", float64(d)/float64(time.Second))
}

// deduplicateStrings folds repeats into one line with a count, keeping first-seen order.
func deduplicateStrings(items []string) []string {
	if len(items) <= 1 {
		return items
	}
	counts := lo.CountValues(items)
	return lo.Map(lo.Uniq(items), func(item string, _ int) string {
		if n := counts[item]; n > 1 {
			return fmt.Sprintf("%s (%d occurrences)", item, n)
		}
		return item
	})
}
