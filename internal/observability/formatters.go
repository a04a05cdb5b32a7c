// Package observability provides formatted CLI output and trace export setup.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/hiring-bias-game/internal/dashboard"
	"github.com/jonathan/hiring-bias-game/internal/game"
	"github.com/jonathan/hiring-bias-game/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCandidates outputs a short card per candidate.
func (p *Printer) PrintCandidates(title string, candidates []types.Candidate) {
	if len(candidates) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(candidates), maxItemsToShow)
	for i := 0; i < count; i++ {
		writeCandidate(&sb, i+1, candidates[i])
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(candidates) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more candidates", len(candidates)-maxItemsToShow))
	}

	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

func writeCandidate(sb *strings.Builder, n int, c types.Candidate) {
	sb.WriteString(fmt.Sprintf("#%d  %s (id %d)\n", n, c.Name, c.ID))
	sb.WriteString(fmt.Sprintf("    %s, %d, %d yrs experience\n", c.Gender, c.Age, c.Experience))
	if c.Education != "" {
		sb.WriteString(fmt.Sprintf("    %s\n", c.Education))
	}
	if len(c.Skills.Technical) > 0 {
		skills := strings.Join(c.Skills.Technical, ", ")
		if len(skills) > 40 {
			skills = skills[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("    Skills: %s\n", skills))
	}
}

// PrintRound outputs the round header and its candidate pool.
func (p *Printer) PrintRound(view *game.RoundView) {
	if view == nil {
		return
	}
	title := fmt.Sprintf("ROUND %d/%d  %s: %s", view.Round, view.MaxRounds, view.Department, view.JobPosition)
	if len(view.Candidates) == 0 {
		p.printBox(title, string(view.State))
		return
	}
	p.PrintCandidates(title, view.Candidates)
}

// PrintReport outputs the dashboard distributions, influences and insights.
func (p *Printer) PrintReport(report *dashboard.Report) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Session:  %s\n", report.SessionID))
	sb.WriteString(fmt.Sprintf("Team:     %d hires\n", len(report.Team)))
	sb.WriteString(fmt.Sprintf("Score:    %d\n", report.PerformanceScore))
	sb.WriteString("\n")

	sb.WriteString("Gender:\n")
	writeBucket(&sb, "male", report.Gender.Male)
	writeBucket(&sb, "female", report.Gender.Female)
	writeBucket(&sb, "non-binary", report.Gender.NonBinary)

	sb.WriteString("Age:\n")
	writeBucket(&sb, "20-29", report.Age.Twenties)
	writeBucket(&sb, "30-39", report.Age.Thirties)
	writeBucket(&sb, "40-49", report.Age.Forties)
	writeBucket(&sb, "50+", report.Age.FiftyUp)

	sb.WriteString("Education:\n")
	writeBucket(&sb, "bachelors", report.Education.Bachelors)
	writeBucket(&sb, "masters", report.Education.Masters)
	writeBucket(&sb, "other", report.Education.Other)

	if report.Influences.Total() > 0 {
		sb.WriteString("Decision influences:\n")
		writeBucket(&sb, "education", report.Influences.Education)
		writeBucket(&sb, "experience", report.Influences.Experience)
		writeBucket(&sb, "gender", report.Influences.Gender)
		writeBucket(&sb, "age", report.Influences.Age)
		writeBucket(&sb, "communication", report.Influences.Communication)
		writeBucket(&sb, "skills", report.Influences.Skills)
	}

	title := "TEAM DASHBOARD"
	if report.Final {
		title = "FINAL TEAM DASHBOARD"
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
	p.PrintInsights(report.Insights)
}

func writeBucket(sb *strings.Builder, label string, b dashboard.Bucket) {
	if b.Count == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("  • %-14s %2d (%d%%)\n", label, b.Count, b.Percentage))
}

// PrintInsights outputs bias insights with their percentages.
func (p *Printer) PrintInsights(insights []types.BiasInsight) {
	if len(insights) == 0 {
		return
	}

	var sb strings.Builder
	for i, in := range insights {
		sb.WriteString(fmt.Sprintf("⚠ %s (%d%%)\n", in.Title, in.Percentage))
		description := in.Description
		if len(description) > 52 {
			description = description[:49] + "..."
		}
		sb.WriteString(fmt.Sprintf("  %s\n", description))
		if i < len(insights)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("BIAS INSIGHTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAnalysis outputs a provider bias analysis.
func (p *Printer) PrintAnalysis(analysis *types.BiasAnalysis) {
	if analysis == nil {
		return
	}
	p.PrintInsights(analysis.BiasInsights)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overall bias score: %d\n", analysis.OverallBiasScore))
	if len(analysis.Recommendations) > 0 {
		sb.WriteString("\nRecommendations:\n")
		for _, rec := range analysis.Recommendations {
			sb.WriteString(fmt.Sprintf("  • %s\n", rec))
		}
	}
	p.printBox("BIAS ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintWhatIf outputs the effect of swapping one round's hire.
func (p *Printer) PrintWhatIf(result *dashboard.WhatIfResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Round %d: %s\n\n", result.Round+1, result.JobPosition))
	sb.WriteString(fmt.Sprintf("Hired:        %s\n", result.Original.Name))
	sb.WriteString(fmt.Sprintf("Alternative:  %s\n\n", result.Alternative.Name))
	sb.WriteString(fmt.Sprintf("Diversity:    %+d\n", result.DiversityChange))
	sb.WriteString(fmt.Sprintf("Experience:   %+.1f yrs\n", result.ExperienceChange))
	sb.WriteString(fmt.Sprintf("Innovation:   %+d", result.InnovationChange))

	p.printBox("WHAT IF", sb.String())
}

// PrintPopup outputs an educational popup.
func (p *Printer) PrintPopup(popup game.Popup) {
	var sb strings.Builder
	for _, line := range wrap(popup.Content, boxWidth-4) {
		sb.WriteString(line + "\n")
	}
	if popup.Tip != "" {
		sb.WriteString("\n")
		for _, line := range wrap("Tip: "+popup.Tip, boxWidth-4) {
			sb.WriteString(line + "\n")
		}
	}
	p.printBox(popup.Title, strings.TrimSuffix(sb.String(), "\n"))
}

// wrap splits text into lines of at most width bytes on word boundaries.
func wrap(text string, width int) []string {
	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && line.Len()+1+len(word) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
