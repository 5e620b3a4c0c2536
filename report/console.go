// Package report turns computed results into console text, result tables and
// chart images. It never derives statistics itself: every number it prints or
// plots is handed to it by the caller.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// Decimal places used across the console report.
const (
	MeanDecimals   = 2
	StatDecimals   = 4
	PValueDecimals = 6
)

// NotAvailable is printed in place of NaN.
const NotAvailable = "n/a"

const ruleWidth = 80

// FormatFloat formats v with a fixed number of decimals; NaN becomes "n/a".
func FormatFloat(v float64, decimals int) string {
	switch {
	case math.IsNaN(v):
		return NotAvailable
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// FormatMean formats a mean or level at MeanDecimals.
func FormatMean(v float64) string { return FormatFloat(v, MeanDecimals) }

// FormatStat formats a test statistic or coefficient at StatDecimals.
func FormatStat(v float64) string { return FormatFloat(v, StatDecimals) }

// FormatPValue formats a p-value at PValueDecimals.
func FormatPValue(v float64) string { return FormatFloat(v, PValueDecimals) }

// FormatPercent formats v with one decimal and a percent sign.
func FormatPercent(v float64) string {
	if math.IsNaN(v) {
		return NotAvailable
	}
	return FormatFloat(v, 1) + "%"
}

// Console writes the human-readable report.
type Console struct {
	w io.Writer

	title *color.Color
	head  *color.Color
	good  *color.Color
	warn  *color.Color
}

// NewConsole writes to w. With useColor false no escape codes are emitted.
func NewConsole(w io.Writer, useColor bool) *Console {
	c := &Console{
		w:     w,
		title: color.New(color.FgCyan, color.Bold),
		head:  color.New(color.FgYellow, color.Bold),
		good:  color.New(color.FgGreen),
		warn:  color.New(color.FgRed),
	}
	for _, col := range []*color.Color{c.title, c.head, c.good, c.warn} {
		if useColor {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
	return c
}

// Banner prints a title framed by double rules.
func (c *Console) Banner(title string) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintln(c.w, rule)
	c.title.Fprintln(c.w, title)
	fmt.Fprintln(c.w, rule)
}

// Section prints a numbered or plain section heading with a single rule.
func (c *Console) Section(title string) {
	fmt.Fprintln(c.w)
	c.head.Fprintln(c.w, title)
	fmt.Fprintln(c.w, strings.Repeat("-", ruleWidth))
}

// Linef prints an indented line.
func (c *Console) Linef(format string, args ...interface{}) {
	fmt.Fprintf(c.w, "  "+format+"\n", args...)
}

// KV prints an indented "key: value" line.
func (c *Console) KV(key, value string) {
	fmt.Fprintf(c.w, "  %s: %s\n", key, value)
}

// Good prints a highlighted positive finding.
func (c *Console) Good(format string, args ...interface{}) {
	c.good.Fprintf(c.w, "  "+format+"\n", args...)
}

// Warn prints a highlighted caveat.
func (c *Console) Warn(format string, args ...interface{}) {
	c.warn.Fprintf(c.w, "  "+format+"\n", args...)
}

// Conclusion prints the verdict of a significance test at alpha.
func (c *Console) Conclusion(significant bool, alpha float64, subject string) {
	a := strconv.FormatFloat(alpha, 'f', -1, 64)
	if significant {
		c.Good("Conclusion: statistically significant difference (p < %s) %s.", a, subject)
		return
	}
	c.Linef("Conclusion: no statistically significant difference (p >= %s) %s.", a, subject)
}

// Table renders rows under header with right-aligned cells.
func (c *Console) Table(header []string, rows [][]string) {
	table := tablewriter.NewWriter(c.w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.AppendBulk(rows)
	table.Render()
}

// Blank prints an empty line.
func (c *Console) Blank() {
	fmt.Fprintln(c.w)
}
