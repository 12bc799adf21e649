package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dvloznov/finance-insights/internal/analysis"
	"github.com/dvloznov/finance-insights/internal/bigquery"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/items"
	"github.com/olekukonko/tablewriter"
)

func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func printResult(w io.Writer, res analysis.Result) {
	fmt.Fprintf(w, "Outcome: %s", res.Outcome)
	if res.FailureKind != analysis.FailureNone {
		fmt.Fprintf(w, " (%s)", res.FailureKind)
	}
	fmt.Fprintln(w)
	if res.RunID != "" {
		fmt.Fprintf(w, "Run:     %s  model=%s  transactions=%d\n", res.RunID, res.Model, res.TransactionCount)
	}
	fmt.Fprintf(w, "\n%s\n", res.Summary)

	if len(res.Anomalies) > 0 {
		fmt.Fprintln(w, "\nAnomalies")
		table := newTable(w, "Date", "Description", "Amount", "Reason")
		for _, a := range res.Anomalies {
			table.Append([]string{a.Date, a.Description, money(a.Amount), a.Reason})
		}
		table.Render()
	}

	if len(res.Duplicates) > 0 {
		fmt.Fprintln(w, "\nDuplicates")
		table := newTable(w, "Group", "Date", "Description", "Amount")
		for i, group := range res.Duplicates {
			for _, e := range group {
				table.Append([]string{strconv.Itoa(i + 1), e.Date, e.Description, money(e.Amount)})
			}
		}
		table.Render()
	}

	if res.Advice != "" {
		fmt.Fprintf(w, "\nAdvice: %s\n", res.Advice)
	}
	if res.Error != "" {
		fmt.Fprintf(w, "Error:  %s\n", res.Error)
	}
}

func printItems(w io.Writer, list items.ItemList) {
	fmt.Fprintf(w, "%d item(s), %s\n", list.Count(), list.Provenance)
	if list.Count() == 0 {
		return
	}
	table := newTable(w, "Name", "Quantity", "Label")
	for _, it := range list.Items {
		table.Append([]string{it.Name, strconv.Itoa(it.Quantity), it.Formatted})
	}
	table.Render()
}

func printCategorySummary(w io.Writer, rows []domain.CategorySummary) {
	table := newTable(w, "Category", "Amount", "Count")
	for _, r := range rows {
		table.Append([]string{r.Category, money(r.Amount), strconv.FormatInt(r.Count, 10)})
	}
	table.Render()
}

func printDateSummary(w io.Writer, rows []domain.DateSummary) {
	table := newTable(w, "Date", "Total", "Count")
	for _, r := range rows {
		table.Append([]string{r.Date, money(r.Total), strconv.FormatInt(r.Count, 10)})
	}
	table.Render()
}

func printPlatformSummary(w io.Writer, rows []domain.PlatformSummary) {
	table := newTable(w, "Platform", "Total", "Count")
	for _, r := range rows {
		platform := r.Platform
		if platform == "" {
			platform = "-"
		}
		table.Append([]string{platform, money(r.Total), strconv.FormatInt(r.Count, 10)})
	}
	table.Render()
}

func printRuns(w io.Writer, runs []*bigquery.AnalysisRunRow) {
	table := newTable(w, "Started", "Run", "Model", "Outcome", "Txns", "Duration", "Raw")
	for _, r := range runs {
		outcome := r.Outcome
		if r.FailureKind.Valid {
			outcome += " (" + r.FailureKind.StringVal + ")"
		}
		table.Append([]string{
			r.StartedTS.UTC().Format("2006-01-02 15:04:05"),
			r.RunID,
			r.Model,
			outcome,
			strconv.FormatInt(r.TransactionCount, 10),
			fmt.Sprintf("%dms", r.DurationMS),
			r.RawGCSURI.StringVal,
		})
	}
	table.Render()
}
