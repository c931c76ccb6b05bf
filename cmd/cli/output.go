package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/kurihiro0119/github-weekly-series/internal/collector"
	"github.com/kurihiro0119/github-weekly-series/internal/domain"
)

const dateLayout = "2006-01-02"

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderSeries(w io.Writer, series *domain.WeeklySeries) {
	fmt.Fprintf(w, "\n%s: %s/%s\n", series.Kind, series.Owner, series.Repo)
	if len(series.Points) == 0 {
		fmt.Fprintln(w, "No activity recorded.")
		return
	}
	fmt.Fprintf(w, "Weeks: %d  Total: %d\n\n", len(series.Points), series.Points.Total())

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Week Of", "Week (Unix)", "Value"})
	for _, p := range series.Points {
		table.Append([]string{
			p.Week.Time().UTC().Format(dateLayout),
			strconv.FormatInt(int64(p.Week), 10),
			strconv.FormatInt(p.Value, 10),
		})
	}
	table.Render()
}

func renderDashboard(w io.Writer, dashboard *domain.Dashboard) {
	fmt.Fprintf(w, "\nDashboard: %s/%s\n", dashboard.Owner, dashboard.Repo)
	fmt.Fprintf(w, "Generated At: %s\n\n", time.Unix(dashboard.GeneratedAt, 0).UTC().Format(time.RFC3339))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Series", "Weeks", "Total", "Latest Week", "Latest Value"})
	for _, kind := range domain.AllSeriesKinds {
		series := dashboard.Series[kind]
		latestWeek, latestValue := "-", "-"
		if n := len(series); n > 0 {
			latestWeek = series[n-1].Week.Time().UTC().Format(dateLayout)
			latestValue = strconv.FormatInt(series[n-1].Value, 10)
		}
		table.Append([]string{
			string(kind),
			strconv.Itoa(len(series)),
			strconv.FormatInt(series.Total(), 10),
			latestWeek,
			latestValue,
		})
	}
	table.Render()
}

func renderQueries(w io.Writer, records []*domain.QueryRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No queries recorded. Set JOURNAL_TYPE to sqlite or postgres to keep a history.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Started At", "Series", "Outcome", "Points", "Duration"})
	for _, r := range records {
		table.Append([]string{
			r.StartedAt.UTC().Format(time.RFC3339),
			string(r.Kind),
			string(r.Outcome),
			strconv.Itoa(r.PointCount),
			r.Duration.Round(time.Millisecond).String(),
		})
	}
	table.Render()
}

func renderQuota(w io.Writer, quota collector.Quota) {
	if !quota.Known {
		fmt.Fprintln(w, "GitHub quota unknown.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Limit", "Remaining", "Resets At"})
	table.Append([]string{
		strconv.Itoa(quota.Limit),
		strconv.Itoa(quota.Remaining),
		quota.Reset.Local().Format(time.RFC1123),
	})
	table.Render()
}
