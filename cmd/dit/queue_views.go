package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dit/internal/api"
	"dit/internal/queue"
)

const maxTextColumn = 32

func buildQueueStatusRows(stats map[string]int) [][]string {
	if len(stats) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(stats))
	for _, status := range queue.AllStatuses() {
		count, ok := stats[string(status)]
		if !ok || count == 0 {
			continue
		}
		rows = append(rows, []string{formatStatusLabel(string(status)), strconv.Itoa(count)})
	}
	return rows
}

func buildQueueListRows(jobs []api.Job) [][]string {
	if len(jobs) == 0 {
		return nil
	}
	sorted := make([]api.Job, len(jobs))
	copy(sorted, jobs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID > sorted[j].ID
	})

	rows := make([][]string, 0, len(sorted))
	for _, job := range sorted {
		rows = append(rows, []string{
			strconv.FormatInt(job.ID, 10),
			truncateText(job.Text, maxTextColumn),
			strconv.Itoa(job.Speed),
			formatStatusLabel(job.Status),
			formatDisplayTime(job.CreatedAt),
			jobDetail(job),
		})
	}
	return rows
}

func jobDetail(job api.Job) string {
	if msg := strings.TrimSpace(job.ErrorMessage); msg != "" {
		return truncateText(msg, maxTextColumn)
	}
	if job.DurationMs > 0 {
		return (time.Duration(job.DurationMs) * time.Millisecond).String()
	}
	return "-"
}

func truncateText(value string, limit int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	lower := strings.ToLower(status)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

func formatDisplayTime(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.Local().Format("2006-01-02 15:04:05")
	}
	return value
}

func printDatabaseHealth(cmd *cobra.Command, health queue.DatabaseHealth) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Database path: %s\n", health.DBPath)
	fmt.Fprintf(out, "Database exists: %s\n", yesNo(health.DatabaseExists))
	fmt.Fprintf(out, "Readable: %s\n", yesNo(health.DatabaseReadable))
	fmt.Fprintf(out, "Schema version: %d\n", health.SchemaVersion)
	fmt.Fprintf(out, "jobs table present: %s\n", yesNo(health.TableExists))
	if len(health.MissingColumns) > 0 {
		fmt.Fprintf(out, "Missing columns: %s\n", strings.Join(health.MissingColumns, ", "))
	} else {
		fmt.Fprintln(out, "Missing columns: none")
	}
	fmt.Fprintf(out, "Integrity check: %s\n", yesNo(health.IntegrityCheck))
	fmt.Fprintf(out, "Total jobs: %d\n", health.TotalJobs)
	if health.Error != "" {
		fmt.Fprintf(out, "Error: %s\n", health.Error)
	}
}
