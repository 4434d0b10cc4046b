package pipeline

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderStatus formats a ToolReport as a two-column table.
func RenderStatus(rep ToolReport) string {
	rows := [][]string{
		{"binary", rep.Binary.Command},
		{"source", string(rep.Binary.Source)},
		{"found", strconv.FormatBool(rep.Binary.Available)},
		{"runnable", strconv.FormatBool(rep.Runnable)},
		{"install dir", rep.InstallDir},
	}
	if rep.DownloadURL != "" {
		rows = append(rows, []string{"download url", rep.DownloadURL})
	}
	if rep.Binary.Detail != "" {
		rows = append(rows, []string{"detail", rep.Binary.Detail})
	}
	return renderTable([]string{"ffmpeg", "value"}, rows)
}

func renderTable(headers []string, rows [][]string) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range headers {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
