package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// column は表の1列です。Transform はセルの表示だけを変えます。
type column struct {
	Header    string
	Align     text.Align
	Transform text.Transformer
}

// renderTable は角丸の罫線で表を描画します。行の不足セルは空欄です。
func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, 0, len(columns))
	configs := make([]table.ColumnConfig, 0, len(columns))
	for i, col := range columns {
		header = append(header, col.Header)
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       col.Align,
			AlignHeader: text.AlignLeft,
			Transformer: col.Transform,
		})
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, cells := range rows {
		row := make(table.Row, len(columns))
		for i := range row {
			row[i] = ""
			if i < len(cells) {
				row[i] = cells[i]
			}
		}
		tw.AppendRow(row)
	}

	return tw.Render()
}

// Todo の状態ラベル
const (
	labelDone    = "DONE"
	labelPending = "PENDING"
)

func statusLabel(done bool) string {
	if done {
		return labelDone
	}
	return labelPending
}

// statusColors は端末出力のとき状態ラベルに色を付けます。
func statusColors(enabled bool) text.Transformer {
	return func(val any) string {
		s := fmt.Sprint(val)
		if !enabled {
			return s
		}
		switch s {
		case labelDone:
			return text.FgGreen.Sprint(s)
		case labelPending:
			return text.FgYellow.Sprint(s)
		default:
			return s
		}
	}
}

// colorEnabled は w が端末かどうかを返します。
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
