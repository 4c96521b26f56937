package helpers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
)

// Tabular is implemented by data that can be rendered as a table.
type Tabular interface {
	Headers() []string
	Rows() [][]string
}

// OutputWriter handles different output formats
type OutputWriter struct {
	writer io.Writer
	format OutputFormat
	color  bool
}

// NewOutputWriter creates a new output writer
func NewOutputWriter(writer io.Writer, format OutputFormat) *OutputWriter {
	return &OutputWriter{
		writer: writer,
		format: format,
		color:  ShouldUseColor(writer),
	}
}

// WriteData writes data in the specified format. Table output requires data
// to implement Tabular.
func (ow *OutputWriter) WriteData(data any) error {
	switch ow.format {
	case OutputFormatJSON:
		return ow.writeJSON(data)
	case OutputFormatYAML:
		return ow.writeYAML(data)
	case OutputFormatTable:
		tab, ok := data.(Tabular)
		if !ok {
			return fmt.Errorf("table output is not supported for %T", data)
		}
		return ow.writeTable(tab)
	default:
		return fmt.Errorf("unsupported output format: %s", ow.format)
	}
}

// writeJSON writes data as JSON
func (ow *OutputWriter) writeJSON(data any) error {
	encoder := json.NewEncoder(ow.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// writeYAML writes data as YAML
func (ow *OutputWriter) writeYAML(data any) error {
	encoder := yaml.NewEncoder(ow.writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return encoder.Close()
}

func (ow *OutputWriter) writeTable(data Tabular) error {
	headers := data.Headers()
	columns := len(headers)
	if columns == 0 {
		return nil
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if !ow.color {
		tw.SetStyle(table.StyleLight)
	}
	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	for _, row := range data.Rows() {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}
	if ow.color {
		tw.Style().Color.Header = text.Colors{text.Bold, text.FgCyan}
	}
	_, err := fmt.Fprintln(ow.writer, tw.Render())
	return err
}
