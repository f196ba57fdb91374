package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ParseCSV parses CSV content and returns it as clean comma-separated text.
// Malformed rows are skipped rather than failing the whole file.
func ParseCSV(content []byte) ([]byte, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var output strings.Builder
	lineNum := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		isEmpty := true
		for _, field := range record {
			if strings.TrimSpace(field) != "" {
				isEmpty = false
				break
			}
		}
		if isEmpty {
			continue
		}

		if lineNum > 0 {
			output.WriteByte('\n')
		}

		for i, field := range record {
			if i > 0 {
				output.WriteByte(',')
			}
			if strings.ContainsAny(field, ",\n\"") {
				output.WriteString(quoteField(field))
			} else {
				output.WriteString(field)
			}
		}
		lineNum++
	}

	if output.Len() == 0 {
		return nil, fmt.Errorf("CSV file is empty or contains no valid data")
	}

	result := output.String()
	if !strings.HasSuffix(result, "\n") {
		result += "\n"
	}

	return []byte(result), nil
}

func quoteField(field string) string {
	escaped := strings.ReplaceAll(field, "\"", "\"\"")
	return "\"" + escaped + "\""
}
