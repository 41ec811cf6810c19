package ingest

import (
	"fmt"
	"strings"
)

// ReadDelimited parses delimited text into one map per record, keyed by the
// header row. The delimiter and quote character are caller-specified;
// encoding/csv only supports double-quoted fields, so quoting is handled
// here. A quote character is escaped inside a quoted field by doubling it.
func ReadDelimited(data []byte, delimiter, quote rune) ([]map[string]interface{}, error) {
	records, err := splitRecords(string(data), delimiter, quote)
	if err != nil {
		return nil, &DataFormatError{Message: fmt.Sprintf("failed to parse CSV: %v", err)}
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]map[string]interface{}, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, &DataFormatError{
				Message: fmt.Sprintf("failed to parse CSV: record %d has %d fields, header has %d", i+1, len(record), len(header)),
			}
		}
		row := make(map[string]interface{}, len(header))
		for j, col := range header {
			row[col] = record[j]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// splitRecords is a small state machine over the input runes. Quoted fields
// may contain delimiters, newlines and doubled quote characters.
func splitRecords(data string, delimiter, quote rune) ([][]string, error) {
	var (
		records [][]string
		record  []string
		field   strings.Builder
		quoted  bool
	)

	data = strings.TrimSuffix(data, "\n")
	data = strings.TrimSuffix(data, "\r")
	runes := []rune(data)
	endField := func() {
		record = append(record, field.String())
		field.Reset()
	}
	endRecord := func() {
		endField()
		records = append(records, record)
		record = nil
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quoted:
			if r == quote {
				if i+1 < len(runes) && runes[i+1] == quote {
					field.WriteRune(quote)
					i++
					continue
				}
				quoted = false
				continue
			}
			field.WriteRune(r)
		case r == quote && field.Len() == 0:
			quoted = true
		case r == delimiter:
			endField()
		case r == '\n':
			endRecord()
		case r == '\r' && i+1 < len(runes) && runes[i+1] == '\n':
			endRecord()
			i++
		default:
			field.WriteRune(r)
		}
	}

	if quoted {
		return nil, fmt.Errorf("unterminated quoted field")
	}
	if field.Len() > 0 || len(record) > 0 {
		endRecord()
	}

	return records, nil
}
