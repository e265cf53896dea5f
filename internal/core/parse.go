package core

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// timestampColumn is the synthesized first column of JSON-line logs.
const timestampColumn = "timestamp"

// logTimestampLayout is how log timestamps are re-rendered into cells.
const logTimestampLayout = "2006-01-02 15:04:05.000"

// logLinePattern matches the prefix of a drone log line:
// "2006-01-02 15:04:05,000 - {...}" (fractional seconds optional).
var logLinePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}([,.]\d+)? - `)

// Parse turns uploaded bytes into a Dataset. The format is chosen from the
// content itself, not the extension: lines shaped like drone log entries are
// parsed as timestamped JSON lines, everything else as delimited text.
func Parse(data []byte, filename string) (*Dataset, error) {
	data = sanitizeUTF8(data)
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")) // UTF-8 BOM

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	if looksLikeLogLines(data) {
		return parseLogLines(data, filename)
	}
	return parseDelimited(data, filename)
}

// looksLikeLogLines reports whether the first non-empty line matches the
// timestamped JSON-line format.
func looksLikeLogLines(data []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		return logLinePattern.MatchString(line)
	}
	return false
}

// parseDelimited parses comma/semicolon/tab separated text. The first row
// is the header; at least one data row must follow.
func parseDelimited(data []byte, filename string) (*Dataset, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = inferDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("cannot tokenize %q as delimited text", filename), Err: err}
	}

	// Drop fully empty rows so trailing newlines don't count as data.
	rows := records[:0]
	for _, rec := range records {
		if !isEmptyRow(rec) {
			rows = append(rows, rec)
		}
	}

	if len(rows) == 0 || len(rows) == 1 {
		// Header only (or nothing) means zero data rows.
		return nil, ErrEmptyFile
	}

	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = cleanCell(cell)
	}

	dataRows := make([][]string, len(rows)-1)
	for i, rec := range rows[1:] {
		cells := make([]string, len(rec))
		for j, cell := range rec {
			cells[j] = cleanCell(cell)
		}
		dataRows[i] = cells
	}

	return newDataset(filename, header, dataRows), nil
}

// inferDelimiter picks the delimiter with the highest count in the first
// non-empty line. Comma wins ties and is the fallback.
func inferDelimiter(data []byte) rune {
	line := firstLine(data)
	best, bestCount := ',', strings.Count(line, ",")
	for _, cand := range []rune{';', '\t'} {
		if n := strings.Count(line, string(cand)); n > bestCount {
			best, bestCount = cand, n
		}
	}
	return best
}

func firstLine(data []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line
		}
	}
	return ""
}

// parseLogLines parses the drone log format: one "<timestamp> - <json>"
// entry per line. Lines that fail to parse are skipped; the upload fails
// only when no line parses at all. Column order is first-seen, with the
// timestamp always first. JSON arrays flatten to name_0, name_1, ...
func parseLogLines(data []byte, filename string) (*Dataset, error) {
	type entry struct {
		ts     time.Time
		fields map[string]string
	}

	var (
		entries  []entry
		colOrder []string
		colSeen  = map[string]bool{timestampColumn: true}
	)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tsPart, jsonPart, ok := strings.Cut(line, " - ")
		if !ok {
			continue
		}
		ts, err := parseLogTimestamp(tsPart)
		if err != nil {
			continue
		}

		var payload map[string]any
		if err := json.Unmarshal([]byte(jsonPart), &payload); err != nil {
			continue
		}

		fields := make(map[string]string, len(payload))
		for _, key := range sortedKeys(payload) {
			switch v := payload[key].(type) {
			case []any:
				for i, item := range v {
					name := fmt.Sprintf("%s_%d", key, i)
					fields[name] = scalarToCell(item)
					if !colSeen[name] {
						colSeen[name] = true
						colOrder = append(colOrder, name)
					}
				}
			default:
				fields[key] = scalarToCell(v)
				if !colSeen[key] {
					colSeen[key] = true
					colOrder = append(colOrder, key)
				}
			}
		}
		entries = append(entries, entry{ts: ts, fields: fields})
	}

	if len(entries) == 0 {
		return nil, &ParseError{Reason: fmt.Sprintf("no parseable log entries in %q", filename)}
	}

	// Entries arrive in file order but drone logs are not guaranteed
	// monotonic; sort by timestamp like the plots expect.
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].ts.Before(entries[j].ts) })

	columns := append([]string{timestampColumn}, colOrder...)
	rows := make([][]string, len(entries))
	for i, e := range entries {
		cells := make([]string, len(columns))
		cells[0] = e.ts.Format(logTimestampLayout)
		for j, name := range colOrder {
			cells[j+1] = e.fields[name]
		}
		rows[i] = cells
	}

	return newDataset(filename, columns, rows), nil
}

// parseLogTimestamp accepts "2006-01-02 15:04:05,000" with the fractional
// part optional and either comma or dot separated.
func parseLogTimestamp(s string) (time.Time, error) {
	s = strings.Replace(s, ",", ".", 1)
	if t, err := time.Parse("2006-01-02 15:04:05.000", s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}

// scalarToCell renders a decoded JSON scalar as a table cell. Booleans
// become 0/1 so flag fields stay plottable.
func scalarToCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// cleanCell trims whitespace and stray quotes from a CSV cell.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	return strings.TrimSpace(s)
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// sanitizeUTF8 replaces invalid byte sequences with U+FFFD so the CSV and
// JSON decoders never see broken encodings.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
