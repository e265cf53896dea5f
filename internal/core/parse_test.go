package core

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestParse_CSV(t *testing.T) {
	data := []byte("time,altitude,speed\n" +
		"0,10.5,1.2\n" +
		"1,11.0,1.4\n" +
		"2,12.2,1.1\n")

	ds, err := Parse(data, "flight.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := ds.RowCount(); got != 3 {
		t.Errorf("RowCount() = %d, want 3", got)
	}
	want := []string{"time", "altitude", "speed"}
	if got := ds.Columns(); !equalStrings(got, want) {
		t.Errorf("Columns() = %v, want %v", got, want)
	}
}

func TestParse_DelimiterInference(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		columns []string
	}{
		{
			name:    "comma",
			data:    "a,b,c\n1,2,3\n",
			columns: []string{"a", "b", "c"},
		},
		{
			name:    "semicolon",
			data:    "a;b;c\n1;2;3\n",
			columns: []string{"a", "b", "c"},
		},
		{
			name:    "tab",
			data:    "a\tb\tc\n1\t2\t3\n",
			columns: []string{"a", "b", "c"},
		},
		{
			name:    "comma wins tie",
			data:    "a,b\n1,2\n",
			columns: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Parse([]byte(tt.data), "data.txt")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := ds.Columns(); !equalStrings(got, tt.columns) {
				t.Errorf("Columns() = %v, want %v", got, tt.columns)
			}
		})
	}
}

func TestParse_EmptyInputs(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty file", data: ""},
		{name: "whitespace only", data: "  \n\n  \n"},
		{name: "header only", data: "time,altitude,speed\n"},
		{name: "header and blank rows", data: "time,altitude\n\n , \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "flight.csv")
			if !errors.Is(err, ErrEmptyFile) {
				t.Errorf("Parse() error = %v, want ErrEmptyFile", err)
			}
		})
	}
}

func TestParse_MalformedCSV(t *testing.T) {
	// Unterminated quote in a non-lazy position still fails tokenizing.
	data := []byte("a,b\n\"x,1\ny\",2\n\"broken")

	_, err := Parse(data, "bad.csv")
	if err == nil {
		// LazyQuotes accepts a lot; when it does parse, the result must
		// still be a coherent table.
		return
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("Parse() error = %T, want *ParseError", err)
	}
}

func TestParse_LogLines(t *testing.T) {
	data := []byte(strings.Join([]string{
		`2024-03-01 10:00:00,000 - {"depth": 1.5, "mode": "auto"}`,
		`2024-03-01 10:00:01,000 - {"depth": 1.7, "mode": "auto"}`,
		`2024-03-01 10:00:02,000 - {"depth": 2.0, "mode": "manual"}`,
	}, "\n"))

	ds, err := Parse(data, "depth.log")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := ds.RowCount(); got != 3 {
		t.Errorf("RowCount() = %d, want 3", got)
	}
	want := []string{"timestamp", "depth", "mode"}
	if got := ds.Columns(); !equalStrings(got, want) {
		t.Errorf("Columns() = %v, want %v", got, want)
	}

	depth, ok := ds.NumericColumn("depth")
	if !ok {
		t.Fatal("depth should be a numeric column")
	}
	if depth[0] != 1.5 || depth[2] != 2.0 {
		t.Errorf("depth = %v, want [1.5 1.7 2]", depth)
	}
}

func TestParse_LogLines_Arrays(t *testing.T) {
	data := []byte(`2024-03-01 10:00:00,500 - {"motor_inputs": [0.1, 0.2, 0.3]}` + "\n" +
		`2024-03-01 10:00:01,500 - {"motor_inputs": [0.4, 0.5, 0.6]}`)

	ds, err := Parse(data, "motor.log")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []string{"timestamp", "motor_inputs_0", "motor_inputs_1", "motor_inputs_2"}
	if got := ds.Columns(); !equalStrings(got, want) {
		t.Errorf("Columns() = %v, want %v", got, want)
	}
}

func TestParse_LogLines_SkipsBadLines(t *testing.T) {
	data := []byte(strings.Join([]string{
		`2024-03-01 10:00:00,000 - {"depth": 1.5}`,
		`not a log line at all`,
		`2024-03-01 10:00:01,000 - {broken json`,
		`2024-03-01 10:00:02,000 - {"depth": 2.5}`,
	}, "\n"))

	ds, err := Parse(data, "depth.log")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := ds.RowCount(); got != 2 {
		t.Errorf("RowCount() = %d, want 2 (bad lines skipped)", got)
	}
}

func TestParse_LogLines_AllBad(t *testing.T) {
	// First line selects the log format, every entry then fails to parse.
	data := []byte(`2024-03-01 10:00:00,000 - {broken` + "\n" +
		`2024-03-01 10:00:01,000 - also broken`)

	_, err := Parse(data, "depth.log")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("Parse() error = %v, want *ParseError", err)
	}
}

func TestParse_LogLines_SortedByTimestamp(t *testing.T) {
	data := []byte(strings.Join([]string{
		`2024-03-01 10:00:05,000 - {"depth": 5}`,
		`2024-03-01 10:00:01,000 - {"depth": 1}`,
		`2024-03-01 10:00:03,000 - {"depth": 3}`,
	}, "\n"))

	ds, err := Parse(data, "depth.log")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	depth, _ := ds.NumericColumn("depth")
	if depth[0] != 1 || depth[1] != 3 || depth[2] != 5 {
		t.Errorf("depth = %v, want sorted [1 3 5]", depth)
	}
}

func TestParse_BOMStripped(t *testing.T) {
	data := []byte("\xef\xbb\xbftime,alt\n1,2\n")

	ds, err := Parse(data, "flight.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := ds.Columns()[0]; got != "time" {
		t.Errorf("first column = %q, want %q (BOM must be stripped)", got, "time")
	}
}

func TestSanitizeUTF8(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  []byte
	}{
		{
			name:  "valid UTF-8 unchanged",
			input: []byte("hello world"),
			want:  []byte("hello world"),
		},
		{
			name:  "empty input",
			input: []byte{},
			want:  []byte{},
		},
		{
			name:  "invalid byte replaced with replacement char",
			input: []byte{0x80},
			want:  []byte("�"),
		},
		{
			name:  "mixed valid and invalid",
			input: []byte("alt\x80speed"),
			want:  []byte("alt�speed"),
		},
		{
			name:  "truncated multibyte sequence",
			input: []byte{0xc3},
			want:  []byte("�"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeUTF8(tt.input)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("sanitizeUTF8(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsEmptyRow(t *testing.T) {
	tests := []struct {
		name string
		row  []string
		want bool
	}{
		{name: "all empty", row: []string{"", "", ""}, want: true},
		{name: "whitespace only", row: []string{"  ", "\t"}, want: true},
		{name: "one value", row: []string{"", "x", ""}, want: false},
		{name: "nil row", row: nil, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isEmptyRow(tt.row); got != tt.want {
				t.Errorf("isEmptyRow(%v) = %v, want %v", tt.row, got, tt.want)
			}
		})
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
