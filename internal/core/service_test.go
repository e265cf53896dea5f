package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/flightline/dronelog/internal/config"
)

func newTestService() *Service {
	return NewService(&config.Config{
		Upload: config.UploadConfig{
			MaxFileSize: 1 << 20,
			PreviewRows: 5,
		},
		Plot: config.PlotConfig{
			Width:     480,
			Height:    240,
			MaxPoints: 500,
		},
	})
}

func flightCSV(rows int) []byte {
	var b strings.Builder
	b.WriteString("time,altitude,speed\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "%d,%.1f,%.1f\n", i, 10.0+float64(i), 1.0+0.1*float64(i))
	}
	return []byte(b.String())
}

func TestService_Load(t *testing.T) {
	svc := newTestService()

	info, err := svc.Load(context.Background(), "flight.csv", flightCSV(10))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if info.Rows != 10 {
		t.Errorf("Rows = %d, want 10", info.Rows)
	}
	want := []string{"time", "altitude", "speed"}
	if !equalStrings(info.Columns, want) {
		t.Errorf("Columns = %v, want %v", info.Columns, want)
	}
	if info.Filename != "flight.csv" {
		t.Errorf("Filename = %q, want %q", info.Filename, "flight.csv")
	}
	if !strings.Contains(info.Preview, "altitude") {
		t.Errorf("Preview missing header:\n%s", info.Preview)
	}
	if info.DatasetID == "" {
		t.Error("DatasetID must be set")
	}
}

func TestService_Load_EmptyFile(t *testing.T) {
	svc := newTestService()

	_, err := svc.Load(context.Background(), "flight.csv", nil)
	if !errors.Is(err, ErrEmptyFile) {
		t.Errorf("Load() error = %v, want ErrEmptyFile", err)
	}
}

func TestService_Load_UnsupportedExtension(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		filename string
		wantErr  error
	}{
		{filename: "flight.csv", wantErr: nil},
		{filename: "flight.txt", wantErr: nil},
		{filename: "depth.log", wantErr: nil},
		{filename: "FLIGHT.CSV", wantErr: nil},
		{filename: "flight.xlsx", wantErr: ErrUnsupportedType},
		{filename: "flight.json", wantErr: ErrUnsupportedType},
		{filename: "flight", wantErr: ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			_, err := svc.Load(context.Background(), tt.filename, flightCSV(3))
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Load() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_Load_FileTooLarge(t *testing.T) {
	svc := NewService(&config.Config{
		Upload: config.UploadConfig{MaxFileSize: 64, PreviewRows: 5},
	})

	_, err := svc.Load(context.Background(), "flight.csv", flightCSV(100))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("Load() error = %v, want ErrFileTooLarge", err)
	}
}

func TestService_SummarizeBeforeUpload(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Summarize(); !errors.Is(err, ErrNoDataset) {
		t.Errorf("Summarize() error = %v, want ErrNoDataset", err)
	}
	if _, err := svc.Preview(5); !errors.Is(err, ErrNoDataset) {
		t.Errorf("Preview() error = %v, want ErrNoDataset", err)
	}
	if _, err := svc.Plot("altitude"); !errors.Is(err, ErrNoDataset) {
		t.Errorf("Plot() error = %v, want ErrNoDataset", err)
	}
}

func TestService_Summarize(t *testing.T) {
	svc := newTestService()

	data := []byte("v\n1\n2\n3\n4\n5\n")
	if _, err := svc.Load(context.Background(), "values.csv", data); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	summary, err := svc.Summarize()
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary.Shape != [2]int{5, 1} {
		t.Errorf("Shape = %v, want [5 1]", summary.Shape)
	}
	if len(summary.Stats) != 1 {
		t.Fatalf("Stats has %d entries, want 1", len(summary.Stats))
	}
	s := summary.Stats[0]
	if !almostEqual(s.Mean, 3.0) || !almostEqual(s.Min, 1) || !almostEqual(s.Max, 5) {
		t.Errorf("stats = mean %v min %v max %v, want 3.0 1 5", s.Mean, s.Min, s.Max)
	}
	if summary.Description == "" {
		t.Error("Description must be rendered")
	}
}

func TestService_ReplaceDataset(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Load(ctx, "a.csv", flightCSV(10)); err != nil {
		t.Fatalf("Load(a) error = %v", err)
	}
	firstID := svc.DatasetID()

	dataB := []byte("temperature,humidity\n20,55\n21,54\n22,52\n")
	if _, err := svc.Load(ctx, "b.csv", dataB); err != nil {
		t.Fatalf("Load(b) error = %v", err)
	}

	if svc.DatasetID() == firstID {
		t.Error("DatasetID unchanged after replacement")
	}

	summary, err := svc.Summarize()
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary.Shape != [2]int{3, 2} {
		t.Errorf("Shape = %v, want [3 2] (dataset B only)", summary.Shape)
	}
	for _, col := range summary.Columns {
		if col == "altitude" || col == "speed" {
			t.Errorf("column %q from dataset A leaked into summary", col)
		}
	}

	preview, err := svc.Preview(10)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if len(preview.Rows) != 3 {
		t.Errorf("Preview rows = %d, want 3 (dataset B only)", len(preview.Rows))
	}
}

func TestService_FailedLoadKeepsDataset(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Load(ctx, "a.csv", flightCSV(10)); err != nil {
		t.Fatalf("Load(a) error = %v", err)
	}
	id := svc.DatasetID()

	if _, err := svc.Load(ctx, "broken.csv", nil); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("Load(broken) error = %v, want ErrEmptyFile", err)
	}

	if svc.DatasetID() != id {
		t.Error("failed load must leave the current dataset unchanged")
	}
	summary, err := svc.Summarize()
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary.Shape[0] != 10 {
		t.Errorf("Shape[0] = %d, want 10", summary.Shape[0])
	}
}

func TestService_Plot(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Load(context.Background(), "flight.csv", flightCSV(50)); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, field := range []string{"altitude", "speed"} {
		t.Run(field, func(t *testing.T) {
			png, err := svc.Plot(field)
			if err != nil {
				t.Fatalf("Plot(%q) error = %v", field, err)
			}
			if !bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")) {
				t.Errorf("Plot(%q) did not return a PNG", field)
			}
		})
	}
}

func TestService_Plot_ColumnNotFound(t *testing.T) {
	svc := newTestService()

	data := []byte("time,temperature\n0,20\n1,21\n")
	if _, err := svc.Load(context.Background(), "temps.csv", data); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	_, err := svc.Plot("altitude")
	var colErr *ColumnNotFoundError
	if !errors.As(err, &colErr) {
		t.Fatalf("Plot() error = %v, want *ColumnNotFoundError", err)
	}
	if colErr.Field != "altitude" {
		t.Errorf("Field = %q, want %q", colErr.Field, "altitude")
	}
}

func TestService_Plot_TooFewPoints(t *testing.T) {
	svc := newTestService()

	data := []byte("time,altitude\n0,10\n")
	if _, err := svc.Load(context.Background(), "short.csv", data); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, err := svc.Plot("altitude"); !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("Plot() error = %v, want ErrTooFewPoints", err)
	}
}

func TestService_Plot_LogTimestampAxis(t *testing.T) {
	svc := newTestService()

	var b strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "2024-03-01 10:00:%02d,000 - {\"sonar_altitude_m\": %.1f}\n", i, 3.0+0.1*float64(i))
	}
	if _, err := svc.Load(context.Background(), "sonar.log", []byte(b.String())); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	png, err := svc.Plot("altitude")
	if err != nil {
		t.Fatalf("Plot() error = %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("Plot() did not return a PNG")
	}
}

func TestService_PlotFields(t *testing.T) {
	svc := newTestService()
	want := []string{"altitude", "speed"}
	if got := svc.PlotFields(); !equalStrings(got, want) {
		t.Errorf("PlotFields() = %v, want %v", got, want)
	}
}
