package dosages

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
)

// ExportTimeLayout es el formato largo de Date/Time en el CSV.
const ExportTimeLayout = "2006-01-02 15:04:05"

var exportHeader = []string{"Date/Time", "Status", "Duration", "Device ID"}

// SerializeCSV renderiza los eventos en el orden recibido (no reordena).
// Las filas se unen con "\n" sin salto final: sin eventos queda solo el header.
func SerializeCSV(events []DosageEvent, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	_ = cw.Write(exportHeader)
	for _, e := range events {
		_ = cw.Write(exportRow(e, loc))
	}
	cw.Flush()

	return strings.TrimSuffix(buf.String(), "\n")
}

// WriteCSV escribe exactamente los bytes de SerializeCSV.
func WriteCSV(w io.Writer, events []DosageEvent, loc *time.Location) error {
	_, err := io.WriteString(w, SerializeCSV(events, loc))
	return err
}

func exportRow(e DosageEvent, loc *time.Location) []string {
	duration := "N/A"
	if d, ok := e.Duration(); ok {
		duration = fmt.Sprintf("%ds", int64(math.Round(d.Seconds())))
	}
	return []string{
		e.StartTime.In(loc).Format(ExportTimeLayout),
		e.Status(),
		duration,
		e.DeviceID,
	}
}

// ExportFilename => dosage-history-2024-01-01-2024-01-31.csv
func ExportFilename(rng DateRange) string {
	loc := rng.Location()
	return fmt.Sprintf("dosage-history-%s-%s.csv",
		rng.From.In(loc).Format(dayLayout),
		rng.To.In(loc).Format(dayLayout),
	)
}
