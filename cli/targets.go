package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/seeyarh/radar/scanner"
)

// streamTargetsCSV reads an unheadered CSV of ip,domain,port rows from r
// and streams them on the returned channel as they're parsed. domain may
// be empty. A malformed row is logged and skipped rather than aborting
// the whole run.
func streamTargetsCSV(r io.Reader, logger *slog.Logger) <-chan scanner.Target {
	out := make(chan scanner.Target)
	go func() {
		defer close(out)

		csvReader := csv.NewReader(r)
		csvReader.FieldsPerRecord = -1

		lineNo := 0
		for {
			record, err := csvReader.Read()
			lineNo++
			if err == io.EOF {
				return
			}
			if err != nil {
				logger.Warn("skipping malformed target row", "line", lineNo, "error", err)
				continue
			}

			target, err := parseTargetRow(record)
			if err != nil {
				logger.Warn("skipping malformed target row", "line", lineNo, "error", err)
				continue
			}
			out <- target
		}
	}()

	return out
}

func parseTargetRow(record []string) (scanner.Target, error) {
	if len(record) < 2 {
		return scanner.Target{}, fmt.Errorf("expected at least ip,port columns, got %d", len(record))
	}

	ip := record[0]
	var domain, portField string
	if len(record) >= 3 {
		domain = record[1]
		portField = record[2]
	} else {
		portField = record[1]
	}

	port, err := strconv.ParseUint(portField, 10, 16)
	if err != nil {
		return scanner.Target{}, fmt.Errorf("invalid port %q: %w", portField, err)
	}

	return scanner.Target{IP: ip, Domain: domain, Port: uint16(port)}, nil
}
