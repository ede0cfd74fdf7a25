package trace

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

const (
	readBufferSize   = 64 * 1024 * 1024
	progressInterval = 500000
)

// ErrNoTraceEvents is returned when the document has no traceEvents array.
var ErrNoTraceEvents = errors.New("traceEvents not found")

// LoadOptions configures Load.
type LoadOptions struct {
	Logger *zap.Logger
}

func (o LoadOptions) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Load reads every element of the traceEvents array of a PyTorch Profiler
// JSON file into memory. Files ending in .gz are decompressed on the fly.
func Load(filename string, opts LoadOptions) ([]RawEvent, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace: %w", err)
	}
	defer file.Close()

	var reader io.Reader
	if strings.HasSuffix(filename, ".gz") {
		gzReader, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader for %s: %w", filename, err)
		}
		defer gzReader.Close()
		reader = bufio.NewReaderSize(gzReader, readBufferSize)
	} else {
		reader = bufio.NewReaderSize(file, readBufferSize)
	}

	events, err := Decode(reader, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return events, nil
}

// Decode reads a trace document from r. Array elements that do not have the
// event shape are skipped; malformed JSON aborts the whole read.
func Decode(r io.Reader, opts LoadOptions) ([]RawEvent, error) {
	log := opts.logger()
	decoder := json.NewDecoder(r)

	token, err := decoder.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read initial token: %w", err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", token)
	}

	var (
		events []RawEvent
		found  bool
	)
	for decoder.More() {
		keyToken, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read key token: %w", err)
		}
		key, _ := keyToken.(string)

		if key == "traceEvents" {
			events, err = decodeEventsArray(decoder, log)
			if err != nil {
				return nil, fmt.Errorf("failed to parse traceEvents: %w", err)
			}
			found = true
			continue
		}

		var skip json.RawMessage
		if err := decoder.Decode(&skip); err != nil {
			return nil, fmt.Errorf("failed to skip field %s: %w", key, err)
		}
	}
	if !found {
		return nil, ErrNoTraceEvents
	}
	return events, nil
}

func decodeEventsArray(decoder *json.Decoder, log *zap.Logger) ([]RawEvent, error) {
	token, err := decoder.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read array start: %w", err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("expected array start, got %v", token)
	}

	var (
		events  []RawEvent
		count   int
		skipped int
	)
	for decoder.More() {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("event %d: %w", count, err)
		}
		count++

		var event RawEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			skipped++
			continue
		}
		events = append(events, event)

		if count%progressInterval == 0 {
			log.Debug("reading trace events", zap.Int("processed", count))
		}
	}

	if _, err := decoder.Token(); err != nil {
		return nil, fmt.Errorf("failed to read array end: %w", err)
	}

	log.Info("trace events loaded", zap.Int("events", len(events)), zap.Int("skipped", skipped))
	return events, nil
}
