package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"

	"slotScope/internal/model"
)

// LogArchive appends raw log records to a JSONL file so that a run can be
// replayed offline with the project command.
type LogArchive struct {
	path string
	mu   sync.Mutex
}

func NewLogArchive(path string) *LogArchive {
	return &LogArchive{path: path}
}

// PutLogBatch appends a batch of log records as JSON lines.
func (a *LogArchive) PutLogBatch(logs []model.LogRecord) error {
	if len(logs) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	w, err := OpenJSONL(a.path, true)
	if err != nil {
		return err
	}
	for _, record := range logs {
		if err := w.Write(record); err != nil {
			w.Close()
			return errors.Wrap(err, "write log record")
		}
	}
	return w.Close()
}

// ReadLogs streams the records of a JSONL archive. A line that does not parse
// is passed to fn with a non-nil error; returning an error from fn stops the scan.
func ReadLogs(path string, fn func(line int, record model.LogRecord, parseErr error) error) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open input")
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var record model.LogRecord
		parseErr := json.Unmarshal(raw, &record)
		if err := fn(line, record, parseErr); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "scan input")
	}
	return nil
}

// JSONLWriter writes one JSON value per line.
type JSONLWriter struct {
	file   *os.File
	writer *bufio.Writer
}

// OpenJSONL creates path and its directory. appendMode keeps existing content.
func OpenJSONL(path string, appendMode bool) (*JSONLWriter, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create dir")
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "open file")
	}
	return &JSONLWriter{file: file, writer: bufio.NewWriter(file)}, nil
}

func (w *JSONLWriter) Write(value interface{}) error {
	line, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "marshal")
	}
	if _, err := w.writer.Write(line); err != nil {
		return errors.Wrap(err, "write")
	}
	if err := w.writer.WriteByte('\n'); err != nil {
		return errors.Wrap(err, "write newline")
	}
	return nil
}

func (w *JSONLWriter) Close() error {
	if w == nil {
		return nil
	}
	if err := w.writer.Flush(); err != nil {
		w.file.Close()
		return errors.Wrap(err, "flush output")
	}
	return w.file.Close()
}
