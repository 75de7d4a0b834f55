package audit

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Sink is the destination for serialized audit events.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Durability: Write returns only after the event is handed to the
//   underlying store.
type Sink interface {
	// Write appends one audit event.
	Write(ctx context.Context, event Event) error

	// Close releases any resources held by the sink.
	Close() error

	// Name returns the sink's identifier.
	Name() string
}

const timestampLayout = "2006-01-02 15:04:05"

// formatLine renders an event as its single-line wire form:
//
//	timestamp | LEVEL | event_type | user | ip | resource | action | details
func formatLine(event Event) string {
	line := strings.Join([]string{
		event.Timestamp.Format(timestampLayout),
		strings.ToUpper(string(event.Severity)),
		string(event.Type),
		event.User,
		event.IP,
		event.Resource,
		event.Action,
		flattenDetails(event.Details),
	}, " | ")

	// One event, one line.
	line = strings.ReplaceAll(line, "\n", " ")
	line = strings.ReplaceAll(line, "\r", " ")
	return line + "\n"
}

// flattenDetails renders the payload as sorted key=value pairs.
func flattenDetails(details map[string]any) string {
	if len(details) == 0 {
		return ""
	}

	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, details[k]))
	}
	return strings.Join(pairs, " ")
}

// WriterSink appends audit lines to an io.Writer. Used by FileSink and by
// tests that capture output in a buffer.
type WriterSink struct {
	name string

	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a sink over w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{name: "writer", w: w}
}

// Write appends the event's line form.
func (s *WriterSink) Write(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := io.WriteString(s.w, formatLine(event)); err != nil {
		return fmt.Errorf("audit: sink write: %w", err)
	}
	return nil
}

// Close closes the underlying writer if it is an io.Closer.
func (s *WriterSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Name returns the sink identifier.
func (s *WriterSink) Name() string {
	return s.name
}

// FileSinkConfig configures a rotating file sink.
type FileSinkConfig struct {
	// Path is the audit log file. Default: "logs/audit.log".
	Path string

	// MaxBytes is the segment size that triggers rotation.
	// Default: 10 MiB.
	MaxBytes int64

	// Backups is how many rotated segments to retain; older ones are
	// discarded. Default: 5.
	Backups int
}

// FileSink appends audit lines to a size-bounded, rotating log file.
type FileSink struct {
	WriterSink
	config FileSinkConfig
}

// NewFileSink creates a rotating file sink. The file and its directory are
// created on first write.
func NewFileSink(config ...FileSinkConfig) *FileSink {
	cfg := FileSinkConfig{}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Path == "" {
		cfg.Path = "logs/audit.log"
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10 * 1024 * 1024
	}
	if cfg.Backups <= 0 {
		cfg.Backups = 5
	}

	// lumberjack expects whole megabytes; round up so a small configured
	// limit still rotates.
	maxSizeMB := int((cfg.MaxBytes + 1024*1024 - 1) / (1024 * 1024))

	return &FileSink{
		WriterSink: WriterSink{
			name: "file",
			w: &lumberjack.Logger{
				Filename:   cfg.Path,
				MaxSize:    maxSizeMB,
				MaxBackups: cfg.Backups,
			},
		},
		config: cfg,
	}
}

// Config returns the effective sink configuration.
func (s *FileSink) Config() FileSinkConfig {
	return s.config
}
