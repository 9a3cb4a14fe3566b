package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/huddle/internal/selection"
)

// DebugLogPath is the fixed path for debug logs.
const DebugLogPath = "huddle-debug.log"

// DebugLogger writes one JSON object per line: seq, ts, event and fields.
type DebugLogger struct {
	mu  sync.Mutex
	w   io.Writer
	c   io.Closer
	seq int
}

var debugLog *DebugLogger

// InitDebugLogger creates DebugLogPath when enabled. Logging calls are
// no-ops otherwise.
func InitDebugLogger(enabled bool) error {
	if !enabled {
		debugLog = nil
		return nil
	}

	f, err := os.Create(DebugLogPath)
	if err != nil {
		return fmt.Errorf("creating debug log: %w", err)
	}
	debugLog = &DebugLogger{w: f, c: f}
	debugLog.log("DEBUG_START", map[string]any{
		"log_file": DebugLogPath,
		"time":     time.Now().Format(time.RFC3339),
	})
	return nil
}

// CloseDebugLogger closes the debug log file.
func CloseDebugLogger() {
	if debugLog == nil {
		return
	}
	debugLog.log("DEBUG_END", map[string]any{"time": time.Now().Format(time.RFC3339)})
	if debugLog.c != nil {
		_ = debugLog.c.Close()
	}
	debugLog = nil
}

func (d *DebugLogger) log(event string, data map[string]any) {
	if d == nil || d.w == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	entry := map[string]any{
		"seq":   d.seq,
		"ts":    time.Now().Format("15:04:05.000"),
		"event": event,
	}
	for k, v := range data {
		entry[k] = v
	}

	b, _ := json.Marshal(entry)
	_, _ = fmt.Fprintf(d.w, "%s\n", b)
}

// LogKeyPress logs a key press event.
func LogKeyPress(msg tea.KeyMsg) {
	debugLog.log("KEY_PRESS", map[string]any{"key": msg.String()})
}

// LogGesture logs a gesture event with the controller state after it.
func LogGesture(event string, at time.Time, c *selection.Controller) {
	if debugLog == nil {
		return
	}
	data := map[string]any{
		"at":    at.Format("2006-01-02 15:04"),
		"state": c.State().String(),
		"mode":  c.Gesture().Mode.String(),
	}
	if p, ok := c.Preview(); ok {
		data["preview"] = map[string]any{
			"from": p.From.Format("2006-01-02 15:04"),
			"to":   p.To.Format("2006-01-02 15:04"),
			"mode": p.Mode.String(),
			"days": len(p.Ranges),
		}
	}
	debugLog.log(event, data)
}

// LogSave logs a save of the editor's availability.
func LogSave(guest string, intervals int) {
	debugLog.log("SAVE", map[string]any{"guest": guest, "intervals": intervals})
}

// LogError logs an error.
func LogError(context string, err error) {
	if debugLog == nil || err == nil {
		return
	}
	debugLog.log("ERROR", map[string]any{"context": context, "error": err.Error()})
}
