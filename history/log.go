// Package history writes per session action log files.  Each lock session
// produces one plain text file with a fixed header block, tab separated
// action rows and a summary footer, so downstream log parsing stays
// compatible across implementations.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	facelock "github.com/swdee/go-facelock"
)

const (
	// headerRuleLen is the length of the '=' rule below the header
	headerRuleLen = 50
	// bodyRuleLen is the length of the '-' rules framing the action rows
	bodyRuleLen = 70
)

// Log is the append only history file for a single lock session.  It is
// opened at lock acquisition and finalized exactly once at lock release
type Log struct {
	f    *os.File
	path string
}

// Open creates a new history file for the target identity.  The file name
// is derived from the lower cased target name and the acquisition timestamp
// with second precision
func Open(dir, target string, now time.Time) (*Log, error) {

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating history directory: %w", err)
	}

	name := fmt.Sprintf("%s_history_%s.txt", strings.ToLower(target),
		now.Format("20060102150405"))

	path := filepath.Join(dir, name)

	f, err := os.Create(path)

	if err != nil {
		return nil, fmt.Errorf("error creating history file: %w", err)
	}

	l := &Log{
		f:    f,
		path: path,
	}

	if err := l.writeHeader(target, now); err != nil {
		f.Close()
		return nil, err
	}

	return l, nil
}

// Path returns the location of the history file
func (l *Log) Path() string {
	return l.path
}

// writeHeader writes the fixed header block identifying the session
func (l *Log) writeHeader(target string, now time.Time) error {

	var b strings.Builder

	fmt.Fprintf(&b, "Face Locking History for: %s\n", target)
	fmt.Fprintf(&b, "Session started: %s\n", now.Format("2006-01-02 15:04:05"))
	b.WriteString(strings.Repeat("=", headerRuleLen) + "\n")
	b.WriteString("Timestamp\t\tAction Type\tDescription\t\tValue\n")
	b.WriteString(strings.Repeat("-", bodyRuleLen) + "\n")

	if _, err := l.f.WriteString(b.String()); err != nil {
		return fmt.Errorf("error writing history header: %w", err)
	}

	return nil
}

// Append writes a single tab separated action row.  Actions carrying no
// numeric value are written with an explicit N/A marker
func (l *Log) Append(a facelock.Action) error {

	value := "N/A"

	if a.HasValue {
		value = fmt.Sprintf("%.3f", a.Value)
	}

	_, err := fmt.Fprintf(l.f, "%s\t%s\t\t%s\t%s\n",
		a.Timestamp.Format("15:04:05.000"), a.Kind, a.Description, value)

	if err != nil {
		return fmt.Errorf("error appending action row: %w", err)
	}

	return nil
}

// Finalize writes the session footer with the total action count and a per
// kind tally, then closes the file.  A session with zero actions still gets
// a footer so every lock attempt leaves an auditable record
func (l *Log) Finalize(actions []facelock.Action, now time.Time) error {

	var b strings.Builder

	b.WriteString(strings.Repeat("-", bodyRuleLen) + "\n")
	fmt.Fprintf(&b, "Session ended: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Total actions recorded: %d\n", len(actions))
	b.WriteString("Action Summary:\n")

	// tally kinds in first occurrence order
	counts := make(map[facelock.ActionKind]int)
	var order []facelock.ActionKind

	for _, a := range actions {
		if _, seen := counts[a.Kind]; !seen {
			order = append(order, a.Kind)
		}
		counts[a.Kind]++
	}

	for _, kind := range order {
		fmt.Fprintf(&b, "  %s: %d\n", kind, counts[kind])
	}

	if _, err := l.f.WriteString(b.String()); err != nil {
		l.f.Close()
		return fmt.Errorf("error writing history footer: %w", err)
	}

	if err := l.f.Close(); err != nil {
		return fmt.Errorf("error closing history file: %w", err)
	}

	return nil
}
