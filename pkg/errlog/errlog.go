// Package errlog records rendering diagnostics. A Log is an append-only
// accumulator scoped to one render call.
package errlog

import (
	"strconv"
	"strings"
)

// Level is the severity of an entry. Levels are ordered by increasing
// severity.
type Level uint8

const (
	LevelDebug Level = iota
	LevelDiag
	LevelWarning
	LevelError
	LevelFatal
)

var levelNames = [...]string{
	LevelDebug:   "debug",
	LevelDiag:    "diag",
	LevelWarning: "warning",
	LevelError:   "error",
	LevelFatal:   "fatal",
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "level(" + strconv.Itoa(int(l)) + ")"
}

// ParseLevel maps a level name back to its Level.
func ParseLevel(name string) (Level, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range levelNames {
		if n == name {
			return Level(i), true
		}
	}
	return LevelDebug, false
}

// Position locates an entry in template source. Line and Column are 1-based;
// zero means unknown.
type Position struct {
	Filename string
	Line     int
	Column   int
}

func (p Position) String() string {
	return p.Filename + ":" + strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Entry is one diagnostic. Entries are values; the Log never hands out
// references to its storage.
type Entry struct {
	Level   Level
	Pos     Position
	Message string
}

// NewEntry builds an Entry.
func NewEntry(level Level, pos Position, message string) Entry {
	return Entry{Level: level, Pos: pos, Message: message}
}

var lineBreaks = strings.NewReplacer("\r", `\r`, "\n", `\n`)

// LogLine formats the entry as "level:filename:line:column: message". Line
// breaks in the message are escaped so an entry always fits on one line.
func (e Entry) LogLine() string {
	return e.Level.String() + ":" + e.Pos.String() + ": " + lineBreaks.Replace(e.Message)
}

// Log is an ordered, append-only sequence of entries. The zero value is ready
// to use. A Log is not safe for concurrent use.
type Log struct {
	entries []Entry
}

// New returns an empty Log.
func New() *Log {
	return &Log{}
}

// Push appends e.
func (l *Log) Push(e Entry) {
	l.entries = append(l.entries, e)
}

// Add appends an entry built from its parts.
func (l *Log) Add(level Level, pos Position, message string) {
	l.Push(NewEntry(level, pos, message))
}

// Entries returns a copy of the entries, oldest first.
func (l *Log) Entries() []Entry {
	if l == nil || len(l.entries) == 0 {
		return nil
	}
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Max returns the highest level pushed so far; ok is false for an empty log.
func (l *Log) Max() (level Level, ok bool) {
	if l == nil {
		return LevelDebug, false
	}
	for _, e := range l.entries {
		if !ok || e.Level > level {
			level, ok = e.Level, true
		}
	}
	return level, ok
}

// Dump renders one line per entry.
func (l *Log) Dump() string {
	if l == nil {
		return ""
	}
	var b strings.Builder
	for _, e := range l.entries {
		b.WriteString(e.LogLine())
		b.WriteByte('\n')
	}
	return b.String()
}
