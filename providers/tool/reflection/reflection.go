// Package reflection provides the "reflect" tool, which lets a model pause
// and record a thought about the current situation. Entries are kept in a
// Log that callers can inspect after a run.
package reflection

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/leofalp/cascade/providers/tool"
)

// Situations lists the accepted situation values.
var Situations = []string{"difficulty", "conflict", "uncertainty", "recognition", "endings"}

// Entry is one recorded reflection.
type Entry struct {
	Situation string    `json:"situation"`
	Thought   string    `json:"thought"`
	Time      time.Time `json:"time"`
}

// Log accumulates reflections. It is safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	entries []Entry
}

// Entries returns a copy of the recorded reflections in order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}

// Clear drops every entry.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

func (l *Log) add(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

// Input is the input of the reflect tool.
type Input struct {
	Situation string `json:"situation"`
	Thought   string `json:"thought" default:""`
}

// New returns the reflect tool recording into log. A nil log gets a fresh
// one that nobody reads.
func New(log *Log) *tool.ToolDef {
	if log == nil {
		log = &Log{}
	}
	return tool.MustNew("reflect", func(_ context.Context, in Input) (string, error) {
		return log.Reflect(in.Situation, in.Thought), nil
	}, tool.WithDescription(`Pause to reflect before continuing. Use when facing difficulty, conflicting information, uncertainty, when recognizing a pattern, or when a task is ending.

Args:
    situation: One of difficulty, conflict, uncertainty, recognition, endings.
    thought: What you are thinking about the situation.`))
}

// Reflect records a reflection and returns the text handed back to the
// model. An unknown situation is reported in the text, not as an error, so
// the model can retry.
func (l *Log) Reflect(situation, thought string) string {
	situation = strings.ToLower(strings.TrimSpace(situation))
	if !slices.Contains(Situations, situation) {
		valid := slices.Sorted(slices.Values(Situations))
		return fmt.Sprintf("Invalid situation '%s'. Use one of: %s", situation, strings.Join(valid, ", "))
	}
	l.add(Entry{Situation: situation, Thought: thought, Time: time.Now()})
	return fmt.Sprintf("Reflection noted (%s). Continue with renewed clarity.", situation)
}
