package flow

import (
	"fmt"
	"strings"
	"sync"
)

// questionKeyPrefix namespaces question answers so they cannot collide with
// field-set identifiers.
const questionKeyPrefix = "question_"

// QuestionKey returns the namespaced answer-map key for a question node.
func QuestionKey(questionID string) string {
	return questionKeyPrefix + questionID
}

// Answers is the flat runtime store of collected field values, keyed by field
// identifier (question answers use QuestionKey). One instance is shared by the
// navigator, the upload manager, and the submission path of a single form
// session; it carries its own lock because upload completions may write from
// another goroutine.
type Answers struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewAnswers returns an empty answer map.
func NewAnswers() *Answers {
	return &Answers{values: make(map[string]any)}
}

// Set records a value under the supplied key.
func (a *Answers) Set(key string, value any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.values[key] = value
}

// Get returns the raw value for key.
func (a *Answers) Get(key string) (any, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	value, ok := a.values[key]
	return value, ok
}

// String coerces the value for key into a string. Missing keys yield the
// empty string.
func (a *Answers) String(key string) string {
	value, ok := a.Get(key)
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprint(typed)
	}
}

// Empty reports whether key is absent or holds a blank string.
func (a *Answers) Empty(key string) bool {
	value, ok := a.Get(key)
	if !ok || value == nil {
		return true
	}
	if s, isString := value.(string); isString {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// Delete removes the entry for key.
func (a *Answers) Delete(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.values, key)
}

// Clear removes every entry while keeping the store usable.
func (a *Answers) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.values = make(map[string]any)
}

// Len returns the number of recorded entries.
func (a *Answers) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.values)
}

// Snapshot returns a shallow copy suitable for handing to a submission call;
// later mutation of the live store does not affect the copy.
func (a *Answers) Snapshot() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]any, len(a.values))
	for key, value := range a.values {
		out[key] = value
	}
	return out
}
