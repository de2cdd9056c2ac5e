package flow

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Option customises navigator construction.
type Option func(*Navigator)

// WithLogger sets a structured logger. Dangling branch targets are reported at
// debug level; end users never see them, authoring tools can.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Navigator) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// Navigator owns the current position, completion flag, and history stack of
// one form session's question flow. It is not safe for concurrent use; the
// session serialises access.
type Navigator struct {
	order   []string
	index   map[string]model.Field
	nonFile []string

	current      string
	flowComplete bool
	history      []string

	answers *Answers
	logger  *slog.Logger
}

// NewNavigator builds a navigator over the definition's question flow, sharing
// the supplied answer map. A definition without question fields starts with
// the flow already complete.
func NewNavigator(def model.FormDefinition, answers *Answers, options ...Option) *Navigator {
	questions := def.Questions()
	nav := &Navigator{
		order:   make([]string, 0, len(questions)),
		index:   make(map[string]model.Field, len(questions)),
		answers: answers,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if nav.answers == nil {
		nav.answers = NewAnswers()
	}
	for _, q := range questions {
		nav.order = append(nav.order, q.ID)
		nav.index[q.ID] = q
	}
	for _, field := range def.FieldSet() {
		if field.Type != model.FieldTypeFile {
			nav.nonFile = append(nav.nonFile, field.ID)
		}
	}
	for _, opt := range options {
		if opt != nil {
			opt(nav)
		}
	}

	if len(nav.order) == 0 {
		nav.flowComplete = true
	} else {
		nav.current = nav.order[0]
	}
	return nav
}

// Current returns the question node on display. The boolean is false once the
// flow is complete or the flow is empty.
func (n *Navigator) Current() (model.Field, bool) {
	if n.flowComplete || n.current == "" {
		return model.Field{}, false
	}
	q, ok := n.index[n.current]
	return q, ok
}

// CurrentID returns the identifier of the current node, which is retained
// after completion so back navigation can restore the last node.
func (n *Navigator) CurrentID() string {
	return n.current
}

// FlowComplete reports whether the field set should be shown.
func (n *Navigator) FlowComplete() bool {
	return n.flowComplete
}

// History returns a copy of the visited-node stack, oldest first.
func (n *Navigator) History() []string {
	return append([]string(nil), n.history...)
}

// Answers exposes the shared answer map.
func (n *Navigator) Answers() *Answers {
	return n.answers
}

// Select records the chosen option on the current question and advances the
// flow. The question id must match the node on display and the value must name
// one of its options.
func (n *Navigator) Select(questionID, optionValue string) error {
	if n.flowComplete {
		return fmt.Errorf("flow: question flow is already complete")
	}
	if questionID != n.current {
		return fmt.Errorf("flow: question %q is not the current node (%q)", questionID, n.current)
	}
	q := n.index[questionID]
	opt, ok := q.Option(optionValue)
	if !ok {
		return fmt.Errorf("flow: question %q has no option %q", questionID, optionValue)
	}

	n.answers.Set(QuestionKey(questionID), opt.Value)
	n.history = append(n.history, questionID)

	next, complete := n.resolveNext(q, opt)
	if complete {
		n.flowComplete = true
		return nil
	}
	n.current = next
	return nil
}

// resolveNext applies the transition rules in priority order: an end marker
// wins, then an explicit target that exists in the flow, then the next node in
// declared order, and finally flow completion. A dangling explicit target is
// treated as absent rather than as an error.
func (n *Navigator) resolveNext(q model.Field, opt model.Option) (string, bool) {
	if opt.IsEnd {
		return "", true
	}
	if opt.NextQuestionID != "" {
		if _, ok := n.index[opt.NextQuestionID]; ok {
			return opt.NextQuestionID, false
		}
		n.logger.Debug("dangling branch target, falling back to sequential order",
			"question", q.ID, "option", opt.Value, "target", opt.NextQuestionID)
	}
	if next, ok := n.nextInOrder(q.ID); ok {
		return next, false
	}
	return "", true
}

func (n *Navigator) nextInOrder(id string) (string, bool) {
	for i, candidate := range n.order {
		if candidate == id {
			if i+1 < len(n.order) {
				return n.order[i+1], true
			}
			return "", false
		}
	}
	return "", false
}

// Back undoes the most recent forward transition. From the field set it
// restores the last visited node and clears the field-set answers that were
// only reachable by completing the flow (file answers stay; their lifecycle
// belongs to the upload manager). From a question it clears the answer of the
// node being left. The answer of the re-entered node is always cleared so the
// user answers it again. Returns false when already at the first question.
func (n *Navigator) Back() bool {
	if n.flowComplete && len(n.history) > 0 {
		n.current = n.popHistory()
		n.answers.Delete(QuestionKey(n.current))
		for _, id := range n.nonFile {
			n.answers.Delete(id)
		}
		n.flowComplete = false
		return true
	}
	if !n.flowComplete && len(n.history) > 0 {
		n.answers.Delete(QuestionKey(n.current))
		n.current = n.popHistory()
		n.answers.Delete(QuestionKey(n.current))
		return true
	}
	return false
}

func (n *Navigator) popHistory() string {
	last := n.history[len(n.history)-1]
	n.history = n.history[:len(n.history)-1]
	return last
}

// Reset returns the navigator to its initial state without touching the
// answer map; callers that want a pristine session clear the map themselves.
func (n *Navigator) Reset() {
	n.history = nil
	if len(n.order) == 0 {
		n.current = ""
		n.flowComplete = true
		return
	}
	n.current = n.order[0]
	n.flowComplete = false
}
