package formflow_test

import (
	"context"
	"testing"

	formflow "github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/pkg/flow"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

type captureSubmitter struct {
	formID  string
	answers map[string]any
	calls   int
}

func (c *captureSubmitter) Submit(_ context.Context, formID string, answers map[string]any) error {
	c.formID = formID
	c.answers = answers
	c.calls++
	return nil
}

func TestEndToEndFormRun(t *testing.T) {
	sink := &captureSubmitter{}
	session := formflow.NewSession(testsupport.BranchingDefinition(t), formflow.WithSubmitter(sink))

	if session.FlowComplete() {
		t.Fatal("expected the run to start on the question flow")
	}
	if err := session.Select("q1", "optB"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if !session.FlowComplete() {
		t.Fatal("expected the end-marker option to complete the flow")
	}

	if err := session.SetAnswer("name", "Ada"); err != nil {
		t.Fatalf("set name: %v", err)
	}
	if err := session.SetAnswer("email", "ada@example.com"); err != nil {
		t.Fatalf("set email: %v", err)
	}

	result, err := session.SubmitAttempt(testsupport.Context())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected a valid submission, got %+v", result.Errors)
	}
	if sink.calls != 1 || sink.formID != "contact" {
		t.Fatalf("unexpected submission: calls=%d form=%q", sink.calls, sink.formID)
	}
	if sink.answers[flow.QuestionKey("q1")] != "optB" || sink.answers["name"] != "Ada" {
		t.Fatalf("unexpected payload: %+v", sink.answers)
	}
}

func TestParseAndRunDocument(t *testing.T) {
	doc := `
id: feedback
fields:
  - id: q1
    type: question
    options:
      - value: "yes"
        isEnd: true
  - id: comment
    type: textarea
`
	def, err := formflow.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	session := formflow.NewSession(def, formflow.WithSubmitter(&captureSubmitter{}))
	if err := session.Select("q1", "yes"); err != nil {
		t.Fatalf("select: %v", err)
	}
	fields := session.VisibleFields()
	if len(fields) != 1 || fields[0].ID != "comment" {
		t.Fatalf("expected the field set after the flow, got %+v", fields)
	}
}
