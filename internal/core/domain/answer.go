package domain

import "strings"

// State is a step of the answer pipeline.
type State string

// Pipeline states. NoData, GenerationFailed and Done are terminal.
const (
	StateReceived         State = "received"
	StateClassified       State = "classified"
	StateRetrieved        State = "retrieved"
	StateSkipped          State = "skipped"
	StatePrompted         State = "prompted"
	StateGenerated        State = "generated"
	StateComposed         State = "composed"
	StateDispatched       State = "dispatched"
	StateNotDispatched    State = "not_dispatched"
	StateNoData           State = "no_data"
	StateGenerationFailed State = "generation_failed"
	StateDone             State = "done"
)

// String returns the string representation.
func (s State) String() string {
	return string(s)
}

// IsTerminal returns true for states that end a request.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateNoData || s == StateGenerationFailed
}

// DeliveryStatus records whether a report was e-mailed.
type DeliveryStatus string

// Delivery outcomes.
const (
	DeliveryNotRequested DeliveryStatus = "not_requested"
	DeliverySent         DeliveryStatus = "sent"
	DeliveryFailed       DeliveryStatus = "failed"
)

// String returns the string representation.
func (d DeliveryStatus) String() string {
	return string(d)
}

// Answer is the result envelope of one question.
type Answer struct {
	// RequestID correlates log lines and metrics for one call.
	RequestID string

	// Topic is the classified topic.
	Topic Topic

	// Text is the user-visible response. Never empty.
	Text string

	// State is the terminal state reached.
	State State

	// Trail lists every state visited, in order.
	Trail []State

	// Rows is the number of event rows used for grounding.
	Rows int

	// Delivery is the e-mail outcome.
	Delivery DeliveryStatus
}

// Report is a formatted answer ready for display or delivery.
type Report struct {
	Topic Topic
	Title string

	// Body is the model completion, unaltered.
	Body string
}

// NewReport builds the report for a topic around a completion.
func NewReport(t Topic, body string) Report {
	title := "UrbanBot Report"
	if name := t.ReportName(); name != "" {
		title = "UrbanBot " + name + " Report"
	}
	return Report{Topic: t, Title: "📊 " + title, Body: body}
}

// Subject returns the notification subject line.
func (r Report) Subject() string {
	return r.Topic.Subject()
}

// String renders the heading, an underline and the body.
func (r Report) String() string {
	var b strings.Builder
	b.WriteString(r.Title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", len([]rune(r.Title))))
	b.WriteString("\n\n")
	b.WriteString(r.Body)
	return b.String()
}

// Role identifies the speaker of a conversation turn.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in a surface-owned conversation history.
type Turn struct {
	Role    Role
	Content string
}
