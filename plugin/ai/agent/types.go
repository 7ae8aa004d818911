// Package agent implements the conversational retrieval agent: a small
// state machine that manages rolling conversation memory, decides between
// answering directly and invoking the retrieval tool, and loops between
// reasoning and tool execution until a final answer is produced.
package agent

import (
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ContentPart is a single part of a structured message content.
// Only the text field participates in prompt construction; other modality
// markers are carried through untouched.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolCall is a tool invocation requested by the assistant.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // raw JSON arguments
}

// Message is one entry of the conversation log.
// IDs are assigned at creation time and never synthesized later; targeted
// deletion during memory compression depends on them.
type Message struct {
	ID         string        `json:"id"`
	Role       Role          `json:"role"`
	Content    string        `json:"content,omitempty"`
	Parts      []ContentPart `json:"parts,omitempty"`
	ToolCalls  []ToolCall    `json:"tool_calls,omitempty"`   // assistant messages only
	ToolCallID string        `json:"tool_call_id,omitempty"` // tool messages only
	CreatedTs  int64         `json:"created_ts"`
}

// Text flattens the message content to plain text. Structured parts are
// concatenated in order.
func (m *Message) Text() string {
	if len(m.Parts) == 0 {
		return m.Content
	}
	var sb strings.Builder
	for _, part := range m.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

func newMessage(role Role) Message {
	return Message{
		ID:        shortuuid.New(),
		Role:      role,
		CreatedTs: time.Now().Unix(),
	}
}

// NewUserMessage creates a user message with a fresh ID.
func NewUserMessage(content string) Message {
	m := newMessage(RoleUser)
	m.Content = content
	return m
}

// NewAssistantMessage creates an assistant message with a fresh ID.
func NewAssistantMessage(content string, toolCalls []ToolCall) Message {
	m := newMessage(RoleAssistant)
	m.Content = content
	m.ToolCalls = toolCalls
	return m
}

// NewToolMessage creates a tool result message answering the given call.
func NewToolMessage(callID, content string) Message {
	m := newMessage(RoleTool)
	m.Content = content
	m.ToolCallID = callID
	return m
}

// NewSystemMessage creates a system message with a fresh ID.
func NewSystemMessage(content string) Message {
	m := newMessage(RoleSystem)
	m.Content = content
	return m
}

// State is the per-session conversation state. Messages are ordered and
// append-only except for deletions emitted by the memory manager; Summary is
// replaced wholesale on each recompression.
type State struct {
	Messages []Message `json:"messages"`
	Summary  string    `json:"summary"`
}

// NewState returns an empty conversation state.
func NewState() *State {
	return &State{}
}

// LastMessage returns the most recent message, or nil for an empty state.
func (s *State) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return &s.Messages[len(s.Messages)-1]
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	clone := &State{Summary: s.Summary}
	clone.Messages = make([]Message, len(s.Messages))
	copy(clone.Messages, s.Messages)
	return clone
}

// Append adds messages to the log.
func (s *State) Append(messages ...Message) {
	s.Messages = append(s.Messages, messages...)
}

// Update is a partial state update produced by a pipeline node. The caller
// applies it: summary is an upsert, appends extend the log, deletions remove
// messages by ID.
type Update struct {
	Summary   *string
	Append    []Message
	Deletions []string // message IDs to remove
}

// IsZero reports whether the update carries no changes.
func (u Update) IsZero() bool {
	return u.Summary == nil && len(u.Append) == 0 && len(u.Deletions) == 0
}

// Apply mutates the state with the given update. Deletions are removal by
// ID: order-independent, and a no-op for IDs that are already absent.
func (s *State) Apply(u Update) {
	if len(u.Deletions) > 0 {
		deleted := make(map[string]bool, len(u.Deletions))
		for _, id := range u.Deletions {
			deleted[id] = true
		}
		kept := s.Messages[:0]
		for _, m := range s.Messages {
			if !deleted[m.ID] {
				kept = append(kept, m)
			}
		}
		s.Messages = kept
	}
	if len(u.Append) > 0 {
		s.Messages = append(s.Messages, u.Append...)
	}
	if u.Summary != nil {
		s.Summary = *u.Summary
	}
}
