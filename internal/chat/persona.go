// Package chat manages persona-driven conversations with a completion provider.
package chat

import "errors"

// Persona names.
const (
	PersonaHelpful = "helpful"
	PersonaSassy   = "sassy"
	PersonaTeacher = "teacher"
	PersonaCustom  = "custom"
)

// DefaultCustomSystemMessage is the custom persona's system message when none is configured.
const DefaultCustomSystemMessage = "You are a helpful assistant."

var (
	// ErrUnknownPersona is returned when switching to a persona that does not exist.
	ErrUnknownPersona = errors.New("unknown persona")
	// ErrNotFound is returned by a Store that holds no history for a session.
	ErrNotFound = errors.New("chat history not found")
	// ErrEmptyMessage is returned when sending a blank message.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrOverBudget is returned when a single message cannot fit in the token budget.
	ErrOverBudget = errors.New("message exceeds the token budget")
)

var personaOrder = []string{PersonaHelpful, PersonaSassy, PersonaTeacher, PersonaCustom}

// Personas returns the persona names in display order.
func Personas() []string {
	return append([]string(nil), personaOrder...)
}

func systemMessages(custom string) map[string]string {
	if custom == "" {
		custom = DefaultCustomSystemMessage
	}
	return map[string]string{
		PersonaHelpful: "You are a helpful, polite assistant.",
		PersonaSassy:   "You are a sassy assistant who is fed up with answering questions.",
		PersonaTeacher: "You are a patient teacher who explains things step by step.",
		PersonaCustom:  custom,
	}
}

// SystemMessage returns the system message for a persona. custom overrides the custom persona's message.
func SystemMessage(persona, custom string) (string, bool) {
	msg, ok := systemMessages(custom)[persona]
	return msg, ok
}
