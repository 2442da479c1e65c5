package scenario

// Dialog is either a monologue (Sentences) spoken by the owning NPC or a
// conversation (Lines) that may involve several speakers.
type Dialog struct {
	Sentences []string `json:"sentences,omitempty" yaml:"sentences,omitempty"`
	Lines     []Line   `json:"lines,omitempty" yaml:"lines,omitempty"`
}

// IsConversation reports whether the dialog is a multi-speaker conversation.
func (d Dialog) IsConversation() bool {
	return len(d.Lines) > 0
}

// IsEmpty reports whether the dialog has nothing to say.
func (d Dialog) IsEmpty() bool {
	return len(d.Sentences) == 0 && len(d.Lines) == 0
}

// Line is one line of a conversation. Speaker is an NPC ID or "player".
type Line struct {
	Speaker   string   `json:"speaker" yaml:"speaker"`
	Text      string   `json:"text,omitempty" yaml:"text,omitempty"`
	Animation string   `json:"animation,omitempty" yaml:"animation,omitempty"`
	Sound     string   `json:"sound,omitempty" yaml:"sound,omitempty"`
	OnStart   []Effect `json:"on_start,omitempty" yaml:"on_start,omitempty"`
}
