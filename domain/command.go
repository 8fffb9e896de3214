package domain

// SendCommand is the validated intent to relay one message.
// Self-messages (Sender == Receiver) are allowed on purpose: mentors
// use them as personal notes, and nothing in the relay breaks on them.
type SendCommand struct {
	Sender   string `json:"sender" validate:"required,alphanum,min=3,max=32"`
	Receiver string `json:"receiver" validate:"required,alphanum,min=3,max=32"`
	Body     string `json:"body" validate:"required"`
}

// ConversationQuery asks for the full ordered history of a pair.
type ConversationQuery struct {
	IdentityA string `validate:"required"`
	IdentityB string `validate:"required"`
}
