package domain

import "time"

// User owns conversations. Kept minimal: the orchestration layer that
// manages accounts lives outside this library.
type User struct {
	// ID is the unique identifier.
	ID string

	// Name is the display name.
	Name string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the user was first recorded.
	CreatedAt time.Time

	// UpdatedAt is when the user was last updated.
	UpdatedAt time.Time
}

// NewUser creates a user with a random identifier.
func NewUser(name string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        NewID(),
		Name:      name,
		Metadata:  make(map[string]any),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Conversation groups messages exchanged in one session.
type Conversation struct {
	// ID is the unique identifier.
	ID string

	// UserID links to the owning User.
	UserID string

	// Title is the optional human-readable title.
	Title string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the conversation started.
	CreatedAt time.Time

	// UpdatedAt is when the conversation was last updated.
	UpdatedAt time.Time
}

// NewConversation creates a conversation with a random identifier.
func NewConversation(userID, title string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		ID:        NewID(),
		UserID:    userID,
		Title:     title,
		Metadata:  make(map[string]any),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Message is a single conversation turn.
type Message struct {
	// ID is the unique identifier.
	ID string

	// ConversationID links to the parent Conversation.
	ConversationID string

	// Role identifies the speaker ("user", "assistant", "system").
	Role string

	// Content is the message text.
	Content string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the message was recorded. Used to order prior
	// messages when assembling conversation context.
	CreatedAt time.Time

	// UpdatedAt is when the message was last updated.
	UpdatedAt time.Time
}

// NewMessage creates a message with a random identifier.
func NewMessage(conversationID, role, content string) *Message {
	now := time.Now().UTC()
	return &Message{
		ID:             NewID(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Metadata:       make(map[string]any),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
