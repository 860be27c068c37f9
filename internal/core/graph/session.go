package graph

import "github.com/custodia-labs/lattice/internal/core/domain"

// Session-adjacent property keys.
const (
	propUserID         = "user_id"
	propConversationID = "conversation_id"
	propRole           = "role"
)

// UserNode wraps a User for graph persistence.
type UserNode struct {
	*domain.User
}

// Label returns the node label.
func (UserNode) Label() string { return LabelUser }

// NodeID returns the stable identifier merged on.
func (n UserNode) NodeID() string { return n.ID }

// Props flattens the user into primitive properties.
func (n UserNode) Props() (map[string]any, error) {
	meta, err := encodeMetadata(n.Metadata)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		propName:      n.Name,
		propMetadata:  meta,
		propCreatedAt: formatTime(n.CreatedAt),
		propUpdatedAt: formatTime(n.UpdatedAt),
	}, nil
}

// UserFromProps restores a user from stored properties.
func UserFromProps(props map[string]any) *domain.User {
	return &domain.User{
		ID:        stringProp(props, propID),
		Name:      stringProp(props, propName),
		Metadata:  restMetadata(props, propName),
		CreatedAt: parseTime(props[propCreatedAt]),
		UpdatedAt: parseTime(props[propUpdatedAt]),
	}
}

// ConversationNode wraps a Conversation for graph persistence.
type ConversationNode struct {
	*domain.Conversation
}

// Label returns the node label.
func (ConversationNode) Label() string { return LabelConversation }

// NodeID returns the stable identifier merged on.
func (n ConversationNode) NodeID() string { return n.ID }

// Props flattens the conversation into primitive properties.
func (n ConversationNode) Props() (map[string]any, error) {
	meta, err := encodeMetadata(n.Metadata)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		propUserID:    n.UserID,
		propTitle:     n.Title,
		propMetadata:  meta,
		propCreatedAt: formatTime(n.CreatedAt),
		propUpdatedAt: formatTime(n.UpdatedAt),
	}, nil
}

// ConversationFromProps restores a conversation from stored properties.
func ConversationFromProps(props map[string]any) *domain.Conversation {
	return &domain.Conversation{
		ID:        stringProp(props, propID),
		UserID:    stringProp(props, propUserID),
		Title:     stringProp(props, propTitle),
		Metadata:  restMetadata(props, propUserID, propTitle),
		CreatedAt: parseTime(props[propCreatedAt]),
		UpdatedAt: parseTime(props[propUpdatedAt]),
	}
}

// MessageNode wraps a Message for graph persistence.
type MessageNode struct {
	*domain.Message
}

// Label returns the node label.
func (MessageNode) Label() string { return LabelMessage }

// NodeID returns the stable identifier merged on.
func (n MessageNode) NodeID() string { return n.ID }

// Props flattens the message into primitive properties.
func (n MessageNode) Props() (map[string]any, error) {
	meta, err := encodeMetadata(n.Metadata)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		propConversationID: n.ConversationID,
		propRole:           n.Role,
		propContent:        n.Content,
		propMetadata:       meta,
		propCreatedAt:      formatTime(n.CreatedAt),
		propUpdatedAt:      formatTime(n.UpdatedAt),
	}, nil
}

// MessageFromProps restores a message from stored properties.
func MessageFromProps(props map[string]any) *domain.Message {
	return &domain.Message{
		ID:             stringProp(props, propID),
		ConversationID: stringProp(props, propConversationID),
		Role:           stringProp(props, propRole),
		Content:        stringProp(props, propContent),
		Metadata:       restMetadata(props, propConversationID, propRole, propContent),
		CreatedAt:      parseTime(props[propCreatedAt]),
		UpdatedAt:      parseTime(props[propUpdatedAt]),
	}
}

// SymbolNode wraps a Symbol for graph persistence.
type SymbolNode struct {
	*domain.Symbol
}

// Symbol property keys.
const propKind = "kind"

// Label returns the node label.
func (SymbolNode) Label() string { return LabelSymbol }

// NodeID returns the stable identifier merged on.
func (n SymbolNode) NodeID() string { return n.ID }

// Props flattens the symbol into primitive properties.
func (n SymbolNode) Props() (map[string]any, error) {
	meta, err := encodeMetadata(n.Metadata)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		propDocumentID: n.DocumentID,
		propName:       n.Name,
		propKind:       n.Kind,
		propMetadata:   meta,
		propCreatedAt:  formatTime(n.CreatedAt),
		propUpdatedAt:  formatTime(n.UpdatedAt),
	}, nil
}

// SymbolFromProps restores a symbol from stored properties.
func SymbolFromProps(props map[string]any) *domain.Symbol {
	return &domain.Symbol{
		ID:         stringProp(props, propID),
		DocumentID: stringProp(props, propDocumentID),
		Name:       stringProp(props, propName),
		Kind:       stringProp(props, propKind),
		Metadata:   restMetadata(props, propDocumentID, propName, propKind),
		CreatedAt:  parseTime(props[propCreatedAt]),
		UpdatedAt:  parseTime(props[propUpdatedAt]),
	}
}
