// internal/workers/ai-conversation/handle-chat-query/models.go
package handlechatquery

import "provider-directory/internal/models"

// Input mirrors the POST /api/chat body and the job variables.
// ConversationID is accepted and ignored.
type Input struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversationId,omitempty"`
}

type Output struct {
	models.Reply
	Intent models.Intent `json:"intent"`

	// Degraded is set when the directory could not be read and the reply
	// is an apology.
	Degraded  bool   `json:"degraded,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`

	failure error
}
