package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one bubble in a conversation. Messages are never edited
// after they are appended.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func NewChatMessage(role Role, content string) ChatMessage {
	return ChatMessage{
		ID:        uuid.New(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the assistant reply and where it came from.
type ChatResponse struct {
	Reply   string      `json:"reply"`
	Source  string      `json:"source"`
	Failure string      `json:"failure,omitempty"`
	Message ChatMessage `json:"message"`
}

type ChatWelcome struct {
	Greeting       ChatMessage `json:"greeting"`
	QuickQuestions []string    `json:"quick_questions"`
}

// WebhookChatRequest is the JSON body posted to the chatbot webhook.
type WebhookChatRequest struct {
	Message            string   `json:"message"`
	UserID             string   `json:"userId"`
	UserName           string   `json:"userName"`
	UserEmail          string   `json:"userEmail"`
	DietaryPreferences []string `json:"dietaryPreferences"`
	Allergies          []string `json:"allergies"`
	HealthGoals        []string `json:"healthGoals"`
	DailyCalories      *int     `json:"dailyCalories"`
}
