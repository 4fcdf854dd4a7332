package services

import (
	"sync"

	"nutriboard-backend/internal/models"
)

const Greeting = "Hello! I'm your AI nutrition assistant. I can help you with meal planning, nutrition advice, calorie tracking, and answer any questions about your diet plan. How can I help you today?"

var QuickQuestions = []string{
	"What's my calorie target?",
	"Show me today's meal plan",
	"How much protein should I eat?",
	"Track my weight progress",
}

func Welcome() models.ChatWelcome {
	return models.ChatWelcome{
		Greeting:       models.NewChatMessage(models.RoleAssistant, Greeting),
		QuickQuestions: append([]string(nil), QuickQuestions...),
	}
}

// Conversation is an in-memory, append-only message list. It lives as long
// as the chat session that owns it.
type Conversation struct {
	mu       sync.RWMutex
	messages []models.ChatMessage
}

// NewConversation starts a conversation with the assistant greeting.
func NewConversation() *Conversation {
	return &Conversation{
		messages: []models.ChatMessage{models.NewChatMessage(models.RoleAssistant, Greeting)},
	}
}

func (c *Conversation) Append(role models.Role, content string) models.ChatMessage {
	msg := models.NewChatMessage(role, content)
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
	return msg
}

// Messages returns a copy in append order.
func (c *Conversation) Messages() []models.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.ChatMessage(nil), c.messages...)
}

func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}
