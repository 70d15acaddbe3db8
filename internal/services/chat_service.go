package services

import (
	"context"
	"fmt"
	"strings"

	"cocolabs/internal/ai"
	"cocolabs/internal/repos"
	"cocolabs/internal/validate"
)

// Chatter runs a conversation against a language model. *ai.Client satisfies it.
type Chatter interface {
	Chat(ctx context.Context, msgs []ai.Message, onChunk func(string) error) (string, error)
}

const assistantBrief = `You are a product assistant for Coco Labs, a company that specializes in precision-engineered products.

Key features of our products:
- Precision engineering with micron-level accuracy
- Advanced materials including aerospace-grade aluminum and carbon fiber
- Smart technology with integrated sensors and IoT connectivity
- Open source software and expandable platforms

Our engineering process involves:
1. Research & Design - Extensive research and CAD modeling
2. Prototyping & Testing - Rigorous testing in extreme conditions
3. Precision Manufacturing - Advanced processes with minimal tolerance

Always be helpful, informative, and enthusiastic about our products. If you don't know specific details,
suggest that the customer contact our support team for more information.`

type ChatService struct {
	AI    Chatter
	Prods *repos.ProductRepo
}

func NewChatService(c Chatter, prods *repos.ProductRepo) *ChatService {
	return &ChatService{AI: c, Prods: prods}
}

// Reply answers the conversation with the store's product context prepended.
// onChunk, when set, receives the reply as it is generated.
func (s *ChatService) Reply(ctx context.Context, in validate.ChatInput, onChunk func(string) error) (string, error) {
	system, err := s.systemPrompt(ctx)
	if err != nil {
		return "", err
	}
	msgs := make([]ai.Message, 0, len(in.Messages)+1)
	msgs = append(msgs, ai.Message{Role: ai.RoleSystem, Content: system})
	for _, m := range in.Messages {
		role := ai.RoleUser
		if m.Role == "assistant" {
			role = ai.RoleAssistant
		}
		msgs = append(msgs, ai.Message{Role: role, Content: m.Content})
	}
	return s.AI.Chat(ctx, msgs, onChunk)
}

func (s *ChatService) systemPrompt(ctx context.Context) (string, error) {
	products, err := s.Prods.Search(ctx, "", "", 100, 0)
	if err != nil {
		return "", fmt.Errorf("load catalog: %w", err)
	}
	var b strings.Builder
	b.WriteString(assistantBrief)
	b.WriteString("\n\nCurrent catalog:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- %s (%s, $%s): %s\n", p.Name, p.Category, p.Price.StringFixed(2), p.Description)
	}
	return b.String(), nil
}
