package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cocolabs/internal/ai"
	"cocolabs/internal/repos"
	"cocolabs/internal/services"
	"cocolabs/internal/validate"
)

type fakeChatter struct {
	got   []ai.Message
	reply string
	err   error
}

func (f *fakeChatter) Chat(ctx context.Context, msgs []ai.Message, onChunk func(string) error) (string, error) {
	f.got = msgs
	if f.err != nil {
		return "", f.err
	}
	if onChunk != nil {
		if err := onChunk(f.reply); err != nil {
			return "", err
		}
	}
	return f.reply, nil
}

func TestChat_PrependsProductContext(t *testing.T) {
	db := memdb(t)
	fc := &fakeChatter{reply: "The frame weighs 1.2kg."}
	svc := services.NewChatService(fc, repos.NewProductRepo(db))

	var streamed string
	out, err := svc.Reply(context.Background(), validate.ChatInput{Messages: []validate.ChatMessage{
		{Role: "user", Content: "How heavy is the frame?"},
		{Role: "assistant", Content: "Which frame?"},
		{Role: "user", Content: "Carbon fiber"},
	}}, func(s string) error { streamed += s; return nil })
	require.NoError(t, err)
	assert.Equal(t, "The frame weighs 1.2kg.", out)
	assert.Equal(t, out, streamed)

	require.Len(t, fc.got, 4)
	assert.Equal(t, ai.RoleSystem, fc.got[0].Role)
	assert.Contains(t, fc.got[0].Content, "Coco Labs")
	assert.Contains(t, fc.got[0].Content, "Carbon Fiber Composite Frame")
	assert.Equal(t, ai.RoleAssistant, fc.got[2].Role)
	assert.Equal(t, "Carbon fiber", fc.got[3].Content)
}

func TestChat_PropagatesModelFailure(t *testing.T) {
	svc := services.NewChatService(&fakeChatter{err: errors.New("boom")}, repos.NewProductRepo(memdb(t)))
	_, err := svc.Reply(context.Background(), validate.ChatInput{Messages: []validate.ChatMessage{{Role: "user", Content: "hi"}}}, nil)
	assert.Error(t, err)
}
