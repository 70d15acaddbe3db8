package handlers

import (
	"bufio"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	applog "cocolabs/internal/log"
	"cocolabs/internal/services"
	"cocolabs/internal/validate"
)

type ChatHandler struct {
	Chat *services.ChatService
}

type chatResult struct {
	text string
	err  error
}

func chatFailed(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process chat request"})
}

// Reply answers with plain text. With ?stream=1 the text is flushed to the
// client as the model produces it.
func (h *ChatHandler) Reply(c *fiber.Ctx) error {
	var in validate.ChatInput
	if err := bind(c, &in); err != nil {
		return fail(c, "chat", err)
	}
	if c.QueryBool("stream") {
		return h.stream(c, in)
	}
	text, err := h.Chat.Reply(c.UserContext(), in, nil)
	if err != nil {
		applog.Error(c, "chat.error", err, nil)
		return chatFailed(c)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(text)
}

func (h *ChatHandler) stream(c *fiber.Ctx, in validate.ChatInput) error {
	ctx := c.UserContext()
	chunks := make(chan string, 16)
	done := make(chan chatResult, 1)
	go func() {
		text, err := h.Chat.Reply(ctx, in, func(s string) error {
			chunks <- s
			return nil
		})
		close(chunks)
		done <- chatResult{text: text, err: err}
	}()

	// Wait for the first chunk so a failed call still gets a proper status.
	first, ok := <-chunks
	if !ok {
		// the model answered without streaming anything
		res := <-done
		if res.err != nil {
			applog.Error(c, "chat.error", res.err, map[string]any{"stream": true})
			return chatFailed(c)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(res.text)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		broken := false
		write := func(s string) {
			if broken {
				return
			}
			if _, err := w.WriteString(s); err != nil {
				broken = true
				return
			}
			if err := w.Flush(); err != nil {
				broken = true
			}
		}
		write(first)
		// keep draining after a disconnect so the generator can finish
		for s := range chunks {
			write(s)
		}
		if res := <-done; res.err != nil {
			applog.Error(nil, "chat.stream.error", res.err, nil)
		}
	}))
	return nil
}
