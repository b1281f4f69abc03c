// Package generator turns a resume and the publication history into one
// parsed post by way of the chat model.
package generator

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/chat"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/post"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/prompt"
)

// Result is everything one generation produced.
type Result struct {
	Prompt        []chat.Message
	Model         string
	RawCompletion string
	Post          post.Post
}

// Generator wires the prompt builder, a chat client and the parser together.
type Generator struct {
	client chat.Client
	model  string
	opts   prompt.Options
	log    *zap.Logger
	now    func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// WithClock overrides the clock used to stamp CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithHistoryWindow caps how many previous titles go into the prompt.
func WithHistoryWindow(n int) Option {
	return func(g *Generator) { g.opts.HistoryWindow = n }
}

// WithModel names the model reported when the response omits one.
func WithModel(model string) Option {
	return func(g *Generator) { g.model = model }
}

// New creates a Generator around client.
func New(client chat.Client, opts ...Option) (*Generator, error) {
	if client == nil {
		return nil, errors.New("generator: chat client is required")
	}
	g := &Generator{
		client: client,
		log:    zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.Named("generator")
	return g, nil
}

// GeneratePost asks the model for one post. Any failure, including a
// response without usable content, is a *chat.ChatClientError. There is no retry.
func (g *Generator) GeneratePost(ctx context.Context, resume string, previousPosts []string) (*Result, error) {
	messages := prompt.Build(resume, previousPosts, g.opts)

	promptBytes := 0
	for _, m := range messages {
		promptBytes += len(m.Content)
	}
	g.log.Debug("requesting completion",
		zap.Int("messages", len(messages)),
		zap.Int("prompt_bytes", promptBytes),
		zap.Int("previous_posts", len(previousPosts)))

	start := g.now()
	resp, err := g.client.ChatCompletion(ctx, messages)
	if err != nil {
		var ce *chat.ChatClientError
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, &chat.ChatClientError{Op: "request", Err: err}
	}

	text, ok := resp.Content()
	if !ok {
		return nil, &chat.ChatClientError{Op: "empty", Err: errors.New("response has no usable message content")}
	}

	model := resp.Model
	if model == "" {
		model = g.model
	}

	p := post.ParseCompletionAt(text, g.now())
	g.log.Info("completion received",
		zap.String("model", model),
		zap.Int("completion_bytes", len(text)),
		zap.Duration("elapsed", g.now().Sub(start)),
		zap.String("title", p.Title))

	return &Result{
		Prompt:        messages,
		Model:         model,
		RawCompletion: text,
		Post:          p,
	}, nil
}
