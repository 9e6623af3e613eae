package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/abhisek/capsulemed/internal/document"
	"github.com/abhisek/capsulemed/internal/llm"
)

const (
	// MissingKeyText answers every question when no provider is configured.
	MissingKeyText = "Erreur: Clé API manquante. Configure CAPSULEMED_GEMINI_API_KEY (ou API_KEY) puis relance l'application."

	// EmptyReplyText replaces an empty model answer.
	EmptyReplyText = "Désolé, je n'ai pas pu obtenir de réponse."

	// historyLimit bounds the previous messages sent with a question.
	historyLimit = 10
)

// Config holds chat generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the settings used by the app.
func DefaultConfig() Config {
	return Config{MaxTokens: 2048, Temperature: 0.7}
}

// Tutor answers learner questions. A nil provider means no credentials
// were found; every answer is then a configuration message.
type Tutor struct {
	provider llm.Provider
	cfg      Config
}

// NewTutor creates a tutor.
func NewTutor(provider llm.Provider, cfg Config) *Tutor {
	return &Tutor{provider: provider, cfg: cfg}
}

// Available reports whether questions reach a model.
func (t *Tutor) Available() bool {
	return t != nil && t.provider != nil
}

// Answer asks the model and returns its reply. history is the transcript
// before the question. Errors are returned as Failed model messages so the
// conversation stays usable. Answer does not touch any Conversation and may
// run off the UI loop.
func (t *Tutor) Answer(ctx context.Context, history []Message, s Surface, question string) Message {
	if !t.Available() {
		return Message{Role: RoleModel, Text: MissingKeyText, Failed: true}
	}
	if err := s.Check(); err != nil {
		return failure(err)
	}

	msgs := toLLM(history)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: s.Prompt(question)})

	ctx = llm.WithPurpose(ctx, s.Purpose())
	resp, err := t.provider.Generate(ctx, llm.Request{
		Messages:    msgs,
		MaxTokens:   t.cfg.MaxTokens,
		Temperature: t.cfg.Temperature,
	})
	if err != nil {
		return failure(err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		text = EmptyReplyText
	}
	return Message{Role: RoleModel, Text: text}
}

// Reply appends the question and the answer to conv and returns the
// answer. Blank questions are ignored.
func (t *Tutor) Reply(ctx context.Context, conv *Conversation, s Surface, question string) (Message, bool) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Message{}, false
	}
	history := conv.Messages()
	conv.Append(Message{Role: RoleUser, Text: question})
	answer := t.Answer(ctx, history, s, question)
	conv.Append(answer)
	return answer, true
}

func failure(err error) Message {
	return Message{Role: RoleModel, Text: "Erreur: " + ErrorText(err), Failed: true}
}

// ErrorText turns a completion or document error into a short French
// explanation.
func ErrorText(err error) string {
	var rl *llm.ErrRateLimit
	var unavail *llm.ErrProviderUnavailable
	var invalid *llm.ErrInvalidResponse
	var maxTok *llm.ErrMaxTokensExceeded
	switch {
	case errors.Is(err, document.ErrNoExtractableText):
		return "ce PDF semble être une image ou un scan, l'IA ne peut pas lire son contenu."
	case errors.Is(err, context.DeadlineExceeded):
		return "l'IA a mis trop de temps à répondre."
	case errors.As(err, &rl):
		return "trop de requêtes, réessaie dans un instant."
	case errors.As(err, &unavail):
		return "impossible de contacter l'IA."
	case errors.As(err, &invalid):
		return "réponse de l'IA illisible."
	case errors.As(err, &maxTok):
		return "réponse trop longue, reformule ta question."
	}
	return err.Error()
}

// toLLM converts the transcript to provider messages. Leading model
// messages (greetings) and failed exchanges are dropped, and only the
// newest historyLimit messages are kept.
func toLLM(history []Message) []llm.Message {
	var out []llm.Message
	for _, m := range history {
		if m.Failed {
			// Drop the unanswered question too.
			if n := len(out); n > 0 && out[n-1].Role == llm.RoleUser {
				out = out[:n-1]
			}
			continue
		}
		if len(out) == 0 && m.Role != RoleUser {
			continue
		}
		role := llm.RoleUser
		if m.Role == RoleModel {
			role = llm.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: m.Text})
	}
	if len(out) > historyLimit {
		out = out[len(out)-historyLimit:]
		for len(out) > 0 && out[0].Role != llm.RoleUser {
			out = out[1:]
		}
	}
	return out
}
