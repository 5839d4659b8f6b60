package extern

import (
	"fmt"
	"time"

	"github.com/qwas982/svm/value"
)

// AiCallerTimeout is the AI backend call wall-clock budget (spec.md §6).
const AiCallerTimeout = 300 * time.Second

// AIBackend is the pluggable AI call surface behind AiCaller. HTTPBackend
// talks to an OpenAI/Claude/DeepSeek-compatible chat-completions endpoint;
// MockBackend returns canned replies for tests.
type AIBackend interface {
	Complete(prompt string) (string, error)
}

// AiCaller calls an AI backend with a popped prompt and reports success.
type AiCaller struct {
	Backend AIBackend
}

func NewAiCaller(backend AIBackend) *AiCaller {
	return &AiCaller{Backend: backend}
}

func (a *AiCaller) Name() string { return "AiCaller" }

// Invoke pops the prompt, calls the backend, and pushes 1 on success.
func (a *AiCaller) Invoke(pop func() (value.Value, error), push func(value.Value) error) error {
	prompt, err := pop()
	if err != nil {
		return fmt.Errorf("aicaller: %w", err)
	}

	if _, err := a.Backend.Complete(prompt.String()); err != nil {
		return fmt.Errorf("aicaller: %w", err)
	}

	if err := push(value.NewInt(1)); err != nil {
		return fmt.Errorf("aicaller: %w", err)
	}
	return nil
}
