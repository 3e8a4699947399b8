package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"history-quiz-service/internal/domain"
)

const defaultTimeout = 15 * time.Second

// Supplier requests freshly generated questions from the OpenRouter
// chat-completions API. Every failure is wrapped in a
// domain.SupplierError so callers can fall back to the local pool.
type Supplier struct {
	url    string
	apiKey string
	model  string
	client *http.Client
	log    zerolog.Logger
}

func NewSupplier(url, apiKey, model string, timeout time.Duration, log zerolog.Logger) *Supplier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Supplier{
		url:    url,
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: timeout},
		log:    log.With().Str("component", "openrouter").Logger(),
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (s *Supplier) RequestQuestion(ctx context.Context, difficulty domain.Difficulty, exclude map[string]struct{}) (domain.Question, error) {
	body, err := json.Marshal(chatRequest{
		Model:       s.model,
		Messages:    []chatMessage{{Role: "user", Content: buildPrompt(difficulty, exclude)}},
		Temperature: 0.7,
	})
	if err != nil {
		return domain.Question{}, domain.NewSupplierError(domain.SupplierInvalidPayload, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return domain.Question{}, domain.NewSupplierError(domain.SupplierNetwork, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.Question{}, domain.NewSupplierError(domain.SupplierNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Question{}, domain.NewSupplierError(domain.SupplierNetwork,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Question{}, domain.NewSupplierError(domain.SupplierNetwork, err)
	}

	var chat chatResponse
	if err := json.Unmarshal(raw, &chat); err != nil {
		return domain.Question{}, domain.NewSupplierError(domain.SupplierInvalidPayload, err)
	}
	if len(chat.Choices) == 0 {
		return domain.Question{}, domain.NewSupplierError(domain.SupplierInvalidPayload,
			fmt.Errorf("response carries no choices"))
	}

	question, err := parseQuestion(chat.Choices[0].Message.Content)
	if err != nil {
		return domain.Question{}, err
	}
	question.Difficulty = difficulty
	if err := question.Validate(); err != nil {
		return domain.Question{}, domain.NewSupplierError(domain.SupplierSchemaViolation, err)
	}

	s.log.Debug().Str("difficulty", string(difficulty)).Msg("generated question")
	return question, nil
}

func buildPrompt(difficulty domain.Difficulty, exclude map[string]struct{}) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a single %s-difficulty world history trivia question. ", difficulty)
	b.WriteString("Respond with only a JSON object shaped as ")
	b.WriteString(`{"text": string, "options": [4 strings], "correctAnswer": int}`)
	b.WriteString(" where correctAnswer is the zero-based index of the right option.")
	if len(exclude) > 0 {
		b.WriteString(" Do not repeat any of these questions:")
		for text := range exclude {
			b.WriteString(" \"")
			b.WriteString(text)
			b.WriteString("\";")
		}
	}
	return b.String()
}

// parseQuestion tolerates models that wrap the JSON in a markdown code
// fence.
func parseQuestion(content string) (domain.Question, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}
	var question domain.Question
	if err := json.Unmarshal([]byte(content), &question); err != nil {
		return domain.Question{}, domain.NewSupplierError(domain.SupplierInvalidPayload, err)
	}
	return question, nil
}
