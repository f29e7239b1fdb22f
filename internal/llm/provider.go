package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/econdigest/internal/extract"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// KeyFinding generates a one-sentence key finding for a paper
	KeyFinding(ctx context.Context, req KeyFindingRequest) (*KeyFindingResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// KeyFindingRequest contains the input for one paper
type KeyFindingRequest struct {
	// Title of the paper
	Title string

	// Abstract as extracted from the source feed or listing
	Abstract string

	// Content is the full article text, if it could be fetched.
	// Empty content is fine; the prompt then relies on the abstract.
	Content string
}

// KeyFindingResponse contains the LLM's output for one paper
type KeyFindingResponse struct {
	// Finding is the one-sentence key finding
	Finding string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "",
		Timeout:   30,
		MaxTokens: 100,
	}
}

// maxPromptContentRunes caps the article excerpt included in the prompt
// so a long working paper never blows the token budget.
const maxPromptContentRunes = 2000

// BuildPrompt constructs the key-finding prompt for one paper
func BuildPrompt(req KeyFindingRequest) string {
	return fmt.Sprintf(`Based on this economics paper, provide ONE sentence (max 30 words) stating the key finding or takeaway. Be specific with numbers/percentages if available. Focus on the "so what" for policymakers.

Title: %s

Abstract: %s

Content excerpt: %s

Key finding (one sentence):`, req.Title, req.Abstract, extract.Truncate(req.Content, maxPromptContentRunes))
}
