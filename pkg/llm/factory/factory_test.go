package factory

import (
	"testing"

	"trading-chat-be/pkg/llm/ollama"
	"trading-chat-be/pkg/llm/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider(ProviderConfig{Provider: "openai", Model: "gpt-4", OpenAIAPIKey: "sk-test"})
	require.NoError(t, err)
	assert.IsType(t, &openai.OpenAIProvider{}, p)

	p, err = NewLLMProvider(ProviderConfig{Provider: "ollama", Model: "llama3"})
	require.NoError(t, err)
	require.IsType(t, &ollama.OllamaProvider{}, p)
	assert.Equal(t, "http://localhost:11434", p.(*ollama.OllamaProvider).BaseURL)
}

func TestNewLLMProviderErrors(t *testing.T) {
	_, err := NewLLMProvider(ProviderConfig{Provider: "openai"})
	assert.Error(t, err)

	_, err = NewLLMProvider(ProviderConfig{Provider: "huggingface"})
	assert.EqualError(t, err, "unsupported LLM provider: huggingface")
}
