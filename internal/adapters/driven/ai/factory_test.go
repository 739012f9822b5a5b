package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
)

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name      string
		settings  *domain.LLMSettings
		wantNil   bool
		wantModel string
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantNil:  true,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.LLMSettings{},
			wantNil:  true,
		},
		{
			name: "groq without key is not configured",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderGroq,
				Model:    "llama-3.1-8b-instant",
			},
			wantNil: true,
		},
		{
			name: "groq provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderGroq,
				APIKey:   "test-key",
				Model:    "llama-3.1-8b-instant",
			},
			wantModel: "llama-3.1-8b-instant",
		},
		{
			name: "openai provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "gpt-4o-mini",
			},
			wantModel: "gpt-4o-mini",
		},
		{
			name: "anthropic provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
				Model:    "claude-3-5-haiku-latest",
			},
			wantModel: "claude-3-5-haiku-latest",
		},
		{
			name: "gemini provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderGemini,
				APIKey:   "test-key",
				Model:    "gemini-2.0-flash",
			},
			wantModel: "gemini-2.0-flash",
		},
		{
			name: "ollama provider needs no key",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "llama3.2",
			},
			wantModel: "llama3.2",
		},
		{
			name: "unknown provider is not configured",
			settings: &domain.LLMSettings{
				Provider: "unknown",
				APIKey:   "test-key",
			},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(context.Background(), tt.settings)
			require.NoError(t, err)

			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			defer svc.Close()
			assert.Equal(t, tt.wantModel, svc.ModelName())
		})
	}
}

func TestConstructors_CoverEveryProvider(t *testing.T) {
	for _, p := range domain.AllLLMProviders() {
		_, ok := constructors[p]
		assert.True(t, ok, "no constructor for %s", p)
	}
}

func TestCreateLLMService_WrapsWithRateLimiter(t *testing.T) {
	svc, err := CreateLLMService(context.Background(), &domain.LLMSettings{
		Provider:          domain.AIProviderOllama,
		Model:             "llama3.2",
		RequestsPerMinute: 30,
	})
	require.NoError(t, err)

	limited, ok := svc.(*RateLimitedLLM)
	require.True(t, ok)
	assert.Equal(t, "llama3.2", limited.ModelName())
}

func TestCreateLLMService_NoLimiterWhenZero(t *testing.T) {
	svc, err := CreateLLMService(context.Background(), &domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		Model:    "llama3.2",
	})
	require.NoError(t, err)

	_, ok := svc.(*RateLimitedLLM)
	assert.False(t, ok)
}

func TestCreateAndValidateLLMService(t *testing.T) {
	t.Run("unconfigured returns nil", func(t *testing.T) {
		svc, err := CreateAndValidateLLMService(context.Background(), &domain.LLMSettings{})
		assert.NoError(t, err)
		assert.Nil(t, svc)
	})

	t.Run("reachable provider", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/models", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"data":[]}`))
		}))
		defer server.Close()

		svc, err := CreateAndValidateLLMService(context.Background(), &domain.LLMSettings{
			Provider: domain.AIProviderGroq,
			APIKey:   "test-key",
			BaseURL:  server.URL,
			Model:    "llama-3.1-8b-instant",
		})
		require.NoError(t, err)
		require.NotNil(t, svc)
		svc.Close()
	})

	t.Run("unreachable provider", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"bad key"}`))
		}))
		defer server.Close()

		svc, err := CreateAndValidateLLMService(context.Background(), &domain.LLMSettings{
			Provider: domain.AIProviderOpenAI,
			APIKey:   "test-key",
			BaseURL:  server.URL,
		})
		assert.Nil(t, svc)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
		assert.Contains(t, err.Error(), "status 401")
	})
}

func TestValidateLLMConfig(t *testing.T) {
	t.Run("nil settings", func(t *testing.T) {
		assert.NoError(t, ValidateLLMConfig(context.Background(), nil))
	})

	t.Run("ollama reachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/tags", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		err := ValidateLLMConfig(context.Background(), &domain.LLMSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  server.URL,
		})
		assert.NoError(t, err)
	})

	t.Run("ollama down", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		err := ValidateLLMConfig(context.Background(), &domain.LLMSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  server.URL,
		})
		assert.Error(t, err)
	})
}
