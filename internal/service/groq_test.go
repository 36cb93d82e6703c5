package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coredex-server/internal/config"
)

// newGroqTestServer 启动一个模拟的 chat completions 端点
func newGroqTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *config.Config) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.Groq.APIKey = "test-key"
	cfg.Groq.URL = server.URL
	cfg.Groq.Model = "test-model"
	return server, cfg
}

func TestGroqCallSuccess(t *testing.T) {
	var captured chatRequest
	_, cfg := newGroqTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"verdict\":\"real\",\"score\":91}"}}]}`))
	})

	client := NewGroqClient(cfg)
	result := client.Score(context.Background(), "some claim")

	require.True(t, result.OK)
	assert.Equal(t, `{"verdict":"real","score":91}`, result.Text)

	// 请求参数固定
	assert.Equal(t, "test-model", captured.Model)
	assert.InDelta(t, 0.12, captured.Temperature, 0.0001)
	assert.Equal(t, 900, captured.MaxTokens)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "some claim", captured.Messages[1].Content)
}

func TestGroqCallMissingConfig(t *testing.T) {
	t.Parallel()

	client := NewGroqClient(&config.Config{})
	result := client.Score(context.Background(), "anything")

	require.False(t, result.OK)
	assert.Equal(t, "Missing GROQ config", result.Err)
}

func TestGroqCallServerError(t *testing.T) {
	_, cfg := newGroqTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	})

	client := NewGroqClient(cfg)
	result := client.Score(context.Background(), "some claim")

	require.False(t, result.OK)
	assert.Contains(t, result.Err, "429")
}

func TestGroqCallLegacyTextField(t *testing.T) {
	_, cfg := newGroqTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"text":"plain completion"}]}`))
	})

	client := NewGroqClient(cfg)
	result := client.Score(context.Background(), "some claim")

	require.True(t, result.OK)
	assert.Equal(t, "plain completion", result.Text)
}

func TestGroqCallUnknownShape(t *testing.T) {
	_, cfg := newGroqTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"reply":"unexpected format"}`))
	})

	client := NewGroqClient(cfg)
	result := client.Score(context.Background(), "some claim")

	// 结构不认识但请求成功：整个响应体作为文本交给归一化处理
	require.True(t, result.OK)
	assert.JSONEq(t, `{"reply":"unexpected format"}`, result.Text)
}
