// Package service 提供业务逻辑层的实现
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"coredex-server/internal/config"
)

// 远程评分调用的固定参数
const (
	// 要求模型按固定 JSON 格式输出的系统指令
	scoreSystemPrompt = "You are a meticulous fact-checker. Prefer returning a JSON object with fields: verdict, score, confidence, summary, reasons (array). If returning non-JSON, produce a concise analysis paragraph."

	// 低采样温度，保证输出稳定
	scoreTemperature = 0.12
	// 输出长度上限
	scoreMaxTokens = 900
)

// GroqClient 封装对远程评分服务（OpenAI 兼容的 chat completions 端点）的调用
// 所有失败（配置缺失、网络错误、非 200 状态、响应解析失败）
// 都转成 GroqResult 的失败分支返回，绝不向上抛出
type GroqClient struct {
	config *config.Config
	client *http.Client
}

// NewGroqClient 创建 GroqClient 实例
func NewGroqClient(cfg *config.Config) *GroqClient {
	return &GroqClient{
		config: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second, // 设置超时
		},
	}
}

// GroqResult 远程调用的结果
// OK 为 true 时 Text 是模型回复的原文，Raw 是完整响应；
// OK 为 false 时 Err 描述失败原因
type GroqResult struct {
	OK   bool        // 是否成功
	Text string      // 模型回复文本（喂给 Normalize）
	Raw  interface{} // 原始响应，用于排查
	Err  string      // 失败描述
}

// chatRequest OpenAI 兼容的请求结构
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse OpenAI 兼容的响应结构
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
}

// Call 把内容发给远程模型并返回结果
// 参数:
//   - ctx: 上下文
//   - systemPrompt: 系统指令
//   - content: 用户内容
//
// 返回:
//   - *GroqResult: 成功或失败的标记结果，永不为 nil
func (c *GroqClient) Call(ctx context.Context, systemPrompt, content string) *GroqResult {
	// 配置缺失是正常的失败分支，不发起网络调用
	if c.config.Groq.APIKey == "" || c.config.Groq.URL == "" {
		log.Println("[WARN] groq: missing API config, skipping remote call")
		return &GroqResult{OK: false, Err: "Missing GROQ config"}
	}

	payload := chatRequest{
		Model: c.config.Groq.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: content},
		},
		Temperature: scoreTemperature,
		MaxTokens:   scoreMaxTokens,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return &GroqResult{OK: false, Err: err.Error()}
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.config.Groq.URL, bytes.NewBuffer(jsonData))
	if err != nil {
		return &GroqResult{OK: false, Err: err.Error()}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.Groq.APIKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return &GroqResult{OK: false, Err: fmt.Sprintf("failed to call groq: %v", err)}
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &GroqResult{OK: false, Err: fmt.Sprintf("groq returned status %d: %s", resp.StatusCode, string(bodyBytes))}
	}

	// 尝试按 chat completions 格式解析
	var parsed chatResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err == nil && len(parsed.Choices) > 0 {
		text := parsed.Choices[0].Message.Content
		if text == "" {
			text = parsed.Choices[0].Text
		}
		var raw interface{}
		_ = json.Unmarshal(bodyBytes, &raw)
		return &GroqResult{OK: true, Text: text, Raw: raw}
	}

	// 结构不认识但请求成功：整个响应体作为文本返回，
	// 交给 Normalize 的启发式分支处理
	var raw interface{}
	if err := json.Unmarshal(bodyBytes, &raw); err == nil {
		return &GroqResult{OK: true, Text: string(bodyBytes), Raw: raw}
	}
	return &GroqResult{OK: true, Text: string(bodyBytes), Raw: string(bodyBytes)}
}

// Score 请求远程模型对内容做可信度评分
// 系统指令固定为要求 JSON 格式的事实核查提示词
func (c *GroqClient) Score(ctx context.Context, content string) *GroqResult {
	return c.Call(ctx, scoreSystemPrompt, content)
}
