package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"coredex-server/internal/model"
	"coredex-server/internal/repository"
	"coredex-server/pkg/util"
)

// 业务错误定义
var (
	ErrMessageRequired = errors.New("消息内容不能为空")
)

// 聊天提示词模板，给模型限定助手角色和回复长度
const chatPromptTemplate = `You are COREDEX AI, an expert in news analysis and fact-checking. Respond helpfully to this user query about news, fake news detection, or related topics: "%s"

Please provide a concise, informative response. If the query is about analyzing specific news content, suggest using the analysis tool. Keep responses under 300 words.`

// 远端失败时的固定回复，前端按原文展示
const (
	chatUnavailableError = "Chat service temporarily unavailable"
	chatUnavailableReply = "Sorry, I'm having trouble connecting right now. Please try again later."
	chatEmptyReply       = "I apologize, but I couldn't generate a response."
)

// 匿名聊天历史的返回条数
const chatPublicHistoryLimit = 50

// ChatService 对话助手服务
type ChatService struct {
	chatRepo   *repository.ChatRepository
	groqClient *GroqClient
}

// NewChatService 创建 ChatService 实例
func NewChatService(chatRepo *repository.ChatRepository, groqClient *GroqClient) *ChatService {
	return &ChatService{
		chatRepo:   chatRepo,
		groqClient: groqClient,
	}
}

// ChatReply 一次对话的结果
// 远端不可用时 Success 为 false 并携带固定兜底回复，HTTP 层仍按 200 返回
type ChatReply struct {
	Success   bool   `json:"success"`
	Response  string `json:"response"`
	Source    string `json:"source,omitempty"`
	Error     string `json:"error,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatMessage 会话中的单条消息，user 和 bot 交替出现
type ChatMessage struct {
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSessionSummary 按会话分组的历史
type ChatSessionSummary struct {
	SessionID string        `json:"session_id"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
}

// Chat 处理一次对话
// 消息包进固定的助手提示词后发给远程模型，模型不可用时
// 返回固定兜底回复（Success=false）而不是错误；
// 对话轮次总是落库，匿名用户的 user_id 记为空
// 参数:
//   - ctx: 上下文
//   - message: 用户消息
//   - sessionID: 会话 ID，为空时生成新会话
//   - userID: 用户 ID，匿名时为 nil
func (s *ChatService) Chat(ctx context.Context, message, sessionID string, userID *int64) (*ChatReply, error) {
	if message == "" {
		return nil, ErrMessageRequired
	}

	if sessionID == "" {
		sessionID = util.GenerateConversationID()
	}

	prompt := fmt.Sprintf(chatPromptTemplate, message)
	result := s.groqClient.Score(ctx, prompt)
	if !result.OK {
		log.Printf("[WARN] chat: remote call failed: %s (message: %q)",
			result.Err, util.TruncateString(message, 120))
		return &ChatReply{
			Success:   false,
			Error:     chatUnavailableError,
			Response:  chatUnavailableReply,
			SessionID: sessionID,
		}, nil
	}

	response := result.Text
	if response == "" {
		response = chatEmptyReply
	}

	turn := &model.ChatTurn{
		UserID:      userID,
		SessionID:   sessionID,
		UserMessage: message,
		AIResponse:  response,
	}
	if err := s.chatRepo.Create(ctx, turn); err != nil {
		// 落库失败不影响返回回复
		log.Printf("[ERROR] chat: failed to save turn: %v", err)
	}

	return &ChatReply{
		Success:   true,
		Response:  response,
		Source:    SourceGroq,
		SessionID: sessionID,
	}, nil
}

// SessionHistory 查询登录用户的聊天历史，按会话分组、新会话在前
func (s *ChatService) SessionHistory(ctx context.Context, userID int64) ([]*ChatSessionSummary, error) {
	turns, err := s.chatRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 记录按 created_at 倒序返回，这里保持首次出现的会话顺序
	sessions := make([]*ChatSessionSummary, 0)
	index := make(map[string]*ChatSessionSummary)
	for _, turn := range turns {
		session, ok := index[turn.SessionID]
		if !ok {
			session = &ChatSessionSummary{
				SessionID: turn.SessionID,
				Messages:  make([]ChatMessage, 0, 2),
				CreatedAt: turn.CreatedAt,
			}
			index[turn.SessionID] = session
			sessions = append(sessions, session)
		}
		session.Messages = append(session.Messages,
			ChatMessage{Sender: "user", Message: turn.UserMessage, Timestamp: turn.CreatedAt},
			ChatMessage{Sender: "bot", Message: turn.AIResponse, Timestamp: turn.CreatedAt},
		)
	}
	return sessions, nil
}

// PublicHistory 查询匿名可见的最近聊天记录
func (s *ChatService) PublicHistory(ctx context.Context) ([]model.ChatTurn, error) {
	return s.chatRepo.ListRecent(ctx, chatPublicHistoryLimit)
}

// SessionTranscript 查询指定会话的完整对话，按时间正序展开成消息列表
func (s *ChatService) SessionTranscript(ctx context.Context, userID int64, sessionID string) ([]ChatMessage, error) {
	turns, err := s.chatRepo.ListBySession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	messages := make([]ChatMessage, 0, len(turns)*2)
	for _, turn := range turns {
		messages = append(messages,
			ChatMessage{Sender: "user", Message: turn.UserMessage, Timestamp: turn.CreatedAt},
			ChatMessage{Sender: "bot", Message: turn.AIResponse, Timestamp: turn.CreatedAt},
		)
	}
	return messages, nil
}

// DeleteSession 删除指定会话的聊天记录，返回删除条数
func (s *ChatService) DeleteSession(ctx context.Context, userID int64, sessionID string) (int64, error) {
	return s.chatRepo.DeleteBySession(ctx, userID, sessionID)
}

// ClearHistory 清空用户的全部聊天记录，返回删除条数
func (s *ChatService) ClearHistory(ctx context.Context, userID int64) (int64, error) {
	return s.chatRepo.DeleteByUserID(ctx, userID)
}
