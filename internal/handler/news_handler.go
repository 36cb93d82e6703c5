package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"coredex-server/internal/middleware"
	"coredex-server/internal/service"
	"coredex-server/pkg/response"
	"coredex-server/pkg/util"
)

// NewsHandler 内容分析与对话请求处理器
type NewsHandler struct {
	analysisService *service.AnalysisService
	chatService     *service.ChatService
}

// NewNewsHandler 创建 NewsHandler 实例
func NewNewsHandler(analysisService *service.AnalysisService, chatService *service.ChatService) *NewsHandler {
	return &NewsHandler{
		analysisService: analysisService,
		chatService:     chatService,
	}
}

// analyzeRequest 分析请求参数
type analyzeRequest struct {
	Content string `json:"content" binding:"required"`
}

// chatMessageRequest 对话请求参数
type chatMessageRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
}

// optionalUserID 取出可选的调用方用户 ID，匿名时返回 nil
func optionalUserID(c *gin.Context) *int64 {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return nil
	}
	return util.Int64Ptr(identity.UserID)
}

// Analyze 对内容做可信度分析
// 远端模型失败时返回兜底判定，接口本身不报错
// @Summary 内容分析
// @Tags 分析
// @Router /api/news/analyze [post]
func (h *NewsHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	outcome, err := h.analysisService.Analyze(c.Request.Context(), req.Content, optionalUserID(c))
	if err != nil {
		switch err {
		case service.ErrContentRequired:
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, "分析失败")
		}
		return
	}

	payload := gin.H{
		"source":   outcome.Source,
		"analysis": outcome.Verdict,
	}
	if outcome.RecordID != 0 {
		payload["id"] = outcome.RecordID
	}
	response.OK(c, payload)
}

// History 查询分析历史
// 登录用户只看到自己的记录，匿名请求返回最近的公共记录
// @Summary 分析历史
// @Tags 分析
// @Router /api/news/history [get]
func (h *NewsHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	items, err := h.analysisService.History(c.Request.Context(), optionalUserID(c), limit)
	if err != nil {
		response.InternalError(c, "查询失败")
		return
	}

	response.OK(c, gin.H{"history": items})
}

// HistoryItem 按 ID 查询单条分析记录
// @Summary 分析记录详情
// @Tags 分析
// @Router /api/news/history/{id} [get]
func (h *NewsHandler) HistoryItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的记录 ID")
		return
	}

	item, err := h.analysisService.Get(c.Request.Context(), id)
	if err != nil {
		switch err {
		case service.ErrAnalysisNotFound:
			response.NotFound(c, err.Error())
		default:
			response.InternalError(c, "查询失败")
		}
		return
	}

	response.OK(c, gin.H{"item": item})
}

// DeleteHistoryItem 删除分析记录
// 只有记录属主或管理员可以删除
// @Summary 删除分析记录
// @Tags 分析
// @Router /api/news/history/{id} [delete]
func (h *NewsHandler) DeleteHistoryItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的记录 ID")
		return
	}

	identity, _ := middleware.GetIdentity(c)

	if err := h.analysisService.Delete(c.Request.Context(), id, identity.UserID, identity.IsAdmin()); err != nil {
		switch err {
		case service.ErrAnalysisNotFound:
			response.NotFound(c, err.Error())
		case service.ErrNotRecordOwner:
			response.Forbidden(c, err.Error())
		default:
			response.InternalError(c, "删除失败")
		}
		return
	}

	response.OK(c, gin.H{})
}

// Chat 处理一次对话
// 远端模型不可用时返回固定兜底回复（success=false），HTTP 状态仍为 200
// @Summary 对话
// @Tags 对话
// @Router /api/news/chat [post]
func (h *NewsHandler) Chat(c *gin.Context) {
	var req chatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	reply, err := h.chatService.Chat(c.Request.Context(), req.Message, req.SessionID, optionalUserID(c))
	if err != nil {
		switch err {
		case service.ErrMessageRequired:
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, "对话失败")
		}
		return
	}

	// ChatReply 自带 success 标记，这里直接序列化
	c.JSON(200, reply)
}

// ChatHistory 查询聊天历史
// 登录用户按会话分组返回，匿名请求返回最近的公共记录
// @Summary 聊天历史
// @Tags 对话
// @Router /api/news/chat/history [get]
func (h *NewsHandler) ChatHistory(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if ok {
		sessions, err := h.chatService.SessionHistory(c.Request.Context(), identity.UserID)
		if err != nil {
			response.InternalError(c, "查询失败")
			return
		}
		response.OK(c, gin.H{"history": sessions})
		return
	}

	turns, err := h.chatService.PublicHistory(c.Request.Context())
	if err != nil {
		response.InternalError(c, "查询失败")
		return
	}
	response.OK(c, gin.H{"history": turns})
}

// ChatSession 查询指定会话的完整对话
// @Summary 会话详情
// @Tags 对话
// @Router /api/news/chat/history/{sessionId} [get]
func (h *NewsHandler) ChatSession(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	messages, err := h.chatService.SessionTranscript(c.Request.Context(), identity.UserID, c.Param("sessionId"))
	if err != nil {
		response.InternalError(c, "查询失败")
		return
	}

	response.OK(c, gin.H{"messages": messages})
}

// DeleteChatSession 删除指定会话的聊天记录
// @Summary 删除会话
// @Tags 对话
// @Router /api/news/chat/history/{sessionId} [delete]
func (h *NewsHandler) DeleteChatSession(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	deleted, err := h.chatService.DeleteSession(c.Request.Context(), identity.UserID, c.Param("sessionId"))
	if err != nil {
		response.InternalError(c, "删除失败")
		return
	}

	response.OK(c, gin.H{"deleted": deleted})
}

// ClearChatHistory 清空当前用户的全部聊天记录
// @Summary 清空聊天历史
// @Tags 对话
// @Router /api/news/chat/history [delete]
func (h *NewsHandler) ClearChatHistory(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	deleted, err := h.chatService.ClearHistory(c.Request.Context(), identity.UserID)
	if err != nil {
		response.InternalError(c, "删除失败")
		return
	}

	response.OK(c, gin.H{"deleted": deleted})
}
