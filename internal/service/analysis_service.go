package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"coredex-server/internal/model"
	"coredex-server/internal/repository"
	"coredex-server/pkg/util"
)

// 业务错误定义
var (
	ErrContentRequired  = errors.New("分析内容不能为空")
	ErrAnalysisNotFound = errors.New("分析记录不存在")
	ErrNotRecordOwner   = errors.New("无权操作该分析记录")
)

// 远端失败时的兜底结果
const (
	// 兜底评分
	fallbackScore = 55
	// 兜底说明，前端按原文展示
	fallbackSummary = "Fallback analysis used because the AI API failed or returned an error."

	// 结果来源标记
	SourceGroq     = "groq"
	SourceFallback = "fallback"
)

// 历史查询条数限制
const (
	historyLimitMax      = 1000
	historyLimitAuthed   = 500
	historyLimitAnon = 200
)

// AnalysisService 内容可信度分析服务
type AnalysisService struct {
	analysisRepo *repository.AnalysisRepository
	groqClient   *GroqClient
}

// NewAnalysisService 创建 AnalysisService 实例
func NewAnalysisService(analysisRepo *repository.AnalysisRepository, groqClient *GroqClient) *AnalysisService {
	return &AnalysisService{
		analysisRepo: analysisRepo,
		groqClient:   groqClient,
	}
}

// AnalyzeOutcome 一次分析的完整结果
type AnalyzeOutcome struct {
	Verdict  *Verdict // 规范化后的判定
	Source   string   // groq 或 fallback
	RecordID int64    // 落库后的记录 ID，未落库时为 0
}

// Analyze 对内容做可信度分析
// 远端调用失败时落到固定的兜底判定，分析本身永不报错；
// 登录用户的结果写入历史，匿名请求只返回不落库
// 参数:
//   - ctx: 上下文
//   - content: 待分析内容
//   - userID: 用户 ID，匿名时为 nil
//
// 返回:
//   - *AnalyzeOutcome: 分析结果
//   - error: 内容为空时返回错误
func (s *AnalysisService) Analyze(ctx context.Context, content string, userID *int64) (*AnalyzeOutcome, error) {
	if content == "" {
		return nil, ErrContentRequired
	}

	var verdict *Verdict
	source := SourceGroq

	result := s.groqClient.Score(ctx, content)
	if result.OK {
		verdict = Normalize(result.Text)
	} else {
		// 失败原因只进日志，兜底记录是固定形状
		log.Printf("[WARN] analysis: remote scoring failed, using fallback: %s (content: %q)",
			result.Err, util.TruncateString(content, 120))
		verdict = &Verdict{
			Verdict:    model.VerdictUncertain,
			Score:      fallbackScore,
			Confidence: "Medium",
			Summary:    fallbackSummary,
			Reasons:    []string{},
		}
		source = SourceFallback
	}

	outcome := &AnalyzeOutcome{Verdict: verdict, Source: source}

	if userID != nil {
		data, err := json.Marshal(verdict)
		if err != nil {
			data = []byte("{}")
		}
		record := &model.Analysis{
			UserID:           userID,
			Content:          content,
			AnalysisData:     string(data),
			CredibilityScore: verdict.Score,
			Result:           verdict.Verdict,
		}
		if err := s.analysisRepo.Create(ctx, record); err != nil {
			// 落库失败不影响返回分析结果
			log.Printf("[ERROR] analysis: failed to save history: %v", err)
		} else {
			outcome.RecordID = record.ID
		}
	}

	return outcome, nil
}

// History 查询分析历史
// 登录用户只看到自己的记录，匿名请求返回最近的公共记录；
// limit 未传时取默认值，传了就收敛到 [1, 1000]
func (s *AnalysisService) History(ctx context.Context, userID *int64, limit int) ([]model.Analysis, error) {
	if userID != nil {
		limit = clampHistoryLimit(limit, historyLimitAuthed)
		return s.analysisRepo.ListByUser(ctx, *userID, limit)
	}
	limit = clampHistoryLimit(limit, historyLimitAnon)
	return s.analysisRepo.ListRecent(ctx, limit)
}

// clampHistoryLimit 0 表示未传，取默认值；否则收敛到 [1, historyLimitMax]
func clampHistoryLimit(limit, fallback int) int {
	if limit == 0 {
		return fallback
	}
	if limit < 1 {
		return 1
	}
	if limit > historyLimitMax {
		return historyLimitMax
	}
	return limit
}

// Get 按 ID 查询单条分析记录
func (s *AnalysisService) Get(ctx context.Context, id int64) (*model.Analysis, error) {
	record, err := s.analysisRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrAnalysisNotFound
	}
	return record, nil
}

// Delete 删除分析记录
// 只有记录属主或管理员可以删除
func (s *AnalysisService) Delete(ctx context.Context, id int64, userID int64, isAdmin bool) error {
	record, err := s.analysisRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrAnalysisNotFound
	}
	if !isAdmin && (record.UserID == nil || *record.UserID != userID) {
		return ErrNotRecordOwner
	}
	affected, err := s.analysisRepo.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAnalysisNotFound
	}
	return nil
}

// CleanupOlderThan 清理早于指定时间的历史记录，返回删除条数
func (s *AnalysisService) CleanupOlderThan(ctx context.Context, before time.Time) (int64, error) {
	return s.analysisRepo.DeleteOlderThan(ctx, before)
}
