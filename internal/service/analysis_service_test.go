package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coredex-server/internal/config"
	"coredex-server/internal/model"
	"coredex-server/internal/repository"
	"coredex-server/pkg/util"
)

func TestAnalyzeEmptyContent(t *testing.T) {
	t.Parallel()

	svc := NewAnalysisService(repository.NewAnalysisRepository(newTestDB(t)), NewGroqClient(&config.Config{}))

	_, err := svc.Analyze(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrContentRequired)
}

func TestAnalyzeFallback(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAnalysisRepository(db)
	// 没有配置远程服务，走兜底路径
	svc := NewAnalysisService(repo, NewGroqClient(&config.Config{}))

	user := createTestUser(t, db, "alice", "alice@example.com", model.RoleUser)

	outcome, err := svc.Analyze(context.Background(), "suspicious headline", util.Int64Ptr(user.ID))
	require.NoError(t, err)

	assert.Equal(t, SourceFallback, outcome.Source)
	assert.Equal(t, model.VerdictUncertain, outcome.Verdict.Verdict)
	assert.Equal(t, 55, outcome.Verdict.Score)
	assert.Equal(t, "Medium", outcome.Verdict.Confidence)
	assert.Equal(t, "Fallback analysis used because the AI API failed or returned an error.", outcome.Verdict.Summary)
	// 兜底记录形状固定，失败原因不出现在结果里
	assert.Empty(t, outcome.Verdict.Reasons)

	// 登录用户的兜底结果也要落库
	require.NotZero(t, outcome.RecordID)
	record, err := repo.GetByID(context.Background(), outcome.RecordID)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.NotContains(t, record.AnalysisData, "Missing GROQ config")
	assert.Contains(t, record.AnalysisData, `"reasons":[]`)
	assert.Equal(t, 55, record.CredibilityScore)
	assert.Equal(t, model.VerdictUncertain, record.Result)
	assert.Equal(t, "suspicious headline", record.Content)
}

func TestAnalyzeAnonymousNotPersisted(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAnalysisRepository(db)
	svc := NewAnalysisService(repo, NewGroqClient(&config.Config{}))

	outcome, err := svc.Analyze(context.Background(), "anonymous claim", nil)
	require.NoError(t, err)

	assert.Zero(t, outcome.RecordID)
	count, err := repo.CountAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAnalyzeRemoteSuccess(t *testing.T) {
	_, cfg := newGroqTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"verdict\":\"real\",\"score\":91,\"summary\":\"Consistent with known reporting\"}"}}]}`))
	})

	db := newTestDB(t)
	repo := repository.NewAnalysisRepository(db)
	svc := NewAnalysisService(repo, NewGroqClient(cfg))

	user := createTestUser(t, db, "bob", "bob@example.com", model.RoleUser)

	outcome, err := svc.Analyze(context.Background(), "breaking news text", util.Int64Ptr(user.ID))
	require.NoError(t, err)

	assert.Equal(t, SourceGroq, outcome.Source)
	assert.Equal(t, model.VerdictReal, outcome.Verdict.Verdict)
	assert.Equal(t, 91, outcome.Verdict.Score)
	assert.Equal(t, "Consistent with known reporting", outcome.Verdict.Summary)
	assert.NotZero(t, outcome.RecordID)
}

func TestHistoryScoping(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAnalysisRepository(db)
	svc := NewAnalysisService(repo, NewGroqClient(&config.Config{}))
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", "alice@example.com", model.RoleUser)
	bob := createTestUser(t, db, "bob", "bob@example.com", model.RoleUser)

	for i := 0; i < 3; i++ {
		_, err := svc.Analyze(ctx, "claim by alice", util.Int64Ptr(alice.ID))
		require.NoError(t, err)
	}
	_, err := svc.Analyze(ctx, "claim by bob", util.Int64Ptr(bob.ID))
	require.NoError(t, err)

	// 登录用户只看到自己的记录
	items, err := svc.History(ctx, util.Int64Ptr(alice.ID), 0)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	// limit 生效
	items, err = svc.History(ctx, util.Int64Ptr(alice.ID), 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	// 超出上限的 limit 收敛到 1000，不会再截断
	items, err = svc.History(ctx, util.Int64Ptr(alice.ID), 5000)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	// 负数收敛到 1
	items, err = svc.History(ctx, util.Int64Ptr(alice.ID), -5)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	// 匿名请求看到全部最近记录
	items, err = svc.History(ctx, nil, 0)
	require.NoError(t, err)
	assert.Len(t, items, 4)
}

func TestClampHistoryLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		limit    int
		fallback int
		want     int
	}{
		{"未传取默认", 0, historyLimitAuthed, 500},
		{"负数收敛到 1", -5, historyLimitAuthed, 1},
		{"超上限收敛到 1000", 5000, historyLimitAnon, 1000},
		{"范围内原样保留", 42, historyLimitAnon, 42},
		{"匿名默认", 0, historyLimitAnon, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampHistoryLimit(tt.limit, tt.fallback))
		})
	}
}

func TestDeleteOwnership(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAnalysisRepository(db)
	svc := NewAnalysisService(repo, NewGroqClient(&config.Config{}))
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", "alice@example.com", model.RoleUser)
	bob := createTestUser(t, db, "bob", "bob@example.com", model.RoleUser)

	outcome, err := svc.Analyze(ctx, "alice's claim", util.Int64Ptr(alice.ID))
	require.NoError(t, err)

	// 非属主不能删
	err = svc.Delete(ctx, outcome.RecordID, bob.ID, false)
	assert.ErrorIs(t, err, ErrNotRecordOwner)

	// 管理员可以删任何记录
	require.NoError(t, svc.Delete(ctx, outcome.RecordID, bob.ID, true))

	// 已删除的记录再删报不存在
	err = svc.Delete(ctx, outcome.RecordID, alice.ID, false)
	assert.ErrorIs(t, err, ErrAnalysisNotFound)
}
