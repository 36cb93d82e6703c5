// Package model 定义了与数据库表对应的数据结构
package model

import (
	"time"
)

// 分析结论常量
const (
	VerdictReal      = "real"      // 可信
	VerdictFake      = "fake"      // 虚假
	VerdictUncertain = "uncertain" // 不确定
)

// Analysis 分析记录模型
// 对应数据库表 analysis_history
// 每次成功或降级的分析调用写入一条，写入后不再修改
type Analysis struct {
	// ID 记录唯一标识，自增主键
	ID int64 `gorm:"primaryKey" json:"id"`

	// UserID 所属用户ID
	// 使用指针类型表示可以为 NULL：匿名分析不落库，
	// 但兜底路径可能以匿名身份尽力写入一条
	UserID *int64 `gorm:"index" json:"user_id"`

	// Content 用户提交的原始文本
	Content string `gorm:"type:text;not null" json:"content"`

	// AnalysisData 归一化后的结论记录（JSON 序列化文本）
	// 包含 verdict/score/confidence/summary/reasons 以及原始模型响应
	AnalysisData string `gorm:"type:text" json:"analysis_data"`

	// CredibilityScore 可信度评分，0-100
	CredibilityScore int `gorm:"default:0" json:"credibility_score"`

	// Result 结论标签：real / fake / uncertain
	Result string `gorm:"size:20;default:uncertain;index" json:"result"`

	// CreatedAt 创建时间
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 指定表名
func (Analysis) TableName() string {
	return "analysis_history"
}
