// Package service 提供业务逻辑层的实现
// 服务层封装具体的业务逻辑，协调 Repository 和 Cache
package service

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Verdict 归一化后的结论记录
// 模型输出不保证遵守要求的 JSON 格式，所有字段都经过归一化：
// verdict 一律小写，score 钳制在 [0,100]
type Verdict struct {
	Verdict    string      `json:"verdict"`              // 结论：real / fake / uncertain
	Score      int         `json:"score"`                // 可信度评分 0-100
	Confidence string      `json:"confidence"`           // 置信度描述
	Summary    string      `json:"summary"`              // 摘要
	Reasons    []string    `json:"reasons"`              // 依据列表
	RawModel   interface{} `json:"_raw_model,omitempty"` // 原始模型响应，仅用于排查
}

// 归一化用到的正则，启动时编译一次
var (
	// 贪婪匹配最外层大括号：第一个 { 到最后一个 }
	jsonBlobRe = regexp.MustCompile(`(?s)\{.*\}`)

	verdictRe  = regexp.MustCompile(`(?i)verdict\s*[:=]\s*"?([a-zA-Z0-9 _-]+)"?`)
	confNumRe  = regexp.MustCompile(`(?i)confidence\s*[:=]\s*"?([0-9]{1,3})\s*%?"?`)
	confWordRe = regexp.MustCompile(`(?i)confidence\s*[:=]\s*"?(high|medium|low)"?`)
	summaryRe  = regexp.MustCompile(`(?i)(?:explanation|summary|analysis)\s*[:=]\s*(.+)$`)

	// 依据段落：reasons/evidence/because/why 之后的所有内容
	reasonSectionRe = regexp.MustCompile(`(?is)(?:reasons|evidence|because|why)[:\-\s]*(.*)`)
	reasonSplitRe   = regexp.MustCompile("[\r\n;•\\-–]+")

	// JSON 分支里从 confidence 字符串提取评分：前 1-3 位数字
	shortDigitRe = regexp.MustCompile(`[0-9]{1,3}`)
	// 启发式分支的评分兜底：任意数字串
	anyDigitRe = regexp.MustCompile(`[0-9]+`)
)

// Normalize 把模型的原始输出归一化为固定的结论记录
// 输出可能是规范 JSON、夹在文字里的 JSON、key: value 格式的松散文本，
// 或者纯散文。按优先级依次尝试，第一个命中的分支生效，永不失败：
//  1. 空输入 → 固定的不确定记录（summary 为空）
//  2. 文本中的 JSON 对象 → 按字段提取，解析失败则继续
//  3. key: value 启发式提取 → 命中任一字段则用默认值补齐其余
//  4. 兜底 → 整段文本作为 summary 的不确定记录
func Normalize(text string) *Verdict {
	if text == "" {
		return &Verdict{
			Verdict:    "uncertain",
			Score:      50,
			Confidence: "Medium",
			Summary:    "",
			Reasons:    []string{},
		}
	}

	raw := strings.TrimSpace(text)

	if v, ok := parseJSONBlob(raw); ok {
		return v
	}

	if v, ok := parseLabeledText(raw); ok {
		return v
	}

	// 什么都没提取到：整段文本作为 summary 返回
	return &Verdict{
		Verdict:    "uncertain",
		Score:      50,
		Confidence: "Medium",
		Summary:    raw,
		Reasons:    []string{},
	}
}

// parseJSONBlob 尝试从文本中提取并解析 JSON 对象
// 返回:
//   - *Verdict: 归一化结果
//   - bool: 是否命中（false 表示没有 JSON 或解析失败，继续下一分支）
func parseJSONBlob(raw string) (*Verdict, bool) {
	blob := jsonBlobRe.FindString(raw)
	if blob == "" {
		return nil, false
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(blob), &parsed); err != nil {
		// 解析失败不算错误，落到启发式分支
		return nil, false
	}

	verdict := stringOf(parsed["verdict"])
	if verdict == "" {
		verdict = stringOf(parsed["result"])
	}
	if verdict == "" {
		verdict = "uncertain"
	}

	score := 50
	if n, ok := parsed["score"].(float64); ok {
		score = int(math.Round(n))
	} else if s, ok := parsed["confidence"].(string); ok {
		// score 缺失时从字符串型 confidence 里取前 1-3 位数字
		if m := shortDigitRe.FindString(s); m != "" {
			n, _ := strconv.Atoi(m)
			score = n
		}
	}

	confidence := stringOf(parsed["confidence"])
	if confidence == "" {
		confidence = confidenceFromScore(score)
	}

	summary := stringOf(parsed["summary"])
	if summary == "" {
		summary = stringOf(parsed["explanation"])
	}
	if summary == "" {
		summary = stringOf(parsed["message"])
	}

	reasons := []string{}
	switch r := parsed["reasons"].(type) {
	case []interface{}:
		for _, item := range r {
			reasons = append(reasons, stringOf(item))
		}
	case nil:
	case string:
		if r != "" {
			reasons = []string{r}
		}
	case bool:
		if r {
			reasons = []string{stringOf(r)}
		}
	case float64:
		if r != 0 {
			reasons = []string{stringOf(r)}
		}
	default:
		// 其它标量包装成单元素列表
		reasons = []string{stringOf(r)}
	}

	return &Verdict{
		Verdict:    strings.ToLower(verdict),
		Score:      clampScore(score),
		Confidence: confidence,
		Summary:    summary,
		Reasons:    reasons,
	}, true
}

// parseLabeledText 对松散的 key: value 文本做启发式提取
// 先把非空行用 " | " 连成一行再匹配；verdict/score/confidence/summary
// 任一字段命中即生效，缺失的字段用默认值补齐
// 返回:
//   - *Verdict: 归一化结果
//   - bool: 是否命中（四个字段都没提取到则为 false）
func parseLabeledText(raw string) (*Verdict, bool) {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	var nonEmpty []string
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			nonEmpty = append(nonEmpty, trimmed)
		}
	}
	joined := strings.Join(nonEmpty, " | ")

	var verdict, confidence, summary string
	score := -1 // -1 表示未提取到数字评分

	if m := verdictRe.FindStringSubmatch(joined); m != nil {
		verdict = strings.ToLower(strings.TrimSpace(m[1]))
	}
	if m := confNumRe.FindStringSubmatch(joined); m != nil {
		n, _ := strconv.Atoi(m[1])
		score = n
		confidence = fmt.Sprintf("%d%%", n)
	} else if m := confWordRe.FindStringSubmatch(joined); m != nil {
		// 只有置信度单词，不从这里推评分
		confidence = m[1]
	}
	if m := summaryRe.FindStringSubmatch(joined); m != nil {
		summary = strings.TrimSpace(m[1])
	}

	if verdict == "" && score < 0 && confidence == "" && summary == "" {
		return nil, false
	}

	// 补齐缺失字段
	if verdict == "" {
		verdict = "uncertain"
	}
	if score < 0 {
		if m := anyDigitRe.FindString(confidence); m != "" {
			score, _ = strconv.Atoi(m)
		} else {
			score = 50
		}
	}
	if confidence == "" {
		confidence = confidenceFromScore(score)
	}
	if summary == "" {
		summary = raw
	}

	return &Verdict{
		Verdict:    verdict,
		Score:      clampScore(score),
		Confidence: confidence,
		Summary:    summary,
		Reasons:    extractReasons(raw),
	}, true
}

// extractReasons 从原始文本中提取依据列表
// 找到 reasons/evidence/because/why 引出的段落，
// 按换行/分号/项目符号/连接号切分，去空白，最多保留 10 条
func extractReasons(raw string) []string {
	m := reasonSectionRe.FindStringSubmatch(raw)
	if m == nil {
		return []string{}
	}

	parts := reasonSplitRe.Split(m[1], -1)
	reasons := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			reasons = append(reasons, trimmed)
		}
		if len(reasons) >= 10 {
			break
		}
	}
	return reasons
}

// confidenceFromScore 按评分推导置信度标签
// 阈值：≥70 High，≥40 Medium，其余 Low
func confidenceFromScore(score int) string {
	switch {
	case score >= 70:
		return "High"
	case score >= 40:
		return "Medium"
	default:
		return "Low"
	}
}

// clampScore 把评分钳制在 [0,100]
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// stringOf 把 JSON 解码出来的任意值转成字符串
// nil 和空字符串都返回 ""，数字去掉多余的小数位
func stringOf(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprint(s)
	}
}
