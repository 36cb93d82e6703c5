package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmptyInput(t *testing.T) {
	t.Parallel()

	v := Normalize("")

	assert.Equal(t, "uncertain", v.Verdict)
	assert.Equal(t, 50, v.Score)
	assert.Equal(t, "Medium", v.Confidence)
	assert.Empty(t, v.Summary)
	assert.Empty(t, v.Reasons)
}

func TestNormalizeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		verdict    string
		score      int
		confidence string
		summary    string
		reasons    []string
	}{
		{
			name:       "规范的完整 JSON",
			input:      `{"verdict":"fake","score":12,"confidence":"High","summary":"Multiple fabricated claims","reasons":["no sources","implausible quotes"]}`,
			verdict:    "fake",
			score:      12,
			confidence: "High",
			summary:    "Multiple fabricated claims",
			reasons:    []string{"no sources", "implausible quotes"},
		},
		{
			name:       "大写结论转小写且超限评分钳制到 100",
			input:      `{"verdict":"REAL","score":142,"summary":"Looks legit"}`,
			verdict:    "real",
			score:      100,
			confidence: "High",
			summary:    "Looks legit",
			reasons:    []string{},
		},
		{
			name:       "负数评分钳制到 0",
			input:      `{"verdict":"fake","score":-5}`,
			verdict:    "fake",
			score:      0,
			confidence: "Low",
			reasons:    []string{},
		},
		{
			name:       "评分缺失时从字符串置信度提取数字",
			input:      `{"confidence":"87%"}`,
			verdict:    "uncertain",
			score:      87,
			confidence: "87%",
			reasons:    []string{},
		},
		{
			name:       "verdict 缺失时退回 result 字段",
			input:      `{"result":"Real","score":70}`,
			verdict:    "real",
			score:      70,
			confidence: "High",
			reasons:    []string{},
		},
		{
			name:       "summary 缺失时退回 explanation 字段",
			input:      `{"verdict":"fake","score":20,"explanation":"Fabricated story"}`,
			verdict:    "fake",
			score:      20,
			confidence: "Low",
			summary:    "Fabricated story",
			reasons:    []string{},
		},
		{
			name:       "标量 reasons 包装成单元素列表",
			input:      `{"verdict":"real","score":80,"reasons":"official data"}`,
			verdict:    "real",
			score:      80,
			confidence: "High",
			reasons:    []string{"official data"},
		},
		{
			name:       "空字符串 reasons 不包装",
			input:      `{"verdict":"real","score":80,"reasons":""}`,
			verdict:    "real",
			score:      80,
			confidence: "High",
			reasons:    []string{},
		},
		{
			name:       "false 的 reasons 不包装",
			input:      `{"verdict":"real","score":80,"reasons":false}`,
			verdict:    "real",
			score:      80,
			confidence: "High",
			reasons:    []string{},
		},
		{
			name:       "数字 0 的 reasons 不包装",
			input:      `{"verdict":"real","score":80,"reasons":0}`,
			verdict:    "real",
			score:      80,
			confidence: "High",
			reasons:    []string{},
		},
		{
			name:       "非零数字 reasons 仍然包装",
			input:      `{"verdict":"real","score":80,"reasons":3}`,
			verdict:    "real",
			score:      80,
			confidence: "High",
			reasons:    []string{"3"},
		},
		{
			name:       "JSON 夹在文字里也能提取",
			input:      `Here is my result: {"verdict":"fake","score":12,"reasons":["no sources"]} hope it helps`,
			verdict:    "fake",
			score:      12,
			confidence: "Low",
			reasons:    []string{"no sources"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := Normalize(tt.input)
			require.NotNil(t, v)

			assert.Equal(t, tt.verdict, v.Verdict)
			assert.Equal(t, tt.score, v.Score)
			assert.Equal(t, tt.confidence, v.Confidence)
			if tt.summary != "" {
				assert.Equal(t, tt.summary, v.Summary)
			}
			assert.Equal(t, tt.reasons, v.Reasons)
		})
	}
}

func TestNormalizeLabeledText(t *testing.T) {
	t.Parallel()

	t.Run("字段齐全的标签文本", func(t *testing.T) {
		t.Parallel()

		v := Normalize("Verdict: fake\nConfidence: Low\nSummary: text here")

		assert.Equal(t, "fake", v.Verdict)
		assert.Equal(t, 50, v.Score)
		assert.Equal(t, "Low", v.Confidence)
		assert.Equal(t, "text here", v.Summary)
	})

	t.Run("数字置信度同时作为评分", func(t *testing.T) {
		t.Parallel()

		v := Normalize("Verdict: real\nConfidence: 90%")

		assert.Equal(t, "real", v.Verdict)
		assert.Equal(t, 90, v.Score)
		assert.Equal(t, "90%", v.Confidence)
	})

	t.Run("依据列表按项目符号切分", func(t *testing.T) {
		t.Parallel()

		v := Normalize("Verdict: real\nConfidence: 90%\nReasons:\n- cited sources\n- official statement")

		assert.Equal(t, "real", v.Verdict)
		assert.Equal(t, []string{"cited sources", "official statement"}, v.Reasons)
	})
}

func TestNormalizeProseFallback(t *testing.T) {
	t.Parallel()

	input := "The content appears consistent with established reporting."
	v := Normalize(input)

	assert.Equal(t, "uncertain", v.Verdict)
	assert.Equal(t, 50, v.Score)
	assert.Equal(t, "Medium", v.Confidence)
	assert.Equal(t, input, v.Summary)
	assert.Empty(t, v.Reasons)
}

func TestConfidenceFromScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "High", confidenceFromScore(70))
	assert.Equal(t, "High", confidenceFromScore(100))
	assert.Equal(t, "Medium", confidenceFromScore(40))
	assert.Equal(t, "Medium", confidenceFromScore(69))
	assert.Equal(t, "Low", confidenceFromScore(39))
	assert.Equal(t, "Low", confidenceFromScore(0))
}

func TestClampScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, clampScore(-10))
	assert.Equal(t, 0, clampScore(0))
	assert.Equal(t, 55, clampScore(55))
	assert.Equal(t, 100, clampScore(100))
	assert.Equal(t, 100, clampScore(250))
}
