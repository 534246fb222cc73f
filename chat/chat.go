// Package chat synthesizes answers from retrieved statute fragments: a
// streaming report or a quick relevance-checked reply, depending on mode.
package chat

import (
	"context"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/lexrag/lexrag/llm"
)

// Mode selects the synthesis style.
type Mode string

const (
	// ModeSimple gives a short relevance assessment plus answer.
	ModeSimple Mode = "simple"
	// ModeDeep writes a structured legal analysis report over a wider
	// evidence window.
	ModeDeep Mode = "deep"
)

const defaultChatTopK = 5

const deepPromptTemplate = `你是一位资深的中国法律顾问。用户提出了一个具体的法律问题，你已经通过检索工具找到了相关的法律条文。
你的任务是根据这些法条，为用户撰写一份专业的《法律检索分析报告》。

要求：
1. 每个结论必须引用具体法条（格式：《XX法》第X条）
2. 如果检索结果不足，明确说明缺少的部分
3. 专业但通俗，避免过度术语堆砌
4. 不编造法条，不做绝对承诺
5. 不需要寒暄

输出结构：

一、核心结论
用一句话回答用户的核心问题。

二、法律依据分析
针对争议点逐条分析：
- 法条依据：《XX法》第X条规定...
- 适用分析：对用户情况的具体解读
- 注意事项：适用条件或例外情况

三、实操建议
1. 证据准备：需要保留哪些材料
2. 维权路径：协商/仲裁/诉讼的具体步骤
3. 时间节点：诉讼时效、关键期限

---
【检索到的法条上下文】：
%s
`

const simplePromptTemplate = `你是一个法条检索助手。请基于以下检索结果，先简要评估其与用户问题的相关性。然后再给出回答。不需要寒暄。

【检索到的法条】：
%s

要求：
1. 如果法条和问题高度相关，请直接根据法条内容回答用户问题，答案简洁明了，需要引用具体相关法条。不相关法条请予以忽略。
输出示例：
` + "```" + `
关于（用户问题）的问题，（基于xx法xx条，此行为可能构成……）
` + "```" + `
2. 如果法条不相关，请直接告知用户“未找到直接相关依据”，并建议更换搜索词。搜索词应基于法条相似度Embedding的方向设计。
输出示例：
` + "```" + `
查找到的法条相关度较低，根据您的问题，建议以下搜索词重新搜索：（数个搜索词）
` + "```" + `
3. 如果法条相关度完全不足，请告知用户检查向量模型和数据库是否匹配。
`

// Streamer abstracts the streaming completion call.
type Streamer interface {
	CompleteStream(ctx context.Context, system, user string, temperature float64) iter.Seq2[string, error]
}

// Synthesizer builds the synthesis prompt and streams the answer.
type Synthesizer struct {
	llm  Streamer
	topK int
}

// NewSynthesizer builds a Synthesizer. topK bounds the simple-mode context
// window; deep mode doubles it. Non-positive values use the default.
func NewSynthesizer(streamer Streamer, topK int) *Synthesizer {
	if topK <= 0 {
		topK = defaultChatTopK
	}
	return &Synthesizer{llm: streamer, topK: topK}
}

// Stream yields answer chunks for the query grounded on contextChunks,
// which arrive ranked best-first and are truncated to the mode's window.
func (s *Synthesizer) Stream(ctx context.Context, query string, contextChunks []string, mode Mode) iter.Seq2[string, error] {
	limit := s.topK
	if mode == ModeDeep {
		limit = s.topK * 2
	}
	if len(contextChunks) > limit {
		contextChunks = contextChunks[:limit]
	}
	contextStr := strings.Join(contextChunks, "\n\n")

	var system string
	var temperature float64
	if mode == ModeDeep {
		system = fmt.Sprintf(deepPromptTemplate, contextStr)
		temperature = 0.4
	} else {
		system = fmt.Sprintf(simplePromptTemplate, contextStr)
		temperature = 0.3
	}
	user := fmt.Sprintf("用户问题：%s\n\n请开始分析：", query)

	return s.llm.CompleteStream(ctx, system, user, temperature)
}

// CheckConnection probes an endpoint's /models listing and reports a
// user-facing status message in Chinese. The error cases are messages too;
// callers show whichever side they get.
func CheckConnection(ctx context.Context, endpoint llm.Endpoint) (string, error) {
	url := strings.TrimSuffix(strings.TrimSpace(endpoint.BaseURL), "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("连接失败: 网络请求错误 (%v)", err)
	}
	if endpoint.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+endpoint.APIKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("连接失败: 网络请求错误 (%v)", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("连接失败: 服务器返回状态码 %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("连接失败: 网络请求错误 (%v)", err)
	}

	data := gjson.GetBytes(body, "data")
	if !data.IsArray() {
		return "连接成功！(未能验证模型名称)", nil
	}
	for _, m := range data.Array() {
		if m.Get("id").String() == endpoint.Model {
			return fmt.Sprintf("连接成功！发现模型: %s", endpoint.Model), nil
		}
	}
	return fmt.Sprintf("连接通畅，但在列表中未找到模型 '%s' (可能仍可用)", endpoint.Model), nil
}
