package chatclient

import (
	"fmt"
	"html"
	"io"
	"strings"
	"sync"

	"chatrelay/internal/model"
)

// View 对话界面
type View interface {
	// AddMessage 渲染一条完整消息
	AddMessage(role, content string)
	ShowPending()
	HidePending()
	// OpenBubble 打开一个空的助手气泡用于流式更新
	OpenBubble() Bubble
	ShowError(err error)
	ShowUsage(text string)
	// Reset 清空对话并显示欢迎占位
	Reset()
}

// Bubble 流式助手气泡，Update 传入当前累计的完整文本
type Bubble interface {
	Update(full string)
	Finish()
}

// Confirmer 破坏性操作前的确认
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc 函数适配器
type ConfirmFunc func(prompt string) bool

// Confirm 实现 Confirmer
func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// FormatUsage 格式化用量行，上游未返回费用时显示 0
func FormatUsage(u model.Usage) string {
	cost := 0.0
	if u.Cost != nil {
		cost = *u.Cost
	}
	return fmt.Sprintf("Tokens: %d | Cost: $%.6f", u.TotalTokens, cost)
}

// HTML 片段
const (
	WelcomeHTML = `<div class="text-center py-12">` +
		`<h2 class="text-2xl font-bold mb-2">Welcome to AI Chat</h2>` +
		`<p class="text-gray-400">Select a model and start chatting with AI</p>` +
		`</div>`
	TypingHTML = `<div class="typing-indicator"><span></span><span></span><span></span></div>`
)

type htmlBubble struct {
	role    string
	content string
	pending bool
}

// HTMLTranscript 内存中的 HTML 对话记录
type HTMLTranscript struct {
	mu      sync.Mutex
	bubbles []*htmlBubble
	welcome bool
	usage   string
}

// NewHTMLTranscript 创建带欢迎占位的记录
func NewHTMLTranscript() *HTMLTranscript {
	return &HTMLTranscript{welcome: true}
}

func (t *HTMLTranscript) add(b *htmlBubble) {
	t.welcome = false
	t.bubbles = append(t.bubbles, b)
}

// AddMessage 实现 View
func (t *HTMLTranscript) AddMessage(role, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.add(&htmlBubble{role: role, content: content})
}

// ShowPending 实现 View
func (t *HTMLTranscript) ShowPending() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.add(&htmlBubble{role: RoleAssistant, pending: true})
}

// HidePending 实现 View
func (t *HTMLTranscript) HidePending() {
	t.mu.Lock()
	defer t.mu.Unlock()
	kept := t.bubbles[:0]
	for _, b := range t.bubbles {
		if !b.pending {
			kept = append(kept, b)
		}
	}
	t.bubbles = kept
}

// OpenBubble 实现 View
func (t *HTMLTranscript) OpenBubble() Bubble {
	t.mu.Lock()
	defer t.mu.Unlock()
	b := &htmlBubble{role: RoleAssistant}
	t.add(b)
	return &htmlStreamBubble{t: t, b: b}
}

// ShowError 实现 View
func (t *HTMLTranscript) ShowError(err error) {
	t.AddMessage(RoleAssistant, "Error: "+err.Error())
}

// ShowUsage 实现 View
func (t *HTMLTranscript) ShowUsage(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage = text
}

// Reset 实现 View
func (t *HTMLTranscript) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bubbles = nil
	t.usage = ""
	t.welcome = true
}

// Usage 当前用量行
func (t *HTMLTranscript) Usage() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.usage
}

// Len 气泡数量
func (t *HTMLTranscript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.bubbles)
}

// HTML 渲染整个记录
func (t *HTMLTranscript) HTML() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.welcome {
		return WelcomeHTML
	}

	var sb strings.Builder
	for _, b := range t.bubbles {
		sb.WriteString(`<div class="message `)
		sb.WriteString(b.role)
		sb.WriteString(`">`)
		if b.pending {
			sb.WriteString(TypingHTML)
		} else {
			sb.WriteString(`<div class="markdown-content">`)
			sb.WriteString(FormatMessage(b.content))
			sb.WriteString(`</div>`)
		}
		sb.WriteString(`</div>`)
	}
	return sb.String()
}

// transcriptPage 独立 HTML 页面骨架
const transcriptPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body{font-family:system-ui,sans-serif;background:#111827;color:#f3f4f6;max-width:52rem;margin:0 auto;padding:1.5rem}
.message{border-radius:1rem;padding:.75rem 1.25rem;margin:.75rem 0;max-width:80%%}
.message.user{background:linear-gradient(90deg,#2563eb,#9333ea);margin-left:auto}
.message.assistant{background:#374151}
pre{background:#1f2937;padding:.75rem;border-radius:.5rem;overflow-x:auto}
code{font-family:ui-monospace,monospace}
.usage{color:#9ca3af;font-size:.875rem}
.text-center{text-align:center}
</style>
</head>
<body>
<div id="chatMessages">%s</div>
<div class="usage">%s</div>
</body>
</html>
`

// WriteDocument 将记录写成独立的 HTML 页面
func (t *HTMLTranscript) WriteDocument(w io.Writer, title string) error {
	body := t.HTML()
	usage := html.EscapeString(t.Usage())
	_, err := fmt.Fprintf(w, transcriptPage, html.EscapeString(title), body, usage)
	return err
}

// MultiView 将同一会话同时渲染到多个 View
func MultiView(views ...View) View {
	return multiView(views)
}

type multiView []View

func (m multiView) AddMessage(role, content string) {
	for _, v := range m {
		v.AddMessage(role, content)
	}
}

func (m multiView) ShowPending() {
	for _, v := range m {
		v.ShowPending()
	}
}

func (m multiView) HidePending() {
	for _, v := range m {
		v.HidePending()
	}
}

func (m multiView) OpenBubble() Bubble {
	bubbles := make(multiBubble, len(m))
	for i, v := range m {
		bubbles[i] = v.OpenBubble()
	}
	return bubbles
}

func (m multiView) ShowError(err error) {
	for _, v := range m {
		v.ShowError(err)
	}
}

func (m multiView) ShowUsage(text string) {
	for _, v := range m {
		v.ShowUsage(text)
	}
}

func (m multiView) Reset() {
	for _, v := range m {
		v.Reset()
	}
}

type multiBubble []Bubble

func (b multiBubble) Update(full string) {
	for _, bb := range b {
		bb.Update(full)
	}
}

func (b multiBubble) Finish() {
	for _, bb := range b {
		bb.Finish()
	}
}

type htmlStreamBubble struct {
	t *HTMLTranscript
	b *htmlBubble
}

func (s *htmlStreamBubble) Update(full string) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	s.b.content = full
}

func (s *htmlStreamBubble) Finish() {}
