package chatclient

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorUser      = lipgloss.Color("#7D56F4")
	colorAssistant = lipgloss.Color("#A3BE8C")
	colorError     = lipgloss.Color("#FF6B6B")
	colorSubtle    = lipgloss.Color("#666666")

	userLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorUser)

	assistantLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAssistant)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	subtleStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	welcomeStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 2)
)

const pendingText = "thinking..."

// TerminalView 终端对话界面
// 完整的助手消息用 glamour 渲染，流式气泡只追加新增的后缀
type TerminalView struct {
	mu       sync.Mutex
	out      io.Writer
	renderer *glamour.TermRenderer
}

// NewTerminalView 创建终端界面，glamour 初始化失败时退回原文输出
func NewTerminalView(out io.Writer, width int) *TerminalView {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		renderer = nil
	}
	return &TerminalView{out: out, renderer: renderer}
}

// Welcome 显示欢迎占位
func (v *TerminalView) Welcome() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.welcome()
}

func (v *TerminalView) welcome() {
	fmt.Fprintln(v.out, welcomeStyle.Render("Welcome to AI Chat"))
	fmt.Fprintln(v.out, subtleStyle.Render("Select a model and start chatting with AI. /clear /models /quit"))
}

func (v *TerminalView) label(role string) string {
	if role == RoleUser {
		return userLabelStyle.Render("You:")
	}
	return assistantLabelStyle.Render("AI:")
}

// AddMessage 实现 View
func (v *TerminalView) AddMessage(role, content string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	fmt.Fprintln(v.out, v.label(role))
	if role == RoleAssistant && v.renderer != nil {
		if rendered, err := v.renderer.Render(content); err == nil {
			fmt.Fprint(v.out, rendered)
			return
		}
	}
	fmt.Fprintln(v.out, content)
}

// ShowPending 实现 View
func (v *TerminalView) ShowPending() {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprint(v.out, subtleStyle.Render(pendingText))
}

// HidePending 实现 View
func (v *TerminalView) HidePending() {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprint(v.out, "\r"+strings.Repeat(" ", len(pendingText))+"\r")
}

// OpenBubble 实现 View
func (v *TerminalView) OpenBubble() Bubble {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, v.label(RoleAssistant))
	return &terminalBubble{v: v}
}

// ShowError 实现 View
func (v *TerminalView) ShowError(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, errorStyle.Render("Error: "+err.Error()))
}

// ShowUsage 实现 View
func (v *TerminalView) ShowUsage(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, subtleStyle.Render(text))
}

// Reset 实现 View
func (v *TerminalView) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out)
	v.welcome()
}

type terminalBubble struct {
	v       *TerminalView
	printed string
}

// Update 只输出相对上次新增的部分
func (b *terminalBubble) Update(full string) {
	b.v.mu.Lock()
	defer b.v.mu.Unlock()

	if strings.HasPrefix(full, b.printed) {
		fmt.Fprint(b.v.out, full[len(b.printed):])
	} else {
		fmt.Fprint(b.v.out, "\n"+full)
	}
	b.printed = full
}

func (b *terminalBubble) Finish() {
	b.v.mu.Lock()
	defer b.v.mu.Unlock()
	fmt.Fprintln(b.v.out)
}
