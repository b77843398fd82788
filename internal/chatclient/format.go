package chatclient

import (
	"regexp"
	"strings"
)

var (
	fencedCodeRe = regexp.MustCompile("```(\\w+)?\\n([\\s\\S]*?)```")
	inlineCodeRe = regexp.MustCompile("`([^`]+)`")
	boldRe       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe     = regexp.MustCompile(`\*([^*]+)\*`)

	htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

type segmentKind int

const (
	segmentText segmentKind = iota
	segmentInlineCode
	segmentCodeBlock
)

type segment struct {
	kind segmentKind
	text string
}

// FormatMessage 将对话文本渲染为 HTML 片段
// 支持代码块、行内代码、粗体、斜体与换行；所有文本先转义
// 代码内容不参与强调与换行替换，强调只在两段代码之间的文本内配对
func FormatMessage(text string) string {
	var sb strings.Builder
	for _, seg := range tokenize(text) {
		escaped := htmlEscaper.Replace(seg.text)
		switch seg.kind {
		case segmentCodeBlock:
			sb.WriteString("<pre><code>")
			sb.WriteString(escaped)
			sb.WriteString("</code></pre>")
		case segmentInlineCode:
			sb.WriteString("<code>")
			sb.WriteString(escaped)
			sb.WriteString("</code>")
		default:
			escaped = boldRe.ReplaceAllString(escaped, "<strong>$1</strong>")
			escaped = italicRe.ReplaceAllString(escaped, "<em>$1</em>")
			escaped = strings.ReplaceAll(escaped, "\n", "<br>")
			sb.WriteString(escaped)
		}
	}
	return sb.String()
}

// tokenize 先切出代码块，再在剩余文本中切出行内代码
func tokenize(text string) []segment {
	var out []segment
	rest := text
	for {
		loc := fencedCodeRe.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		out = append(out, splitInline(rest[:loc[0]])...)
		out = append(out, segment{kind: segmentCodeBlock, text: rest[loc[4]:loc[5]]})
		rest = rest[loc[1]:]
	}
	return append(out, splitInline(rest)...)
}

func splitInline(text string) []segment {
	var out []segment
	last := 0
	for _, loc := range inlineCodeRe.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > last {
			out = append(out, segment{kind: segmentText, text: text[last:loc[0]]})
		}
		out = append(out, segment{kind: segmentInlineCode, text: text[loc[2]:loc[3]]})
		last = loc[1]
	}
	if last < len(text) {
		out = append(out, segment{kind: segmentText, text: text[last:]})
	}
	return out
}
