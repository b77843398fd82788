package chatclient

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFormatMessage(t *testing.T) {
	Convey("FormatMessage", t, func() {
		Convey("粗体与斜体", func() {
			So(FormatMessage("**hi** *there*"), ShouldEqual, "<strong>hi</strong> <em>there</em>")
		})

		Convey("转义 HTML", func() {
			So(FormatMessage("<script>alert(1)</script>"), ShouldEqual,
				"&lt;script&gt;alert(1)&lt;/script&gt;")
			So(FormatMessage("a & b"), ShouldEqual, "a &amp; b")
		})

		Convey("行内代码不参与强调", func() {
			So(FormatMessage("`a*b*c`"), ShouldEqual, "<code>a*b*c</code>")
			So(FormatMessage("x `**y**` *z*"), ShouldEqual, "x <code>**y**</code> <em>z</em>")
		})

		Convey("强调不跨越行内代码", func() {
			So(FormatMessage("*see `x` here*"), ShouldEqual, "*see <code>x</code> here*")
			So(FormatMessage("**a `b` c**"), ShouldEqual, "**a <code>b</code> c**")
		})

		Convey("代码块不参与强调与换行", func() {
			in := "before\n```go\nx := *p * 2\n**not bold**\n```\nafter"
			So(FormatMessage(in), ShouldEqual,
				"before<br><pre><code>x := *p * 2\n**not bold**\n</code></pre><br>after")
		})

		Convey("代码块内的 HTML 仍被转义", func() {
			So(FormatMessage("```\n<b>&</b>\n```"), ShouldEqual, "<pre><code>&lt;b&gt;&amp;&lt;/b&gt;\n</code></pre>")
		})

		Convey("换行转为 <br>", func() {
			So(FormatMessage("a\nb"), ShouldEqual, "a<br>b")
		})

		Convey("未闭合的标记保持原样", func() {
			So(FormatMessage("2 * 3 = 6"), ShouldEqual, "2 * 3 = 6")
			So(FormatMessage("`open"), ShouldEqual, "`open")
		})

		Convey("空文本", func() {
			So(FormatMessage(""), ShouldEqual, "")
		})
	})
}
