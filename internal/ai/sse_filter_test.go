package ai

import (
	"io"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func filtered(raw string) string {
	out, _ := io.ReadAll(newCommentFilter(io.NopCloser(strings.NewReader(raw))))
	return string(out)
}

func TestCommentFilter(t *testing.T) {
	Convey("commentFilter 剔除 SSE 注释", t, func() {
		Convey("仅含注释的事件整体丢弃", func() {
			So(filtered(": OPENROUTER PROCESSING\n\ndata: a\n\n"), ShouldEqual, "data: a\n\n")
		})

		Convey("片段之间的注释不影响后续事件", func() {
			raw := "data: a\n\n: OPENROUTER PROCESSING\n\n: OPENROUTER PROCESSING\n\ndata: b\n\ndata: [DONE]\n\n"
			So(filtered(raw), ShouldEqual, "data: a\n\ndata: b\n\ndata: [DONE]\n\n")
		})

		Convey("与字段同属一个事件的注释只删除注释行", func() {
			So(filtered(": ping\ndata: a\n\n"), ShouldEqual, "data: a\n\n")
		})

		Convey("CRLF 换行", func() {
			So(filtered(": ping\r\n\r\ndata: a\r\n\r\n"), ShouldEqual, "data: a\r\n\r\n")
		})

		Convey("无结尾换行的数据原样保留", func() {
			So(filtered("data: a"), ShouldEqual, "data: a")
		})
	})
}
