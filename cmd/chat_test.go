package cmd

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"chatrelay/internal/chatclient"
)

func TestResolveModel(t *testing.T) {
	Convey("resolveModel", t, func() {
		models := map[string]string{"GPT_4O": "openai/gpt-4o"}

		So(resolveModel(models, "gpt_4o"), ShouldEqual, "openai/gpt-4o")
		So(resolveModel(models, "mistralai/mixtral-8x7b"), ShouldEqual, "mistralai/mixtral-8x7b")
		So(resolveModel(nil, ""), ShouldEqual, "")
	})
}

func TestConfirmLine(t *testing.T) {
	Convey("confirmLine 仅接受 y/yes", t, func() {
		for input, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "": false} {
			in := bufio.NewScanner(strings.NewReader(input))
			So(confirmLine(in, io.Discard, "sure?"), ShouldEqual, want)
		}
	})
}

func TestWriteTranscript(t *testing.T) {
	Convey("writeTranscript 写出 HTML 页面", t, func() {
		transcript := chatclient.NewHTMLTranscript()
		transcript.AddMessage(chatclient.RoleUser, "hello")
		transcript.AddMessage(chatclient.RoleAssistant, "*hi*")

		path := filepath.Join(t.TempDir(), "chat.html")
		So(writeTranscript(path, transcript), ShouldBeNil)

		data, err := os.ReadFile(path)
		So(err, ShouldBeNil)
		So(string(data), ShouldContainSubstring, `<div class="message user"><div class="markdown-content">hello</div></div>`)
		So(string(data), ShouldContainSubstring, "<em>hi</em>")
	})
}
