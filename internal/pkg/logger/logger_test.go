package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"

	"chatrelay/internal/config"
)

func TestInit(t *testing.T) {
	Convey("Init 初始化全局日志", t, func() {
		defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

		Convey("解析日志级别", func() {
			So(Init(&config.LogConfig{Level: "debug", Format: "json"}), ShouldBeNil)
			So(zerolog.GlobalLevel(), ShouldEqual, zerolog.DebugLevel)
		})

		Convey("非法级别回退到 info", func() {
			So(Init(&config.LogConfig{Level: "verbose"}), ShouldBeNil)
			So(zerolog.GlobalLevel(), ShouldEqual, zerolog.InfoLevel)
		})

		Convey("文件输出", func() {
			path := filepath.Join(t.TempDir(), "relay.log")
			So(Init(&config.LogConfig{Level: "info", Format: "json", Output: "file", FilePath: path}), ShouldBeNil)

			l := Get()
			l.Info().Msg("hello")

			data, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, "hello")
		})
	})
}
