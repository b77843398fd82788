package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"chatrelay/internal/chatclient"
	"chatrelay/internal/pkg/logger"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the relay from the terminal",
	Long: `Start an interactive chat session against a running relay server.
Commands: /models, /model <name|id>, /stream on|off, /clear, /quit
Use --transcript to save the conversation as an HTML page on exit.`,
	RunE: runChat,
}

var (
	onlineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	offlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

func init() {
	rootCmd.AddCommand(chatCmd)

	flags := chatCmd.Flags()
	flags.String("server", "http://localhost:3000", "relay server base URL")
	flags.String("model", "", "model symbolic name or upstream id (default: server default)")
	flags.Bool("stream", true, "use the streaming endpoint")
	flags.Int("width", 100, "terminal wrap width")
	flags.String("transcript", "", "write the conversation as an HTML page to this file on exit")
}

func runChat(cmd *cobra.Command, args []string) error {
	// 对话输出占用 stdout，日志改写到 stderr
	logCfg := cfg.Log
	logCfg.Output = "stderr"
	if logCfg.Level == "" || logCfg.Level == "info" {
		logCfg.Level = "warn"
	}
	if err := logger.Init(&logCfg); err != nil {
		return err
	}

	flags := cmd.Flags()
	serverURL, _ := flags.GetString("server")
	modelID, _ := flags.GetString("model")
	streaming, _ := flags.GetBool("stream")
	width, _ := flags.GetInt("width")
	transcriptPath, _ := flags.GetString("transcript")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := chatclient.NewClient(serverURL)
	terminal := chatclient.NewTerminalView(os.Stdout, width)
	var view chatclient.View = terminal
	if transcriptPath != "" {
		transcript := chatclient.NewHTMLTranscript()
		view = chatclient.MultiView(terminal, transcript)
		defer func() {
			if err := writeTranscript(transcriptPath, transcript); err != nil {
				log.Error().Err(err).Str("path", transcriptPath).Msg("failed to write transcript")
				return
			}
			fmt.Println("Transcript written to", transcriptPath)
		}()
	}

	in := bufio.NewScanner(os.Stdin)
	sess := chatclient.NewSession(client, view, chatclient.ConfirmFunc(func(prompt string) bool {
		return confirmLine(in, os.Stdout, prompt)
	}))

	terminal.Welcome()
	if client.Health(ctx) {
		fmt.Println(onlineStyle.Render("● Online"), serverURL)
	} else {
		fmt.Println(offlineStyle.Render("● Offline"), serverURL)
	}

	models, err := client.Models(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load model list")
	}
	modelID = resolveModel(models, modelID)

	for {
		fmt.Print("> ")
		if !in.Scan() {
			fmt.Println()
			return in.Err()
		}
		line := strings.TrimSpace(in.Text())

		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/clear":
			if !sess.ClearChat() {
				fmt.Println("Cancelled")
			}
		case line == "/models":
			printModels(os.Stdout, models, modelID)
		case strings.HasPrefix(line, "/model "):
			modelID = resolveModel(models, strings.TrimSpace(strings.TrimPrefix(line, "/model ")))
			fmt.Println("Model:", displayModel(modelID))
		case strings.HasPrefix(line, "/stream"):
			streaming = strings.TrimSpace(strings.TrimPrefix(line, "/stream")) != "off"
			fmt.Println("Streaming:", streaming)
		default:
			sess.SendMessage(ctx, line, modelID, streaming)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

// writeTranscript 将 HTML 对话记录写入文件
func writeTranscript(path string, transcript *chatclient.HTMLTranscript) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := transcript.WriteDocument(f, "AI Chat Transcript"); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// confirmLine 读取一行 y/N 回答
func confirmLine(in *bufio.Scanner, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	if !in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(in.Text()))
	return answer == "y" || answer == "yes"
}

// resolveModel 符号名映射为上游 ID，未知值原样透传
func resolveModel(models map[string]string, name string) string {
	if id, ok := models[strings.ToUpper(name)]; ok {
		return id
	}
	return name
}

func displayModel(id string) string {
	if id == "" {
		return "(server default)"
	}
	return id
}

func printModels(out io.Writer, models map[string]string, current string) {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		marker := " "
		if models[name] == current {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-14s %s\n", marker, name, models[name])
	}
}
