// Package logger は slog ベースのロガーを構成します。
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ParseLevel はログレベル文字列を slog.Level に変換します。不明な値は info です。
func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Setup は標準出力向けのロガーを作成し、slog のデフォルトに設定します。
// 端末ならテキスト形式、それ以外 (コンテナやファイル) ならJSON形式で出力します。
func Setup(level string) *slog.Logger {
	return SetupWriter(os.Stdout, level, isTerminal(os.Stdout))
}

// SetupWriter は出力先と形式を指定してロガーを作成します。
func SetupWriter(w io.Writer, level string, text bool) *slog.Logger {
	lvl, ok := ParseLevel(level)
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if text {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	if !ok {
		log.Warn("invalid log level configured, using default level",
			"configured_level", level,
			"default_level", "info")
	}
	return log
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
