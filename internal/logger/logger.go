package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync/atomic"
	"time"
)

const maxLogSize = 10 * 1024 * 1024

var (
	logFile *os.File
	logPath string
	verbose atomic.Bool
)

// Init 把日志同时写入 dir/<name>.log 与标准错误；dir 为空时只写标准错误
func Init(dir, name string) error {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	if dir == "" {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath = filepath.Join(dir, name+".log")

	// 超过 10MB 时轮转
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		backupPath := filepath.Join(dir, fmt.Sprintf("%s.log.%d", name, time.Now().Unix()))
		_ = os.Rename(logPath, backupPath)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logFile = f

	log.SetOutput(io.MultiWriter(os.Stderr, logFile))
	LogInfo("Logger initialized, log file: %s", logPath)
	return nil
}

// FileOnly 只写日志文件，终端界面运行时使用；未打开文件时丢弃日志
func FileOnly() {
	if logFile != nil {
		log.SetOutput(logFile)
		return
	}
	log.SetOutput(io.Discard)
}

// SetVerbose 开启 DEBUG 日志
func SetVerbose(on bool) {
	verbose.Store(on)
}

// Close 关闭日志文件
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	log.SetOutput(os.Stderr)
}

// LogInfo logs an info message
func LogInfo(format string, args ...any) {
	log.Printf("[INFO] "+format, args...)
}

// LogError logs an error message
func LogError(format string, args ...any) {
	log.Printf("[ERROR] "+format, args...)
}

// LogDebug 仅在 verbose 时输出
func LogDebug(format string, args ...any) {
	if verbose.Load() {
		log.Printf("[DEBUG] "+format, args...)
	}
}

// LogPanic logs a panic with stack trace
func LogPanic(r any) {
	log.Printf("[PANIC] %v\n%s", r, debug.Stack())
}

// GetLogPath returns the current log file path
func GetLogPath() string {
	return logPath
}
