package notesync

import "log"

// Notifier hiển thị thông báo không chặn cho người dùng
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

// NotifierFunc chuyển một hàm thành Notifier
type NotifierFunc func(level Level, msg string)

func (f NotifierFunc) Success(msg string) { f(LevelSuccess, msg) }
func (f NotifierFunc) Error(msg string)   { f(LevelError, msg) }

// LogNotifier ghi thông báo ra log
type LogNotifier struct{}

func (LogNotifier) Success(msg string) { log.Println("[notes]", msg) }
func (LogNotifier) Error(msg string)   { log.Println("[notes] lỗi:", msg) }
