package service

import (
	"strings"
	"time"
)

// isTransientConflict 识别可重试的事务冲突（SQLite 锁、PostgreSQL 序列化失败等）
func isTransientConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, needle := range []string{
		"database is locked",
		"database table is locked",
		"sqlite_busy",
		"deadlock detected",
		"could not serialize access",
	} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}

// runWithRetry 对瞬时冲突做有限次指数退避重试，业务错误直接返回
func runWithRetry(maxRetries int, baseDelay time.Duration, fn func() error) error {
	if maxRetries < 1 {
		maxRetries = 1
	}
	if baseDelay <= 0 {
		baseDelay = 10 * time.Millisecond
	}
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = fn()
		if err == nil || !isTransientConflict(err) {
			return err
		}
		time.Sleep(baseDelay << uint(attempt))
	}
	return err
}
