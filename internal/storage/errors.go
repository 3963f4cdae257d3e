package storage

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// 不同驱动对约束冲突的报错形式不一：MySQL/PostgreSQL 由 GORM 的 TranslateError 统一翻译，
// modernc SQLite 的错误未被翻译，只能按消息匹配。

// IsUniqueViolation 判断错误是否由唯一约束冲突引起。
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "Error 1062") || // mysql
		strings.Contains(msg, "SQLSTATE 23505") // postgres
}

// IsForeignKeyViolation 判断错误是否由外键约束冲突引起。
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "Error 1452") ||
		strings.Contains(msg, "SQLSTATE 23503")
}
