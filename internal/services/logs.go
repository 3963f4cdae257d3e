package services

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"cheeseshop/internal/storage"
)

// 审计事件
const (
	EventCheeseTypeCreated = "CHEESE_TYPE_CREATED"
	EventCheeseCreated     = "CHEESE_CREATED"
)

// LogService 将目录写操作的审计日志持久化到数据库。
type LogService struct{ db *gorm.DB }

func NewLogService(db *gorm.DB) *LogService { return &LogService{db: db} }

// Write 写入一条审计日志；失败只记录告警，不影响主流程。
func (s *LogService) Write(ctx context.Context, event string, entityID uint64, desc, ip, requestID string) {
	err := s.db.WithContext(ctx).Create(&storage.AuditLog{
		Timestamp:   time.Now(),
		Level:       "INFO",
		Event:       event,
		EntityID:    entityID,
		Description: desc,
		IPAddress:   ip,
		RequestID:   requestID,
	}).Error
	if err != nil {
		log.WithError(err).WithField("event", event).Warn("audit log write failed")
	}
}

// Recent 按时间倒序返回最近的审计日志。
func (s *LogService) Recent(ctx context.Context, limit int) ([]storage.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []storage.AuditLog
	if err := s.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
