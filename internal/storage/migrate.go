package storage

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// 本文件定义目录服务使用的所有 GORM 模型，集中管理数据结构。

// PackagingType 为奶酪包装方式的封闭枚举，以字符串形式落库。
type PackagingType string

const (
	PackagingWrapped      PackagingType = "wrapped"
	PackagingVacuumPacked PackagingType = "vacuum_packed"
	PackagingWaxed        PackagingType = "waxed"
	PackagingInBrine      PackagingType = "in_brine"
	PackagingLoose        PackagingType = "loose"
)

// PackagingTypes 按固定顺序列出全部合法取值。
var PackagingTypes = []PackagingType{
	PackagingWrapped,
	PackagingVacuumPacked,
	PackagingWaxed,
	PackagingInBrine,
	PackagingLoose,
}

// ParsePackagingType 校验外部输入；未知取值返回错误。
func ParsePackagingType(s string) (PackagingType, error) {
	for _, p := range PackagingTypes {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown packaging type %q (expected one of %s)", s, packagingList())
}

func packagingList() string {
	parts := make([]string, 0, len(PackagingTypes))
	for _, p := range PackagingTypes {
		parts = append(parts, string(p))
	}
	return strings.Join(parts, ", ")
}

// CheeseType 奶酪类别；名称全局唯一。
type CheeseType struct {
	ID   uint64 `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"size:190;uniqueIndex;not null"`
}

func (CheeseType) TableName() string { return "cheese_types" }

// Cheese 目录条目；标题全局唯一，CheeseTypeID 必须指向已存在的类别。
type Cheese struct {
	ID            uint64        `gorm:"primaryKey;autoIncrement"`
	Title         string        `gorm:"size:190;uniqueIndex;not null"`
	CheeseTypeID  uint64        `gorm:"index;not null"`
	PackagingType PackagingType `gorm:"size:32;index;not null"`
	// 仅用于声明外键约束，查询时不预加载
	CheeseType *CheeseType `gorm:"constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
}

func (Cheese) TableName() string { return "cheese" }

// AuditLog 记录目录写操作，便于追溯由哪个请求创建了哪条数据。
type AuditLog struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	Timestamp   time.Time `gorm:"index"`
	Level       string    `gorm:"size:16;index"`
	Event       string    `gorm:"size:64;index"`
	EntityID    uint64    `gorm:"index"`
	Description string    `gorm:"type:text"`
	IPAddress   string    `gorm:"size:64"`
	RequestID   string    `gorm:"size:64;index"`
}

func (AuditLog) TableName() string { return "audit_logs" }

// AutoMigrate 执行数据库自动迁移（CheeseType 需先于 Cheese 建表以便创建外键）。
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&CheeseType{}, &Cheese{}, &AuditLog{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
