package services

// 奶酪类别服务：列表、按名称/ID 精确查询与创建。

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"cheeseshop/internal/storage"
)

var (
	// ErrDuplicate 表示写入触发了名称/标题的唯一约束。
	ErrDuplicate = errors.New("duplicate")
	// ErrMissingCheeseType 表示引用的奶酪类别不存在（外键约束）。
	ErrMissingCheeseType = errors.New("cheese type not found")
)

// CheeseTypeService 提供 CheeseType 的查询与创建。
type CheeseTypeService struct{ db *gorm.DB }

func NewCheeseTypeService(db *gorm.DB) *CheeseTypeService { return &CheeseTypeService{db: db} }

// List 返回全部类别（按 ID 排序）。
func (s *CheeseTypeService) List(ctx context.Context) ([]storage.CheeseType, error) {
	var out []storage.CheeseType
	if err := s.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list cheese types: %w", err)
	}
	return out, nil
}

// FindByName 按名称精确查找；不存在时返回 false 而非错误。
func (s *CheeseTypeService) FindByName(ctx context.Context, name string) (*storage.CheeseType, bool, error) {
	var ct storage.CheeseType
	return first(s.db.WithContext(ctx).Where("name = ?", name), &ct)
}

func (s *CheeseTypeService) FindByID(ctx context.Context, id uint64) (*storage.CheeseType, bool, error) {
	if !storableID(id) {
		return nil, false, nil
	}
	var ct storage.CheeseType
	return first(s.db.WithContext(ctx).Where("id = ?", id), &ct)
}

// Create 插入新类别。调用方负责事先检查名称是否已存在；
// 并发写入导致的唯一约束冲突以 ErrDuplicate 返回。
func (s *CheeseTypeService) Create(ctx context.Context, name string) (*storage.CheeseType, error) {
	ct := &storage.CheeseType{Name: name}
	if err := s.db.WithContext(ctx).Create(ct).Error; err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, fmt.Errorf("cheese type %q: %w", name, ErrDuplicate)
		}
		return nil, fmt.Errorf("create cheese type: %w", err)
	}
	return ct, nil
}

// storableID 报告 id 能否作为主键出现在库中；主键列为有符号 64 位，
// 且 database/sql 拒绝最高位为 1 的 uint64 参数。
func storableID(id uint64) bool { return id <= math.MaxInt64 }

// first 执行 First 查询，把 ErrRecordNotFound 转换为 found=false。
func first[T any](q *gorm.DB, dst *T) (*T, bool, error) {
	if err := q.First(dst).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return dst, true, nil
}
