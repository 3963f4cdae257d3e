package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"cheeseshop/internal/storage"
)

// CheeseFilter 为列表查询的可选条件；nil 字段表示不限制，多个条件之间为 AND。
type CheeseFilter struct {
	PackagingType  *storage.PackagingType
	CheeseTypeName *string
}

// CheeseCreate 为创建奶酪条目的输入。
type CheeseCreate struct {
	Title         string
	CheeseTypeID  uint64
	PackagingType storage.PackagingType
}

// CheeseService 提供 Cheese 的查询与创建。
type CheeseService struct{ db *gorm.DB }

func NewCheeseService(db *gorm.DB) *CheeseService { return &CheeseService{db: db} }

// List 返回满足过滤条件的奶酪；按类别名称过滤时需联表 cheese_types。
func (s *CheeseService) List(ctx context.Context, f CheeseFilter) ([]storage.Cheese, error) {
	q := s.db.WithContext(ctx).Model(&storage.Cheese{})
	if f.PackagingType != nil {
		q = q.Where("cheese.packaging_type = ?", *f.PackagingType)
	}
	if f.CheeseTypeName != nil {
		q = q.Joins("JOIN cheese_types ON cheese_types.id = cheese.cheese_type_id").
			Where("cheese_types.name = ?", *f.CheeseTypeName)
	}
	var out []storage.Cheese
	if err := q.Order("cheese.id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list cheese: %w", err)
	}
	return out, nil
}

func (s *CheeseService) FindByID(ctx context.Context, id uint64) (*storage.Cheese, bool, error) {
	if !storableID(id) {
		return nil, false, nil
	}
	var c storage.Cheese
	return first(s.db.WithContext(ctx).Where("id = ?", id), &c)
}

// FindByTitle 按标题精确查找，用于写入前的唯一性检查。
func (s *CheeseService) FindByTitle(ctx context.Context, title string) (*storage.Cheese, bool, error) {
	var c storage.Cheese
	return first(s.db.WithContext(ctx).Where("title = ?", title), &c)
}

// Create 插入新奶酪。调用方负责事先校验标题唯一与类别存在；
// 存储层约束冲突分别以 ErrDuplicate / ErrMissingCheeseType 返回。
func (s *CheeseService) Create(ctx context.Context, in CheeseCreate) (*storage.Cheese, error) {
	c := &storage.Cheese{Title: in.Title, CheeseTypeID: in.CheeseTypeID, PackagingType: in.PackagingType}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		switch {
		case storage.IsUniqueViolation(err):
			return nil, fmt.Errorf("cheese %q: %w", in.Title, ErrDuplicate)
		case storage.IsForeignKeyViolation(err):
			return nil, fmt.Errorf("cheese type %d: %w", in.CheeseTypeID, ErrMissingCheeseType)
		}
		return nil, fmt.Errorf("create cheese: %w", err)
	}
	return c, nil
}
