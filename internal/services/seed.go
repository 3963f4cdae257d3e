package services

// 初始数据导入：读取 YAML/JSON 种子文件，幂等地创建缺失的类别与奶酪。

import (
	"context"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"cheeseshop/internal/storage"
)

// SeedFile 为种子文件结构。奶酪通过类别名称引用类别。
type SeedFile struct {
	CheeseTypes []string     `yaml:"cheese_types" json:"cheese_types"`
	Cheese      []SeedCheese `yaml:"cheese" json:"cheese"`
}

type SeedCheese struct {
	Title         string `yaml:"title" json:"title"`
	CheeseType    string `yaml:"cheese_type" json:"cheese_type"`
	PackagingType string `yaml:"packaging_type" json:"packaging_type"`
}

// SeedResult 汇总导入结果；已存在的记录计入 Skipped。
type SeedResult struct {
	TypesCreated  int
	TypesSkipped  int
	CheeseCreated int
	CheeseSkipped int
}

// LoadSeedFile 读取种子文件（YAML 是 JSON 的超集，两种格式都可解析）。
func LoadSeedFile(path string) (*SeedFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sf SeedFile
	if err := yaml.Unmarshal(b, &sf); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &sf, nil
}

// Seed 在单个事务中导入种子数据；任一条目非法时整体回滚。
func Seed(ctx context.Context, db *gorm.DB, sf *SeedFile) (SeedResult, error) {
	var res SeedResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		types := NewCheeseTypeService(tx)
		cheese := NewCheeseService(tx)
		for _, name := range sf.CheeseTypes {
			_, created, err := ensureType(ctx, types, name)
			if err != nil {
				return err
			}
			if created {
				res.TypesCreated++
			} else {
				res.TypesSkipped++
			}
		}
		for _, sc := range sf.Cheese {
			pt, err := storage.ParsePackagingType(sc.PackagingType)
			if err != nil {
				return fmt.Errorf("cheese %q: %w", sc.Title, err)
			}
			if _, found, err := cheese.FindByTitle(ctx, sc.Title); err != nil {
				return err
			} else if found {
				res.CheeseSkipped++
				continue
			}
			ct, created, err := ensureType(ctx, types, sc.CheeseType)
			if err != nil {
				return err
			}
			if created {
				res.TypesCreated++
			}
			if _, err := cheese.Create(ctx, CheeseCreate{Title: sc.Title, CheeseTypeID: ct.ID, PackagingType: pt}); err != nil {
				return err
			}
			res.CheeseCreated++
		}
		return nil
	})
	return res, err
}

// ensureType 返回指定名称的类别，不存在时创建；created 表示本次是否新建。
func ensureType(ctx context.Context, types *CheeseTypeService, name string) (*storage.CheeseType, bool, error) {
	if name == "" {
		return nil, false, fmt.Errorf("cheese type name required")
	}
	ct, found, err := types.FindByName(ctx, name)
	if err != nil || found {
		return ct, false, err
	}
	ct, err = types.Create(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return ct, true, nil
}
