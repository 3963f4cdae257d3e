// Package cli 实现运维命令行 cheesectl：迁移表结构、导入种子数据、查询目录与审计日志。
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"cheeseshop/internal/config"
	"cheeseshop/internal/storage"
)

// rootFlags 保存全局参数，所有子命令共享。
type rootFlags struct {
	configPath string
	driver     string
	dbPath     string
}

// NewRootCmd 创建顶层 cheesectl 命令并注册全部子命令。
func NewRootCmd() *cobra.Command {
	var flags rootFlags
	root := &cobra.Command{
		Use:          "cheesectl",
		Short:        "Operate the cheese catalog database",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default: ./config.yaml if present)")
	root.PersistentFlags().StringVar(&flags.driver, "driver", "", "database driver override: mysql, postgres or sqlite")
	root.PersistentFlags().StringVar(&flags.dbPath, "db-path", "", "sqlite database path override")

	root.AddCommand(newMigrateCmd(&flags))
	root.AddCommand(newSeedCmd(&flags))
	root.AddCommand(newListCmd(&flags))
	root.AddCommand(newAuditCmd(&flags))
	return root
}

// Execute 运行根命令，出错时以非零状态退出。
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig 按全局参数加载配置并应用命令行覆盖。
func (f *rootFlags) loadConfig() (config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		var err error
		if cfg, err = config.LoadFrom(f.configPath); err != nil {
			return cfg, err
		}
	} else {
		cfg = config.Load()
	}
	if f.driver != "" {
		cfg.Database.Driver = f.driver
	}
	if f.dbPath != "" {
		cfg.Database.Path = f.dbPath
	}
	return cfg, nil
}

// openDB 打开数据库（Open 内部会执行自动迁移）。
func (f *rootFlags) openDB() (*gorm.DB, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database (%s): %w", cfg.Database.DSNMasked(), err)
	}
	return db, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
