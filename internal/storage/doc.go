// Package storage 提供底层持久化适配，实现数据库连接（MySQL/PostgreSQL/SQLite）、自动迁移、GORM 模型声明与按请求分配的数据库会话。
// 其它层应通过 services 间接访问存储，以便集中处理约束冲突与审计。
package storage
