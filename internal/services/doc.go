// Package services 提供目录的领域服务层：奶酪类别与奶酪条目的查询/创建、审计日志与初始数据导入。
// 服务构造在某个 GORM 会话之上，handlers 每个请求使用各自的会话构造服务实例。
package services
