// Package config 负责加载与解析进程配置，支持 YAML/JSON 配置文件、.env 与环境变量覆盖以及默认值合并。
// main、cheesectl 等入口直接读取结构化配置。
package config
