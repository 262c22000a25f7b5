package dto

import "time"

// AdminHomeDTO Admin landing data
// 管理首页数据
type AdminHomeDTO struct {
	UID      int64    `json:"uid"`
	Email    string   `json:"email"`
	Policies []string `json:"policies"` // Policies the caller satisfies // 调用者满足的策略
}

// CategoryCountDTO Current versions per category
// 分类下的当前版本数量
type CategoryCountDTO struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// ReportDTO Prompt report
// 提示词报表
type ReportDTO struct {
	Lineages      int64              `json:"lineages"`
	Versions      int64              `json:"versions"`
	MaxVersion    int                `json:"maxVersion"`
	Categories    []CategoryCountDTO `json:"categories"`
	LatestCreated *time.Time         `json:"latestCreated"`
	Users         int64              `json:"users"`
}

// SystemDTO Runtime summary for super admins
// 运行时信息（仅超级管理员）
type SystemDTO struct {
	Version      string  `json:"version"`
	GoVersion    string  `json:"goVersion"`
	Goroutines   int     `json:"goroutines"`
	Hostname     string  `json:"hostname"`
	OS           string  `json:"os"`
	Uptime       uint64  `json:"uptime"`
	CPUPercent   float64 `json:"cpuPercent"`
	MemUsed      uint64  `json:"memUsed"`
	MemTotal     uint64  `json:"memTotal"`
	DatabaseType string  `json:"databaseType"`
	ChatBackend  string  `json:"chatBackend"`
	HistoryStore string  `json:"historyStore"`
	WriteQueues  int     `json:"writeQueues"`
	PoolWorkers  int     `json:"poolWorkers"`
}
