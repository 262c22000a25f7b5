package domain

import "errors"

var (
	// ErrPromptConflict 乐观锁校验失败：记录在读取后被其他请求修改
	ErrPromptConflict = errors.New("prompt row version mismatch")
	// ErrLineageCorrupt 版本链不存在当前版本，需要运行修复迁移
	ErrLineageCorrupt = errors.New("prompt lineage has no current version")
)
