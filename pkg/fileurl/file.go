package fileurl

import (
	"os"
	"path/filepath"
)

// IsDir determines if the given path is a directory
// IsDir 判断所给路径是否为文件夹
func IsDir(path string) bool {
	s, err := os.Stat(path)
	if err != nil {
		return false
	}
	return s.IsDir()
}

// IsExist 判断路径是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	return err == nil || !os.IsNotExist(err)
}

// CreatePath 创建目录（含父目录）
func CreatePath(dst string, perm os.FileMode) error {
	return os.MkdirAll(dst, perm)
}

// EnsureParent 确保文件所在目录存在
func EnsureParent(file string) error {
	dir := filepath.Dir(file)
	if dir == "" || dir == "." || IsDir(dir) {
		return nil
	}
	return CreatePath(dir, 0o755)
}

// GetExePath 当前可执行文件所在目录
func GetExePath() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}
