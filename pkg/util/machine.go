package util

import (
	"sync"

	"github.com/denisbrodbeck/machineid"
)

const machineAppID = "agent-scrum-service"

var (
	machineID     string
	machineIDOnce sync.Once
)

// GetMachineID 获取当前机器的唯一标识符（按应用哈希），获取失败返回空字符串
// Token 签名密钥会拼接该值，换机后旧 Token 自动失效
func GetMachineID() string {
	machineIDOnce.Do(func() {
		if id, err := machineid.ProtectedID(machineAppID); err == nil {
			machineID = id
		}
	})
	return machineID
}
