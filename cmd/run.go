package cmd

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/haierkeys/agent-scrum-service/pkg/fileurl"
	"github.com/haierkeys/agent-scrum-service/pkg/util"

	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	// 默认配置中的占位符，首次生成配置文件时替换为随机值
	authTokenPlaceholder     = "agent-scrum-Auth-Token"
	adminPasswordPlaceholder = "agent-scrum-Admin-Password"
)

type runFlags struct {
	dir     string // 项目根目录
	port    string // 启动端口，覆盖 server.http-port
	runMode string // 启动模式
	config  string // 指定要使用的配置文件路径
}

// findConfig 按顺序查找配置文件，找不到时返回空
func findConfig() string {
	for _, p := range []string{"config/config-dev.yaml", "config.yaml", "config/config.yaml"} {
		if fileurl.IsExist(p) {
			return p
		}
	}
	return ""
}

// writeDefaultConfig 写入内置默认配置，并替换密钥与管理员密码占位符
func writeDefaultConfig(path string) error {
	content := strings.Replace(configDefault, authTokenPlaceholder, util.GetRandomString(32), 1)

	password := util.GetRandomString(16)
	if strings.Contains(content, adminPasswordPlaceholder) {
		content = strings.Replace(content, adminPasswordPlaceholder, password, 1)
		bootstrapLogger.Warn("admin account password generated, change it after first login",
			zap.String("password", password))
	}

	if err := fileurl.EnsureParent(path); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0600)
}

// watchConfig 配置文件写入后重建服务
func watchConfig(runEnv *runFlags, s *Server) {
	w := watcher.New()

	// 每个周期至多一个事件，只关心写入
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write)

	go func() {
		for {
			select {
			case event := <-w.Event:
				s.logger.Info("config watcher change", zap.String("event", event.Op.String()), zap.String("file", event.Path))
				s.sc.SendCloseSignal(nil)
				if err := s.sc.WaitClosed(); err != nil {
					s.logger.Warn("previous server closed with error", zap.Error(err))
				}

				next, err := NewServer(runEnv)
				if err != nil {
					bootstrapLogger.Error("service restart err", zap.Error(err))
					continue
				}
				*s = *next
			case err := <-w.Error:
				s.logger.Error("config watcher error", zap.Error(err))
			case <-w.Closed:
				bootstrapLogger.Info("config watcher closed")
				return
			}
		}
	}()

	if err := w.Add(runEnv.config); err != nil {
		s.logger.Error("config watcher file error", zap.Error(err))
		return
	}

	if err := w.Start(5 * time.Second); err != nil {
		s.logger.Error("config watcher start error", zap.Error(err))
	}
}

func init() {
	runEnv := new(runFlags)

	var runCommand = &cobra.Command{
		Use:   "run [-c config_file] [-d working_dir] [-p port]",
		Short: "Run service",
		Run: func(cmd *cobra.Command, args []string) {
			if len(runEnv.dir) > 0 {
				if err := os.Chdir(runEnv.dir); err != nil {
					bootstrapLogger.Error("failed to change the current working directory", zap.Error(err))
					return
				}
				bootstrapLogger.Info("working directory changed", zap.String("dir", runEnv.dir))
			}

			if len(runEnv.config) <= 0 {
				runEnv.config = findConfig()
			}
			if len(runEnv.config) <= 0 {
				bootstrapLogger.Warn("config file not found, creating default config")
				runEnv.config = "config/config.yaml"
				if err := writeDefaultConfig(runEnv.config); err != nil {
					bootstrapLogger.Error("config file auto create error", zap.Error(err))
					return
				}
				bootstrapLogger.Info("config file auto create successfully", zap.String("path", runEnv.config))
			}

			s, err := NewServer(runEnv)
			if err != nil {
				bootstrapLogger.Error("api service start err", zap.Error(err))
				return
			}

			go watchConfig(runEnv, s)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			s.logger.Info("Received shutdown signal, initiating graceful shutdown...")
			s.sc.SendCloseSignal(nil)

			// 等待所有关闭处理器完成，包括 App 的优雅关闭
			if err := s.sc.WaitClosed(); err != nil {
				s.logger.Error("Shutdown completed with error", zap.Error(err))
			} else {
				s.logger.Info("Service has been shut down gracefully.")
			}
		},
	}

	rootCmd.AddCommand(runCommand)
	fs := runCommand.Flags()
	fs.StringVarP(&runEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&runEnv.port, "port", "p", "", "run port")
	fs.StringVarP(&runEnv.runMode, "mode", "m", "", "run mode")
	fs.StringVarP(&runEnv.config, "config", "c", "", "config file")
}
