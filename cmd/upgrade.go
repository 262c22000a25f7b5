package cmd

import (
	"context"
	"fmt"
	"os"

	internalApp "github.com/haierkeys/agent-scrum-service/internal/app"
	"github.com/haierkeys/agent-scrum-service/internal/dao"
	"github.com/haierkeys/agent-scrum-service/internal/upgrade"
	"github.com/haierkeys/agent-scrum-service/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// openOffline 为离线命令加载配置、日志与数据库
func openOffline(cmd *cobra.Command) (*internalApp.AppConfig, *zap.Logger, *gorm.DB, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if len(configPath) <= 0 {
		configPath = findConfig()
	}
	if len(configPath) <= 0 {
		return nil, nil, nil, fmt.Errorf("config file not found, use -c to specify one")
	}

	appConfig, configRealpath, err := internalApp.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	fmt.Printf("Loading config from: %s\n", configRealpath)

	lg, err := logger.NewLogger(logger.Config{
		Level:      appConfig.Log.Level,
		File:       appConfig.Log.File,
		Production: appConfig.Log.Production,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}

	db, err := dao.NewDBEngineWithConfig(appConfig.GetDatabaseConfig(), lg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to init database: %w", err)
	}
	return appConfig, lg, db, nil
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade database schema and repair stored data",
	Long: `Upgrade database schema and repair stored data.

Applies every pending migration up to the running version, including the
prompt lineage repair. Already applied migrations are skipped, so the
command is safe to run more than once.`,
	Run: func(cmd *cobra.Command, args []string) {
		_, lg, db, err := openOffline(cmd)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		m := upgrade.NewMigrationManager(db, lg, internalApp.Version)

		if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
			pending, err := m.Pending(context.Background())
			if err != nil {
				fmt.Printf("Upgrade check failed: %v\n", err)
				os.Exit(1)
			}
			for _, mg := range pending {
				fmt.Printf("  %s  %s\n", mg.Version(), mg.Description())
			}
			fmt.Printf("%d pending migration(s)\n", len(pending))
			return
		}

		fmt.Println("Starting database upgrade...")
		executed, err := m.Run(context.Background())
		if err != nil {
			fmt.Printf("Upgrade failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Database upgrade completed successfully, %d migration(s) applied\n", executed)
	},
}

func init() {
	rootCmd.AddCommand(upgradeCmd)
	upgradeCmd.Flags().StringP("config", "c", "", "config file path")
	upgradeCmd.Flags().Bool("dry-run", false, "list pending migrations without applying them")
}
