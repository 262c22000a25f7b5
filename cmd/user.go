package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	internalApp "github.com/haierkeys/agent-scrum-service/internal/app"
	"github.com/haierkeys/agent-scrum-service/internal/dto"
	"github.com/haierkeys/agent-scrum-service/pkg/code"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed, color.Bold)
	cyan  = color.New(color.FgCyan)
)

// withApp 在离线命令中构建 App，执行 fn 后优雅关闭
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *internalApp.App) error) {
	cfg, lg, db, err := openOffline(cmd)
	if err != nil {
		red.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	a, err := internalApp.NewApp(cfg, lg, db)
	if err != nil {
		red.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	runErr := fn(ctx, a)
	_ = a.Shutdown(ctx)

	if runErr != nil {
		if c, ok := runErr.(*code.Code); ok {
			red.Fprintf(os.Stderr, "%s", c.Msg())
			if d := c.Details(); len(d) > 0 {
				fmt.Fprintf(os.Stderr, ": %s", strings.Join(d, "; "))
			}
			fmt.Fprintln(os.Stderr)
		} else {
			red.Fprintln(os.Stderr, runErr)
		}
		os.Exit(1)
	}
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts // 管理用户账号",
}

var userAddCmd = &cobra.Command{
	Use:   "add -e email -u username -p password [-r role]...",
	Short: "Create a user account",
	Run: func(cmd *cobra.Command, args []string) {
		params := &dto.UserCreateRequest{}
		params.Email, _ = cmd.Flags().GetString("email")
		params.Username, _ = cmd.Flags().GetString("username")
		params.Password, _ = cmd.Flags().GetString("password")
		params.Roles, _ = cmd.Flags().GetStringSlice("role")

		withApp(cmd, func(ctx context.Context, a *internalApp.App) error {
			user, err := a.UserService.Create(ctx, params)
			if err != nil {
				return err
			}
			green.Printf("user created: uid=%d email=%s roles=%s\n", user.UID, user.Email, strings.Join(user.Roles, ","))
			return nil
		})
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List user accounts",
	Run: func(cmd *cobra.Command, args []string) {
		page, _ := cmd.Flags().GetInt("page")
		size, _ := cmd.Flags().GetInt("size")

		withApp(cmd, func(ctx context.Context, a *internalApp.App) error {
			users, total, err := a.UserService.List(ctx, page, size)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			cyan.Fprintln(w, "UID\tEMAIL\tUSERNAME\tVERIFIED\tROLES\tCREATED")
			for _, u := range users {
				fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\t%s\n",
					u.UID, u.Email, u.Username, u.EmailVerified, strings.Join(u.Roles, ","), u.CreatedAt.Format("2006-01-02 15:04"))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("%d of %d user(s)\n", len(users), total)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd, userListCmd)
	userCmd.PersistentFlags().StringP("config", "c", "", "config file path")

	fs := userAddCmd.Flags()
	fs.StringP("email", "e", "", "email")
	fs.StringP("username", "u", "", "username")
	fs.StringP("password", "p", "", "password")
	fs.StringSliceP("role", "r", nil, "role, may be repeated")
	_ = userAddCmd.MarkFlagRequired("email")
	_ = userAddCmd.MarkFlagRequired("username")
	_ = userAddCmd.MarkFlagRequired("password")

	userListCmd.Flags().Int("page", 1, "page number")
	userListCmd.Flags().Int("size", 20, "page size")
}
