package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
	"github.com/bigkaa/goartstore/admin-console/internal/session"
)

// Назначение кода для send-code.
const (
	purposeLogin    = "login"
	purposeRegister = "register"
)

func newLoginCommand(opts *rootOptions) *cobra.Command {
	var form session.LoginForm
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Вход по email и паролю",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.promptIfEmpty(cmd, &form.Email, "邮箱: "); err != nil {
				return err
			}
			if err := opts.promptIfEmpty(cmd, &form.Password, "密码: "); err != nil {
				return err
			}
			return opts.withApp(cmd, printNotifier(cmd.ErrOrStderr()), func(ctx context.Context, a *app) error {
				user, err := a.session.Login(ctx, form)
				if err != nil {
					return err
				}
				return loggedIn(cmd, user)
			})
		},
	}
	cmd.Flags().StringVarP(&form.Email, "email", "e", "", "email учётной записи")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "пароль (без флага читается из stdin)")
	return cmd
}

func newLoginCodeCommand(opts *rootOptions) *cobra.Command {
	var form session.CodeLoginForm
	cmd := &cobra.Command{
		Use:   "login-code",
		Short: "Вход по коду из письма",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.promptIfEmpty(cmd, &form.Email, "邮箱: "); err != nil {
				return err
			}
			if err := opts.promptIfEmpty(cmd, &form.Code, "验证码: "); err != nil {
				return err
			}
			return opts.withApp(cmd, printNotifier(cmd.ErrOrStderr()), func(ctx context.Context, a *app) error {
				user, err := a.session.LoginWithCode(ctx, form)
				if err != nil {
					return err
				}
				return loggedIn(cmd, user)
			})
		},
	}
	cmd.Flags().StringVarP(&form.Email, "email", "e", "", "email учётной записи")
	cmd.Flags().StringVarP(&form.Code, "code", "c", "", "шестизначный код из письма")
	return cmd
}

func newSendCodeCommand(opts *rootOptions) *cobra.Command {
	var (
		form    session.EmailForm
		purpose string
	)
	cmd := &cobra.Command{
		Use:   "send-code",
		Short: "Отправить код подтверждения на email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if purpose != purposeLogin && purpose != purposeRegister {
				return fmt.Errorf("--purpose: ожидается %s или %s, получено %q", purposeLogin, purposeRegister, purpose)
			}
			if err := opts.promptIfEmpty(cmd, &form.Email, "邮箱: "); err != nil {
				return err
			}
			return opts.withApp(cmd, printNotifier(cmd.ErrOrStderr()), func(ctx context.Context, a *app) error {
				send := a.session.SendLoginCode
				if purpose == purposeRegister {
					send = a.session.SendVerificationCode
				}
				if err := send(ctx, form); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "验证码已发送至 %s\n", form.Email)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&form.Email, "email", "e", "", "адрес получателя")
	cmd.Flags().StringVar(&purpose, "purpose", purposeLogin, "назначение кода: login или register")
	return cmd
}

func newRegisterCommand(opts *rootOptions) *cobra.Command {
	var form session.RegisterForm
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Регистрация по коду из письма",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.promptIfEmpty(cmd, &form.Email, "邮箱: "); err != nil {
				return err
			}
			if err := opts.promptIfEmpty(cmd, &form.Password, "密码: "); err != nil {
				return err
			}
			if err := opts.promptIfEmpty(cmd, &form.ConfirmPassword, "确认密码: "); err != nil {
				return err
			}
			if err := opts.promptIfEmpty(cmd, &form.Code, "验证码: "); err != nil {
				return err
			}
			return opts.withApp(cmd, printNotifier(cmd.ErrOrStderr()), func(ctx context.Context, a *app) error {
				user, err := a.session.Register(ctx, form)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "注册成功: %s\n", user.Email)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&form.Email, "email", "e", "", "email учётной записи")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "пароль")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm-password", "", "повтор пароля")
	cmd.Flags().StringVarP(&form.Code, "code", "c", "", "шестизначный код из письма")
	return cmd
}

func newLogoutCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Выход: сессия на сервере и локальный токен",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, printNotifier(cmd.ErrOrStderr()), func(ctx context.Context, a *app) error {
				if err := a.session.Logout(ctx); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "已退出登录")
				return err
			})
		},
	}
}

func newWhoamiCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Текущий пользователь",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, printNotifier(cmd.ErrOrStderr()), func(ctx context.Context, a *app) error {
				if err := a.session.Require(ctx); err != nil {
					return err
				}
				user, err := a.api.CurrentUser(ctx)
				if err != nil {
					return err
				}
				return printUser(cmd, user)
			})
		},
	}
}

func newRefreshCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Обновить access token по refresh token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, printNotifier(cmd.ErrOrStderr()), func(ctx context.Context, a *app) error {
				user, err := a.session.Refresh(ctx)
				if err != nil {
					return err
				}
				return done(cmd, "令牌已刷新: %s", user.Email)
			})
		},
	}
}

func newHealthCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Состояние REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, printNotifier(cmd.ErrOrStderr()), func(ctx context.Context, a *app) error {
				h, err := a.api.Health(ctx)
				if err != nil {
					return err
				}
				return done(cmd, "%s %s (版本 %s)", h.Service, h.Status, h.Version)
			})
		},
	}
}

func loggedIn(cmd *cobra.Command, user *model.User) error {
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "登录成功: %s\n", user.Email)
	return err
}

// printUser печатает карточку пользователя.
func printUser(cmd *cobra.Command, user *model.User) error {
	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, r.Name)
	}
	lastLogin := "-"
	if user.LastLoginAt != nil {
		lastLogin = user.LastLoginAt.Local().Format("2006-01-02 15:04:05")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ID:       %s\n", user.ID)
	fmt.Fprintf(&b, "邮箱:     %s\n", user.Email)
	fmt.Fprintf(&b, "用户名:   %s\n", user.Name)
	fmt.Fprintf(&b, "角色:     %s\n", strings.Join(roles, ", "))
	fmt.Fprintf(&b, "最后登录: %s\n", lastLogin)
	_, err := fmt.Fprint(cmd.OutOrStdout(), b.String())
	return err
}
