package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/auth"
	"github.com/frahmantamala/star-supla/internal/permission"
	"github.com/spf13/cobra"
)

var (
	loginName     string
	loginPassword string

	newPassword     string
	confirmPassword string

	stdin = bufio.NewReader(os.Stdin)
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and cache the session",
	Long:  `Authenticate against the backend, then cache the session key, the current user and the permission set.`,
	RunE: withDeps(func(ctx context.Context, deps *Dependencies, _ []string) error {
		password := loginPassword
		if password == "" {
			var err error
			if password, err = prompt("Password: "); err != nil {
				return err
			}
		}

		user, err := deps.Auth.Login(ctx, auth.LoginDTO{Name: loginName, Password: password})
		if err != nil {
			return err
		}

		printf("Logged in as %s\n", user.Name)
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the cached session",
	RunE: withDeps(func(ctx context.Context, deps *Dependencies, _ []string) error {
		if err := deps.Auth.Logout(ctx); err != nil {
			return err
		}
		printf("Logged out\n")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current user",
	Long:  `Restore the cached session and revalidate it against the backend.`,
	RunE: withDeps(func(ctx context.Context, deps *Dependencies, _ []string) error {
		done, err := deps.Auth.Restore(ctx)
		if err != nil {
			return err
		}
		revalidateErr := <-done

		user := deps.Auth.CurrentUser()
		if user == nil {
			if revalidateErr != nil {
				return revalidateErr
			}
			return internal.ErrNotAuthenticated
		}

		status := "fresh"
		if revalidateErr != nil {
			status = "cached (" + revalidateErr.Error() + ")"
		}

		view := struct {
			*auth.CurrentUser
			State      string `json:"state"`
			SuperAdmin bool   `json:"superAdmin"`
			Status     string `json:"status"`
		}{user, deps.Auth.State().String(), deps.Permissions.IsSuperAdmin(), status}

		return render(view,
			[]string{"ID", "NAME", "ROLE", "SUPERADMIN", "STATE", "STATUS"},
			[][]string{{user.ID, user.Name, user.RoleID, yesNo(view.SuperAdmin), view.State, status}},
		)
	}),
}

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change your own password",
	RunE: withSession(func(ctx context.Context, deps *Dependencies, _ []string) error {
		dto := auth.ChangePasswordDTO{Password: newPassword, Confirm: confirmPassword}
		if dto.Password == "" {
			var err error
			if dto.Password, err = prompt("New password: "); err != nil {
				return err
			}
			if dto.Confirm, err = prompt("Confirm password: "); err != nil {
				return err
			}
		}

		if err := deps.Auth.ChangePassword(ctx, dto); err != nil {
			return err
		}
		printf("Password changed\n")
		return nil
	}),
}

var canCmd = &cobra.Command{
	Use:   "can <page> [action]",
	Short: "Show what the session may do on a page",
	Args:  cobra.RangeArgs(1, 2),
	RunE: withSession(func(ctx context.Context, deps *Dependencies, args []string) error {
		caps := deps.Permissions.Evaluate(args[0])

		if len(args) == 2 {
			action, err := permission.ParseAction(args[1])
			if err != nil {
				return err
			}
			if !caps.Allows(action) {
				return deps.Permissions.Require(args[0], action)
			}
			printf("%s on %s: granted\n", action, args[0])
			return nil
		}

		return render(caps,
			[]string{"PAGE", "VIEW", "INSERT", "UPDATE", "DELETE"},
			[][]string{{args[0], yesNo(caps.CanView), yesNo(caps.CanInsert), yesNo(caps.CanUpdate), yesNo(caps.CanDelete)}},
		)
	}),
}

func prompt(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	loginCmd.Flags().StringVarP(&loginName, "name", "n", "", "user name")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when empty)")
	_ = loginCmd.MarkFlagRequired("name")

	passwdCmd.Flags().StringVar(&newPassword, "password", "", "new password (prompted when empty)")
	passwdCmd.Flags().StringVar(&confirmPassword, "confirm", "", "new password again")
}
