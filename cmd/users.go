package cmd

import (
	"context"
	"os"
	"strconv"

	"github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/permission"
	"github.com/frahmantamala/star-supla/internal/user"
	"github.com/spf13/cobra"
)

var (
	userSearch   string
	userName     string
	userPassword string
	userRoleID   string
	userDetail   string
	userOutFile  string
)

var usersCmd = &cobra.Command{
	Use:     "users",
	Aliases: []string{"mukellefler"},
	Short:   "Manage users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: withSession(func(ctx context.Context, deps *Dependencies, _ []string) error {
		if err := requirePage(deps, permission.PageUsers, permission.ActionView); err != nil {
			return err
		}

		users, err := deps.Users.GetAll(ctx)
		if err != nil {
			return err
		}
		users = user.Search(users, userSearch)

		rows := make([][]string, 0, len(users))
		for _, u := range users {
			rows = append(rows, []string{u.ID, u.Name, u.RoleName, u.Detail})
		}
		return render(users, []string{"ID", "NAME", "ROLE", "DETAIL"}, rows)
	}),
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	RunE: withSession(func(ctx context.Context, deps *Dependencies, _ []string) error {
		if err := requirePage(deps, permission.PageUsers, permission.ActionInsert); err != nil {
			return err
		}

		id, err := deps.Users.Create(ctx, user.CreateUserDTO{
			Name:     userName,
			Password: userPassword,
			RoleID:   userRoleID,
			Detail:   userDetail,
		})
		if err != nil {
			return err
		}
		printf("Created user %s\n", id)
		return nil
	}),
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a user's name, role or detail",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, deps *Dependencies, args []string) error {
		if err := requirePage(deps, permission.PageUsers, permission.ActionUpdate); err != nil {
			return err
		}

		users, err := deps.Users.GetAll(ctx)
		if err != nil {
			return err
		}
		current := user.FindByID(users, args[0])
		if current == nil {
			return internal.ErrUserNotFound
		}

		dto := user.UpdateUserDTO{
			ID:     current.ID,
			Name:   orDefault(userName, current.Name),
			RoleID: orDefault(userRoleID, current.RoleID),
			Detail: orDefault(userDetail, current.Detail),
		}
		if err := deps.Users.Update(ctx, dto); err != nil {
			return err
		}
		printf("Updated user %s\n", dto.ID)
		return nil
	}),
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, deps *Dependencies, args []string) error {
		if err := requirePage(deps, permission.PageUsers, permission.ActionDelete); err != nil {
			return err
		}
		if err := deps.Users.Delete(ctx, args[0]); err != nil {
			return err
		}
		printf("Deleted user %s\n", args[0])
		return nil
	}),
}

var usersPasswdCmd = &cobra.Command{
	Use:   "passwd <id>",
	Short: "Set another user's password",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, deps *Dependencies, args []string) error {
		if err := requirePage(deps, permission.PageUsers, permission.ActionUpdate); err != nil {
			return err
		}

		password := userPassword
		if password == "" {
			var err error
			if password, err = prompt("New password: "); err != nil {
				return err
			}
		}

		if err := deps.Users.ChangePassword(ctx, args[0], password); err != nil {
			return err
		}
		printf("Password changed for user %s\n", args[0])
		return nil
	}),
}

var usersImportCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Create users from a spreadsheet",
	Long: `Create one user per row of the first sheet. The sheet needs the columns "` +
		user.ColumnTitle + `", "` + user.ColumnTaxNo + `" and "` + user.ColumnPassword + `".
Rows whose tax number is already a user name are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, deps *Dependencies, args []string) error {
		if err := requirePage(deps, permission.PageUsers, permission.ActionInsert); err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return internal.NewValidationFieldError("file", err.Error(), internal.ErrCodeInvalidImport)
		}
		defer f.Close()

		report, err := deps.Users.Import(ctx, f, userRoleID)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(report.Errors))
		for _, e := range report.Errors {
			rows = append(rows, []string{strconv.Itoa(e.Row), e.Name, e.Message})
		}
		if outputFormat != outputJSON {
			printf("Created %d, skipped %d, failed %d\n", report.Created, report.Skipped, report.Failed)
			if len(rows) == 0 {
				return nil
			}
		}
		return render(report, []string{"ROW", "NAME", "ERROR"}, rows)
	}),
}

var usersExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all users to a spreadsheet",
	RunE: withSession(func(ctx context.Context, deps *Dependencies, _ []string) error {
		if err := requirePage(deps, permission.PageUsers, permission.ActionView); err != nil {
			return err
		}

		f, err := os.Create(userOutFile)
		if err != nil {
			return internal.NewInternalError("failed to create export file", err)
		}
		if err := deps.Users.Export(ctx, f); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return internal.NewInternalError("failed to write export file", err)
		}
		printf("Exported users to %s\n", userOutFile)
		return nil
	}),
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func init() {
	usersListCmd.Flags().StringVarP(&userSearch, "search", "s", "", "filter by name or detail")

	usersCreateCmd.Flags().StringVar(&userName, "name", "", "user name")
	usersCreateCmd.Flags().StringVar(&userPassword, "password", "", "initial password")
	usersCreateCmd.Flags().StringVar(&userRoleID, "role", "", "role id")
	usersCreateCmd.Flags().StringVar(&userDetail, "detail", "", "free text detail")

	usersUpdateCmd.Flags().StringVar(&userName, "name", "", "new user name")
	usersUpdateCmd.Flags().StringVar(&userRoleID, "role", "", "new role id")
	usersUpdateCmd.Flags().StringVar(&userDetail, "detail", "", "new detail")

	usersPasswdCmd.Flags().StringVar(&userPassword, "password", "", "new password (prompted when empty)")

	usersImportCmd.Flags().StringVar(&userRoleID, "role", "", "role id given to every imported user")
	_ = usersImportCmd.MarkFlagRequired("role")

	usersExportCmd.Flags().StringVarP(&userOutFile, "file", "f", user.ExportFileName, "output file")

	usersCmd.AddCommand(usersListCmd, usersCreateCmd, usersUpdateCmd, usersDeleteCmd, usersPasswdCmd, usersImportCmd, usersExportCmd)
}
