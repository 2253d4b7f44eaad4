package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/permission"
	"github.com/frahmantamala/star-supla/internal/role"
	"github.com/spf13/cobra"
)

var (
	roleName   string
	roleDetail string
	roleGrants []string
)

var rolesCmd = &cobra.Command{
	Use:     "roles",
	Aliases: []string{"roller"},
	Short:   "Manage roles and their page permissions",
}

var rolesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List roles",
	RunE: withSession(func(ctx context.Context, deps *Dependencies, _ []string) error {
		if err := requirePage(deps, permission.PageRoles, permission.ActionView); err != nil {
			return err
		}

		roles, err := deps.Roles.GetAll(ctx)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(roles))
		for _, r := range roles {
			rows = append(rows, []string{r.ID, r.Name, r.Detail, fmt.Sprint(len(r.PageList))})
		}
		return render(roles, []string{"ID", "NAME", "DETAIL", "PAGES"}, rows)
	}),
}

var rolesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a role's page permissions",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, deps *Dependencies, args []string) error {
		if err := requirePage(deps, permission.PageRoles, permission.ActionView); err != nil {
			return err
		}

		r, err := deps.Roles.GetByID(ctx, args[0])
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(r.PageList))
		for _, p := range r.PageList {
			rows = append(rows, []string{p.PageName, yesNo(p.Me), yesNo(p.View), yesNo(p.Insert), yesNo(p.Update), yesNo(p.Delete)})
		}
		return render(r, []string{"PAGE", "ME", "VIEW", "INSERT", "UPDATE", "DELETE"}, rows)
	}),
}

var rolesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a role",
	Long: `Create a role with one permission entry per page. Every capability starts
off; --grant "Page=view,insert" switches some on and may be repeated.`,
	RunE: withSession(func(ctx context.Context, deps *Dependencies, _ []string) error {
		if err := requirePage(deps, permission.PageRoles, permission.ActionInsert); err != nil {
			return err
		}

		pages, err := deps.Pages.GetAll(ctx)
		if err != nil {
			return err
		}
		r := role.Role{Name: roleName, Detail: roleDetail, PageList: role.NewPageList(pages)}
		if err := applyGrants(r.PageList, roleGrants); err != nil {
			return err
		}

		id, err := deps.Roles.Create(ctx, r)
		if err != nil {
			return err
		}
		printf("Created role %s\n", id)
		return nil
	}),
}

var rolesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Rename a role or grant it more capabilities",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, deps *Dependencies, args []string) error {
		if err := requirePage(deps, permission.PageRoles, permission.ActionUpdate); err != nil {
			return err
		}

		r, err := deps.Roles.GetByID(ctx, args[0])
		if err != nil {
			return err
		}

		pages, err := deps.Pages.GetAll(ctx)
		if err != nil {
			return err
		}
		r.PageList = withMissingPages(r.PageList, role.NewPageList(pages))
		r.Name = orDefault(roleName, r.Name)
		r.Detail = orDefault(roleDetail, r.Detail)
		if err := applyGrants(r.PageList, roleGrants); err != nil {
			return err
		}

		if err := deps.Roles.Update(ctx, *r); err != nil {
			return err
		}
		printf("Updated role %s\n", r.ID)
		return nil
	}),
}

var rolesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a role",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, deps *Dependencies, args []string) error {
		if err := requirePage(deps, permission.PageRoles, permission.ActionDelete); err != nil {
			return err
		}
		if err := deps.Roles.Delete(ctx, args[0]); err != nil {
			return err
		}
		printf("Deleted role %s\n", args[0])
		return nil
	}),
}

// applyGrants reads "Page=action,action" specs.
func applyGrants(list []role.PagePermission, grants []string) error {
	for _, g := range grants {
		target, actions, ok := strings.Cut(g, "=")
		if !ok || strings.TrimSpace(target) == "" {
			return internal.NewValidationFieldError("grant", fmt.Sprintf("grant %q is not Page=actions", g), internal.ErrCodeValidationFailed)
		}

		matched, err := role.Grant(list, strings.TrimSpace(target), strings.Split(actions, ",")...)
		if err != nil {
			return err
		}
		if !matched {
			return internal.NewValidationFieldError("grant", fmt.Sprintf("unknown page %q", target), internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

// withMissingPages appends entries for pages created after the role was.
func withMissingPages(list, all []role.PagePermission) []role.PagePermission {
	present := make(map[string]bool, len(list))
	for _, p := range list {
		present[p.PageID] = true
	}
	for _, p := range all {
		if !present[p.PageID] {
			list = append(list, p)
		}
	}
	return list
}

func init() {
	for _, c := range []*cobra.Command{rolesCreateCmd, rolesUpdateCmd} {
		c.Flags().StringVar(&roleName, "name", "", "role name")
		c.Flags().StringVar(&roleDetail, "detail", "", "free text detail")
		c.Flags().StringArrayVar(&roleGrants, "grant", nil, `capabilities as "Page=view,insert,update,delete,me"`)
	}

	rolesCmd.AddCommand(rolesListCmd, rolesShowCmd, rolesCreateCmd, rolesUpdateCmd, rolesDeleteCmd)
}
