package cmd

import (
	"context"
	"strconv"

	"github.com/frahmantamala/star-supla/internal/permission"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count users, pages and roles visible to the session",
	RunE: withSession(func(ctx context.Context, deps *Dependencies, _ []string) error {
		stats, err := deps.Dashboard.Stats(ctx)
		if err != nil {
			return err
		}
		if !stats.CanView && outputFormat != outputJSON {
			printf("No sections are visible to this session\n")
			return nil
		}

		count := func(page string, n int) string {
			if !deps.Permissions.Evaluate(page).CanView {
				return "-"
			}
			return strconv.Itoa(n)
		}
		return render(stats,
			[]string{"USERS", "PAGES", "ROLES"},
			[][]string{{
				count(permission.PageUsers, stats.Users),
				count(permission.PagePages, stats.Pages),
				count(permission.PageRoles, stats.Roles),
			}},
		)
	}),
}
