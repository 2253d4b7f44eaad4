package cmd

import (
	"context"

	"github.com/frahmantamala/star-supla/internal/page"
	"github.com/frahmantamala/star-supla/internal/permission"
	"github.com/spf13/cobra"
)

var (
	pageName    string
	pageDetail  string
	pageIsCache bool
)

var pagesCmd = &cobra.Command{
	Use:     "pages",
	Aliases: []string{"sayfalar"},
	Short:   "Manage pages",
}

var pagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pages",
	RunE: withSession(func(ctx context.Context, deps *Dependencies, _ []string) error {
		if err := requirePage(deps, permission.PagePages, permission.ActionView); err != nil {
			return err
		}

		pages, err := deps.Pages.GetAll(ctx)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(pages))
		for _, p := range pages {
			rows = append(rows, []string{p.ID, p.Name, p.Detail, yesNo(p.IsCache)})
		}
		return render(pages, []string{"ID", "NAME", "DETAIL", "CACHED"}, rows)
	}),
}

var pagesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a page",
	RunE: withSession(func(ctx context.Context, deps *Dependencies, _ []string) error {
		if err := requirePage(deps, permission.PagePages, permission.ActionInsert); err != nil {
			return err
		}

		id, err := deps.Pages.Create(ctx, page.Page{Name: pageName, Detail: pageDetail, IsCache: pageIsCache})
		if err != nil {
			return err
		}
		printf("Created page %s\n", id)
		return nil
	}),
}

var pagesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a page",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, deps *Dependencies, args []string) error {
		if err := requirePage(deps, permission.PagePages, permission.ActionUpdate); err != nil {
			return err
		}

		p := page.Page{ID: args[0], Name: pageName, Detail: pageDetail, IsCache: pageIsCache}
		if err := deps.Pages.Update(ctx, p); err != nil {
			return err
		}
		printf("Updated page %s\n", p.ID)
		return nil
	}),
}

var pagesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a page",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, deps *Dependencies, args []string) error {
		if err := requirePage(deps, permission.PagePages, permission.ActionDelete); err != nil {
			return err
		}
		if err := deps.Pages.Delete(ctx, args[0]); err != nil {
			return err
		}
		printf("Deleted page %s\n", args[0])
		return nil
	}),
}

func init() {
	for _, c := range []*cobra.Command{pagesCreateCmd, pagesUpdateCmd} {
		c.Flags().StringVar(&pageName, "name", "", "page name")
		c.Flags().StringVar(&pageDetail, "detail", "", "free text detail")
		c.Flags().BoolVar(&pageIsCache, "cache", false, "let clients cache the page")
		_ = c.MarkFlagRequired("name")
	}

	pagesCmd.AddCommand(pagesListCmd, pagesCreateCmd, pagesUpdateCmd, pagesDeleteCmd)
}
