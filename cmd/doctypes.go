package cmd

import (
	"context"
	"strconv"

	"github.com/frahmantamala/star-supla/internal/documenttype"
	"github.com/spf13/cobra"
)

var (
	doctypeName   string
	doctypeDetail string
	doctypeActive bool
	doctypeOrder  int
)

var doctypesCmd = &cobra.Command{
	Use:   "doctypes",
	Short: "Manage document types",
}

var doctypesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List document types in display order",
	RunE: withSession(func(ctx context.Context, deps *Dependencies, _ []string) error {
		items, err := deps.DocumentTypes.GetAll(ctx)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(items))
		for _, d := range items {
			rows = append(rows, []string{d.ID, strconv.Itoa(d.Order), d.Name, yesNo(d.IsActive), d.Detail})
		}
		return render(items, []string{"ID", "ORDER", "NAME", "ACTIVE", "DETAIL"}, rows)
	}),
}

var doctypesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a document type",
	RunE: withSession(func(ctx context.Context, deps *Dependencies, _ []string) error {
		id, err := deps.DocumentTypes.Create(ctx, documenttype.DocumentType{
			Name:     doctypeName,
			Detail:   doctypeDetail,
			IsActive: doctypeActive,
			Order:    doctypeOrder,
		})
		if err != nil {
			return err
		}
		printf("Created document type %s\n", id)
		return nil
	}),
}

var doctypesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a document type",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, deps *Dependencies, args []string) error {
		err := deps.DocumentTypes.Update(ctx, documenttype.DocumentType{
			ID:       args[0],
			Name:     doctypeName,
			Detail:   doctypeDetail,
			IsActive: doctypeActive,
			Order:    doctypeOrder,
		})
		if err != nil {
			return err
		}
		printf("Updated document type %s\n", args[0])
		return nil
	}),
}

var doctypesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a document type",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, deps *Dependencies, args []string) error {
		if err := deps.DocumentTypes.Delete(ctx, args[0]); err != nil {
			return err
		}
		printf("Deleted document type %s\n", args[0])
		return nil
	}),
}

func init() {
	for _, c := range []*cobra.Command{doctypesCreateCmd, doctypesUpdateCmd} {
		c.Flags().StringVar(&doctypeName, "name", "", "document type name")
		c.Flags().StringVar(&doctypeDetail, "detail", "", "free text detail")
		c.Flags().BoolVar(&doctypeActive, "active", true, "offered to users")
		c.Flags().IntVar(&doctypeOrder, "order", 0, "display position")
		_ = c.MarkFlagRequired("name")
	}

	doctypesCmd.AddCommand(doctypesListCmd, doctypesCreateCmd, doctypesUpdateCmd, doctypesDeleteCmd)
}
