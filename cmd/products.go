package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/object"
	"github.com/frahmantamala/star-supla/internal/product"
	"github.com/spf13/cobra"
)

var (
	productActiveOnly bool
	productName       string
	productStock      int
	productActive     bool
	productImage      string
	productImageURL   string
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Manage reservable products",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	RunE: withSession(func(ctx context.Context, deps *Dependencies, _ []string) error {
		products, err := deps.Products.GetAll(ctx)
		if err != nil {
			return err
		}
		if productActiveOnly {
			products = product.Active(products)
		}

		rows := make([][]string, 0, len(products))
		for _, p := range products {
			rows = append(rows, []string{p.ID, p.Name, strconv.Itoa(p.Stock), yesNo(p.IsActive), p.ImageURL})
		}
		return render(products, []string{"ID", "NAME", "STOCK", "ACTIVE", "IMAGE"}, rows)
	}),
}

var productsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a product",
	Long:  `Create a product. --image uploads a local file first; --image-url reuses an uploaded one.`,
	RunE: withSession(func(ctx context.Context, deps *Dependencies, _ []string) error {
		imageURL, err := productImageFor(ctx, deps, productImageURL)
		if err != nil {
			return err
		}

		id, err := deps.Products.Create(ctx, product.Product{
			Name:     productName,
			ImageURL: imageURL,
			Stock:    productStock,
			IsActive: productActive,
		})
		if err != nil {
			return err
		}
		printf("Created product %s\n", id)
		return nil
	}),
}

var productsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, deps *Dependencies, args []string) error {
			p, err := deps.Products.GetByID(ctx, args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				p.Name = productName
			}
			if flags.Changed("stock") {
				p.Stock = productStock
			}
			if flags.Changed("active") {
				p.IsActive = productActive
			}
			if p.ImageURL, err = productImageFor(ctx, deps, orDefault(productImageURL, p.ImageURL)); err != nil {
				return err
			}

			if err := deps.Products.Update(ctx, *p); err != nil {
				return err
			}
			printf("Updated product %s\n", p.ID)
			return nil
		})(cmd, args)
	},
}

var productsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a product and its image",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, deps *Dependencies, args []string) error {
		if err := deps.Products.Delete(ctx, args[0]); err != nil {
			return err
		}
		printf("Deleted product %s\n", args[0])
		return nil
	}),
}

var productsUploadCmd = &cobra.Command{
	Use:   "upload-image <file>",
	Short: "Upload a product image and print its URL",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, deps *Dependencies, args []string) error {
		url, err := uploadProductImage(ctx, deps, args[0])
		if err != nil {
			return err
		}
		printf("%s\n", url)
		return nil
	}),
}

// productImageFor uploads --image when given, otherwise keeps fallback.
func productImageFor(ctx context.Context, deps *Dependencies, fallback string) (string, error) {
	if productImage == "" {
		return fallback, nil
	}
	return uploadProductImage(ctx, deps, productImage)
}

func uploadProductImage(ctx context.Context, deps *Dependencies, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", internal.NewValidationFieldError("image", err.Error(), internal.ErrCodeMissingImage)
	}
	defer f.Close()

	return deps.Products.UploadImage(ctx, object.File{Name: filepath.Base(path), Reader: f})
}

func init() {
	productsListCmd.Flags().BoolVar(&productActiveOnly, "active", false, "only active products")

	for _, c := range []*cobra.Command{productsCreateCmd, productsUpdateCmd} {
		c.Flags().StringVar(&productName, "name", "", "product name")
		c.Flags().IntVar(&productStock, "stock", 0, "units available per day")
		c.Flags().BoolVar(&productActive, "active", true, "product can be reserved")
		c.Flags().StringVar(&productImage, "image", "", "local image file to upload")
		c.Flags().StringVar(&productImageURL, "image-url", "", "already uploaded image URL")
	}

	productsCmd.AddCommand(productsListCmd, productsCreateCmd, productsUpdateCmd, productsDeleteCmd, productsUploadCmd)
}
