package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"retailshop/internal/auth"
	"retailshop/internal/config"
	"retailshop/internal/database"
	"retailshop/internal/models"
	"retailshop/internal/repository"
	"retailshop/internal/service"
)

var (
	seedStaffUser     string
	seedStaffEmail    string
	seedStaffPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a demo catalog and a staff account",
	Long: `Seed creates a few categories with products and a staff user so the API
can be tried locally. Categories and users that already exist are left alone.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVar(&seedStaffUser, "staff-user", "admin", "Username of the staff account")
	seedCmd.Flags().StringVar(&seedStaffEmail, "staff-email", "admin@retailshop.local", "Email of the staff account")
	seedCmd.Flags().StringVar(&seedStaffPassword, "staff-password", "", "Password of the staff account (required)")
	_ = seedCmd.MarkFlagRequired("staff-password")
}

type seedCategory struct {
	category models.Category
	products []models.Product
}

var demoCatalog = []seedCategory{
	{
		category: models.Category{Name: "Kitchen", Slug: "kitchen", Description: "Cookware and small appliances"},
		products: []models.Product{
			{Name: "Electric Kettle 1.7L", Price: decimal.RequireFromString("2499.00"), Stock: 25, Description: "Stainless steel, auto shut-off"},
			{Name: "Cast Iron Skillet", Price: decimal.RequireFromString("3200.00"), Stock: 10, Description: "Pre-seasoned 26cm pan"},
			{Name: "Chef Knife", Price: decimal.RequireFromString("1850.50"), Stock: 15},
		},
	},
	{
		category: models.Category{Name: "Electronics", Slug: "electronics", Description: "Phones, audio and accessories"},
		products: []models.Product{
			{Name: "Bluetooth Speaker", Price: decimal.RequireFromString("4500.00"), Stock: 8, Description: "12h battery, splash proof"},
			{Name: "USB-C Charger 20W", Price: decimal.RequireFromString("1200.00"), Stock: 40},
		},
	},
	{
		category: models.Category{Name: "Home Textiles", Slug: "home-textiles"},
		products: []models.Product{
			{Name: "Kikoy Throw", Price: decimal.RequireFromString("950.00"), Stock: 30, Description: "Handwoven cotton"},
		},
	},
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.ConnectDB(cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	catalog := service.NewCatalogService(
		repository.NewCategoryRepository(pool),
		repository.NewProductRepository(pool),
		repository.NewReviewRepository(pool),
		repository.NewOperationRepository(pool),
		nil,
	)
	if err := seedCatalog(ctx, out, catalog); err != nil {
		return err
	}

	issuer, err := auth.NewIssuer(cfg.JWT.Secret, time.Hour)
	if err != nil {
		return fmt.Errorf("JWT_SECRET: %w", err)
	}
	accounts := service.NewAccountService(repository.NewUserRepository(pool), issuer)
	return seedStaff(ctx, out, accounts)
}

func seedCatalog(ctx context.Context, out io.Writer, catalog *service.CatalogService) error {
	for _, entry := range demoCatalog {
		category := entry.category
		err := catalog.CreateCategory(ctx, &category)
		if errors.Is(err, repository.ErrDuplicate) {
			fmt.Fprintf(out, "category %s exists, skipped\n", category.Slug)
			continue
		}
		if err != nil {
			return fmt.Errorf("seed category %s: %w", category.Slug, err)
		}

		for _, p := range entry.products {
			p.CategoryID = category.CategoryID
			if err := catalog.CreateProduct(ctx, &p); err != nil {
				return fmt.Errorf("seed product %s: %w", p.Name, err)
			}
		}
		fmt.Fprintf(out, "category %s: %d products\n", category.Slug, len(entry.products))
	}
	return nil
}

func seedStaff(ctx context.Context, out io.Writer, accounts *service.AccountService) error {
	_, err := accounts.Register(ctx, seedStaffUser, seedStaffEmail, seedStaffPassword)
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		fmt.Fprintf(out, "user %s exists\n", seedStaffUser)
	case err != nil:
		return fmt.Errorf("seed staff user: %w", err)
	}

	if err := accounts.GrantStaff(ctx, seedStaffUser); err != nil {
		return fmt.Errorf("grant staff to %s: %w", seedStaffUser, err)
	}
	fmt.Fprintf(out, "user %s is staff\n", seedStaffUser)
	return nil
}
