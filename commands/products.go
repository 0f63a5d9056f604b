package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raynott/decmart/api"
)

func newProductsCmd(app *App) *cobra.Command {
	var search, brand, category string

	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := app.Client.ListProducts(cmd.Context())
			if err != nil {
				return err
			}

			shown := 0
			out := cmd.OutOrStdout()
			for _, p := range products {
				if !matchesFilters(p, search, brand, category) {
					continue
				}
				shown++
				stock := fmt.Sprintf("%d in stock", p.CountInStock)
				if p.CountInStock == 0 {
					stock = "out of stock"
				}
				fmt.Fprintf(out, "%-26s %10s  %-16s %s\n", truncate(p.Name, 26), money(p.Price), stock, p.ID)
			}
			if shown == 0 {
				fmt.Fprintln(out, "No products match.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter by name substring")
	cmd.Flags().StringVar(&brand, "brand", "", "Filter by brand")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")

	return cmd
}

func matchesFilters(p api.Product, search, brand, category string) bool {
	if search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
		return false
	}
	if brand != "" && !strings.EqualFold(p.Brand, brand) {
		return false
	}
	if category != "" && !strings.EqualFold(p.Category, category) {
		return false
	}
	return true
}

func newProductCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show one product with its reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Client.GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var sb strings.Builder
			sb.WriteString(fmt.Sprintf("%s\n", p.Name))
			sb.WriteString(fmt.Sprintf("Price:    %s\n", money(p.Price)))
			if p.Brand != "" {
				sb.WriteString(fmt.Sprintf("Brand:    %s\n", p.Brand))
			}
			if p.Category != "" {
				sb.WriteString(fmt.Sprintf("Category: %s\n", p.Category))
			}
			sb.WriteString(fmt.Sprintf("Stock:    %d\n", p.CountInStock))
			if p.NumReviews > 0 {
				sb.WriteString(fmt.Sprintf("Rating:   %.1f (%d reviews)\n", p.Rating, p.NumReviews))
			}
			if p.Description != "" {
				sb.WriteString(fmt.Sprintf("\n%s\n", p.Description))
			}
			for _, r := range p.Reviews {
				sb.WriteString(fmt.Sprintf("\n  %s (%d/5): %s\n", r.Name, r.Rating, r.Comment))
			}

			fmt.Fprint(cmd.OutOrStdout(), sb.String())
			return nil
		},
	}
}

func newBrandsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "brands",
		Short: "List available brands",
		RunE: func(cmd *cobra.Command, args []string) error {
			brands, err := app.Client.GetBrands(cmd.Context())
			if err != nil {
				return err
			}
			for _, b := range brands {
				fmt.Fprintln(cmd.OutOrStdout(), b)
			}
			return nil
		},
	}
}

func newCategoriesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List available categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := app.Client.GetCategories(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range categories {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}

func newReviewCmd(app *App) *cobra.Command {
	var rating int
	var comment string

	cmd := &cobra.Command{
		Use:   "review <product-id>",
		Short: "Review a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireLogin(); err != nil {
				return err
			}
			if rating < 1 || rating > 5 {
				return fmt.Errorf("rating must be between 1 and 5")
			}

			if err := app.Client.AddReview(cmd.Context(), args[0], api.ReviewInput{
				Rating:  rating,
				Comment: comment,
			}); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Review submitted.")
			return nil
		},
	}

	cmd.Flags().IntVar(&rating, "rating", 0, "Rating from 1 to 5")
	cmd.Flags().StringVar(&comment, "comment", "", "Review text")
	cmd.MarkFlagRequired("rating")

	return cmd
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
