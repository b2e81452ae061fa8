package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"storefront/internal/domain/entity"
	"storefront/internal/query"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// value unwraps a read for printing. A disabled read has no data and no error.
func value[T any](res query.Result[T]) (T, error) {
	if res.IsError && !res.HasData {
		var zero T

		return zero, errors.WithStack(res.Err)
	}

	return res.Data, nil
}

func productsCmd(opts *globalOptions) *cobra.Command {
	var q entity.CatalogQuery

	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) error {
				page, err := value(s.client.Catalog.Products(ctx, q))
				if err != nil {
					return err
				}
				if s.jsonOut {
					return s.printJSON(page)
				}

				w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTITLE\tPRICE\tSTOCK")
				for _, p := range page.Items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", p.ID, p.Title, p.Price.StringFixed(2), p.Stock)
				}
				if err := w.Flush(); err != nil {
					return errors.WithStack(err)
				}
				s.printf("%s (page %d of %d)\n", page.RangeLabel(), page.Page, page.TotalPages())

				return nil
			})
		},
	}

	cmd.Flags().IntVar(&q.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&q.Limit, "limit", 10, "Products per page")
	cmd.Flags().StringVarP(&q.Search, "search", "s", "", "Search text")
	cmd.Flags().StringVarP(&q.CategoryID, "category", "c", "", "Category id")

	return cmd
}

func productCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "product [id]",
		Short: "Show a product and its reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) error {
				product, err := value(s.client.Catalog.Product(ctx, args[0]))
				if err != nil {
					return err
				}
				reviews, err := value(s.client.Catalog.Reviews(ctx, args[0]))
				if err != nil {
					return err
				}
				if s.jsonOut {
					return s.printJSON(map[string]any{"product": product, "reviews": reviews})
				}

				s.printf("%s  %s\n", product.Title, product.Price.StringFixed(2))
				if product.Description != "" {
					s.printf("%s\n", product.Description)
				}
				names := make([]string, 0, len(product.Categories))
				for _, c := range product.Categories {
					names = append(names, c.Name)
				}
				s.printf("Stock: %d  Categories: %s\n", product.Stock, strings.Join(names, ", "))

				if len(reviews) == 0 {
					return nil
				}
				s.printf("\nReviews:\n")
				for _, r := range reviews {
					s.printf("  %s %s: %s\n", strings.Repeat("*", r.Rating), r.User.Fullname, r.Comment)
				}

				return nil
			})
		},
	}
}

func categoriesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) error {
				categories, err := value(s.client.Catalog.Categories(ctx))
				if err != nil {
					return err
				}
				if s.jsonOut {
					return s.printJSON(categories)
				}
				for _, c := range categories {
					s.printf("%s\t%s\n", c.ID, c.Name)
				}

				return nil
			})
		},
	}
}
