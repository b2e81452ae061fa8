package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"storefront/internal/domain/entity"
	"storefront/internal/usecase"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func cartCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the cart with its priced summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) error {
				return s.showCart(ctx)
			})
		},
	}

	var quantity int
	add := &cobra.Command{
		Use:   "add [productId]",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) error {
				product, err := value(s.client.Catalog.Product(ctx, args[0]))
				if err != nil {
					return err
				}
				if _, err := s.client.Cart.Add(ctx, usecase.AddToCartInput{Product: product.CartProduct(), Quantity: quantity}); err != nil {
					return err
				}
				s.printf("Added %d x %s\n", quantity, product.Title)

				return nil
			})
		},
	}
	add.Flags().IntVarP(&quantity, "quantity", "q", 1, "Quantity to add")

	set := &cobra.Command{
		Use:   "set [productId] [quantity]",
		Short: "Change the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.Errorf("quantity %q is not a number", args[1])
			}

			return run(cmd, opts, func(ctx context.Context, s *session) error {
				_, err := s.client.Cart.UpdateQuantity(ctx, args[0], qty)

				return err
			})
		},
	}

	remove := &cobra.Command{
		Use:   "remove [productId]",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) error {
				_, err := s.client.Cart.Remove(ctx, args[0])

				return err
			})
		},
	}

	clearCart := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) error {
				return s.client.Cart.Clear(ctx)
			})
		},
	}

	cmd.AddCommand(add, set, remove, clearCart)

	return cmd
}

func (s *session) showCart(ctx context.Context) error {
	cart, err := value(s.client.Cart.Cart(ctx))
	if err != nil {
		return err
	}
	summary, err := value(s.client.Cart.Summary(ctx))
	if err != nil {
		return err
	}
	if s.jsonOut {
		return s.printJSON(map[string]any{"cart": cart, "summary": summary, "coupons": s.client.Coupons.State()})
	}

	if len(cart.Items) == 0 {
		s.printf("Your cart is empty\n")

		return nil
	}

	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tTITLE\tQTY\tPRICE\tSUBTOTAL")
	for _, item := range cart.Items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			item.Product.ID, item.Product.Title, item.Quantity,
			item.Product.Price.StringFixed(2), item.Subtotal().StringFixed(2))
	}
	if err := w.Flush(); err != nil {
		return errors.WithStack(err)
	}

	s.printf("\nItems: %d\n", cart.Count())
	s.printf("Total: %s\n", summary.Total.StringFixed(2))
	if summary.Discount.IsPositive() {
		s.printf("Discount: -%s\n", summary.Discount.StringFixed(2))
	}
	s.printf("To pay: %s\n", summary.FinalAmount.StringFixed(2))

	return nil
}

// purchaseAmount is the priced cart total, or the local subtotal while the
// summary is unavailable.
func (s *session) purchaseAmount(ctx context.Context) decimal.Decimal {
	cart := s.client.Cart.Cart(ctx)
	if !cart.HasData {
		return decimal.Zero
	}
	if summary := s.client.Cart.Summary(ctx); summary.HasData {
		return summary.Data.Total
	}

	return cart.Data.Subtotal()
}

// applyCoupons validates codes in order. Coupons live only for one
// invocation, so commands that need them take them as flags.
func (s *session) applyCoupons(ctx context.Context, codes []string) ([]entity.Coupon, error) {
	accepted := make([]entity.Coupon, 0, len(codes))
	for _, code := range codes {
		coupon, err := s.client.Coupons.Apply(ctx, code, s.purchaseAmount(ctx))
		if err != nil {
			return nil, errors.Wrapf(err, "coupon %s", entity.NormalizeCouponCode(code))
		}
		accepted = append(accepted, *coupon)
	}

	return accepted, nil
}

func couponCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "coupon [code...]",
		Short: "Check coupons against the current cart and show the discounted total",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) error {
				accepted, err := s.applyCoupons(ctx, args)
				if err != nil {
					return err
				}
				for _, c := range accepted {
					s.printf("%s accepted (%s %s)\n", c.Code, c.Value.String(), c.Type)
				}

				return s.showCart(ctx)
			})
		},
	}
}
