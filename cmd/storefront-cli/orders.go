package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"storefront/internal/domain/entity"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func checkoutCmd(opts *globalOptions) *cobra.Command {
	var (
		addr    entity.ShippingAddress
		coupons []string
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) error {
				if _, err := s.applyCoupons(ctx, coupons); err != nil {
					return err
				}

				order, err := s.client.Orders.Checkout(ctx, addr)
				if err != nil {
					return err
				}
				if s.jsonOut {
					return s.printJSON(order)
				}
				s.printf("Order %s placed, %s to pay\n", order.ID, order.FinalAmount.StringFixed(2))

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&addr.FullName, "name", "", "Recipient name")
	cmd.Flags().StringVar(&addr.Street, "street", "", "Street address")
	cmd.Flags().StringVar(&addr.City, "city", "", "City")
	cmd.Flags().StringVar(&addr.PostalCode, "postal-code", "", "Postal code")
	cmd.Flags().StringVar(&addr.Country, "country", "", "Country")
	cmd.Flags().StringVar(&addr.Phone, "phone", "", "Contact phone")
	cmd.Flags().StringSliceVar(&coupons, "coupon", nil, "Coupon code, repeatable")
	for _, name := range []string{"name", "street", "city", "postal-code", "country"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func ordersCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List your orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) error {
				orders, err := value(s.client.Orders.MyOrders(ctx))
				if err != nil {
					return err
				}
				if s.jsonOut {
					return s.printJSON(orders)
				}

				w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tDATE\tSTATUS\tITEMS\tTOTAL")
				for _, o := range orders {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
						o.ID, o.CreatedAt.Local().Format("2006-01-02"), o.Status, len(o.Items), o.FinalAmount.StringFixed(2))
				}

				return errors.WithStack(w.Flush())
			})
		},
	}

	show := &cobra.Command{
		Use:   "show [id]",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) error {
				order, err := value(s.client.Orders.Order(ctx, args[0]))
				if err != nil {
					return err
				}

				return s.printJSON(order)
			})
		},
	}

	cancel := &cobra.Command{
		Use:   "cancel [id]",
		Short: "Cancel a pending order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) error {
				order, err := s.client.Orders.Cancel(ctx, args[0])
				if err != nil {
					return err
				}
				s.printf("Order %s is %s\n", order.ID, order.Status)

				return nil
			})
		},
	}

	var out string
	qr := &cobra.Command{
		Use:   "qr [id]",
		Short: "Write the order tracking QR code as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) error {
				png, err := s.client.Orders.TrackingQR(ctx, args[0])
				if err != nil {
					return err
				}
				path := out
				if path == "" {
					path = "order-" + args[0] + ".png"
				}
				if err := os.WriteFile(path, png, 0o644); err != nil {
					return errors.Wrap(err, "write qr code")
				}
				s.printf("Wrote %s\n", path)

				return nil
			})
		},
	}
	qr.Flags().StringVarP(&out, "output", "o", "", "Output file")

	cmd.AddCommand(show, cancel, qr)

	return cmd
}
