package main

import (
	"context"
	"os"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/util"

	"github.com/spf13/cobra"
)

const passwordEnv = "STOREFRONT_PASSWORD"

func loginCmd(opts *globalOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session for later commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}

			return run(cmd, opts, func(ctx context.Context, s *session) error {
				user, err := s.client.Auth.Login(ctx, entity.Credentials{Email: email, Password: password})
				if err != nil {
					return err
				}
				s.printf("Signed in as %s (%s)\n", user.Fullname, user.Role)

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password, or set "+passwordEnv)
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func registerCmd(opts *globalOptions) *cobra.Command {
	var reg entity.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if reg.Password == "" {
				reg.Password = os.Getenv(passwordEnv)
			}

			return run(cmd, opts, func(ctx context.Context, s *session) error {
				user, err := s.client.Auth.Register(ctx, reg)
				if err != nil {
					return err
				}
				s.printf("Welcome, %s\n", user.Fullname)

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&reg.Fullname, "name", "n", "", "Full name")
	cmd.Flags().StringVarP(&reg.Email, "email", "e", "", "Account email")
	cmd.Flags().StringVar(&reg.Password, "password", "", "Account password, or set "+passwordEnv)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func logoutCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) error {
				if err := s.client.Auth.Logout(ctx); err != nil {
					return err
				}
				s.printf("Signed out\n")

				return nil
			})
		},
	}
}

func whoamiCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the resolved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) error {
				sess := s.client.Session.Snapshot()
				if s.jsonOut {
					return s.printJSON(sess)
				}

				if !sess.IsAuthenticated() {
					s.printf("Not signed in (%s)\n", sess.Status)

					return nil
				}
				s.printf("%s <%s>\nRole: %s\n", sess.User.Fullname, sess.User.Email, sess.User.Role)
				if left := time.Until(sess.ExpiresAt); !sess.ExpiresAt.IsZero() && left > 0 {
					s.printf("Token expires in %s\n", util.FormatDuration(left))
				}

				return nil
			})
		},
	}
}
