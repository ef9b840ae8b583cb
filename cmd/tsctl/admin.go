package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abygeorge8848/VolunteeringPortal/internal/dto"
)

const adminPasswordEnv = "TSCTL_ADMIN_PASSWORD"

func newCreateAdminCmd(a *app) *cobra.Command {
	var req dto.RegisterAdminRequest

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		Long:  "Create an admin account. The password is read from --password or, when omitted, from " + adminPasswordEnv + ".",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				req.Password = os.Getenv(adminPasswordEnv)
			}
			if req.Email == "" || req.Name == "" {
				return fmt.Errorf("--name and --email are required")
			}
			if len(req.Password) < 8 || len(req.Password) > 72 {
				return fmt.Errorf("password must be 8 to 72 characters")
			}

			svc, err := a.services()
			if err != nil {
				return err
			}
			admin, err := svc.Auth.RegisterAdmin(cmd.Context(), &req)
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %d created for %s\n", admin.ID, admin.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "login email")
	cmd.Flags().StringVar(&req.Password, "password", "", "initial password")
	return cmd
}

func newPurgeResetTokensCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-reset-tokens",
		Short: "Delete expired password reset tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.services()
			if err != nil {
				return err
			}
			n, err := svc.Reset.PurgeExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired token(s)\n", n)
			return nil
		},
	}
}
