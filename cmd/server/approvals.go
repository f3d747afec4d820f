package main

import (
	"context"
	"fmt"

	"github.com/klm-wiki-api/internal/cache"
	"github.com/klm-wiki-api/internal/repository"
	"github.com/klm-wiki-api/internal/service"
	"github.com/klm-wiki-api/internal/storage"
	"github.com/spf13/cobra"
)

var approvalsCmd = &cobra.Command{
	Use:   "approvals",
	Short: "Approval maintenance tasks",
}

var approvalsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete approvals created during the previous calendar month",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			services := service.NewServices(repository.New(a.db), cache.Nop{}, storage.NewLocal(a.cfg.Uploads.Dir), a.cfg, a.log)

			result, err := services.Approval.PurgePreviousMonth(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		})
	},
}

func init() {
	approvalsCmd.AddCommand(approvalsPurgeCmd)
}
