package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ceald/senhas/internal/log"
	"github.com/ceald/senhas/internal/report"
)

var (
	exportPassword string
	exportDir      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write today's guest list PDF without the staff screen",
	Long: `Authenticate with the admin password, fetch the guest list and write
lista-de-assistidos-DD-MM-YYYY.pdf. The path of the written file is printed.

Examples:
  senhas export --password secret
  SENHAS_ADMIN_PASSWORD=secret senhas export --out /srv/listas`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportPassword, "password", "p", "",
		"admin password (default: $SENHAS_ADMIN_PASSWORD)")
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", "",
		"output directory (default: admin.export_dir)")
}

// errNoPassword is returned when neither the flag nor the environment
// provides the admin password.
var errNoPassword = errors.New("admin password required: use --password or SENHAS_ADMIN_PASSWORD")

func runExport(cmd *cobra.Command, _ []string) error {
	c, err := loadedConfig()
	if err != nil {
		return err
	}

	password := exportPassword
	if password == "" {
		password = c.Admin.Password
	}
	if password == "" {
		return errNoPassword
	}

	if debugEnabled() {
		defer log.InitWriter(cmd.ErrOrStderr(), log.ParseLevel(c.Log.Level))()
	}

	provider, shutdownTracing, err := setupTracing(c)
	if err != nil {
		return err
	}
	defer shutdownTracing()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	client := newClient(c, provider)

	if err := client.Authenticate(ctx, password); err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}
	guests, err := client.GuestList(ctx)
	if err != nil {
		return fmt.Errorf("fetching guest list: %w", err)
	}

	dir := exportDir
	if dir == "" {
		dir = c.Admin.ExportDir
	}
	path, err := report.WriteFile(dir, guests, time.Now())
	if err != nil {
		return err
	}
	log.Info(log.CatReport, "guest list exported", "path", path, "guests", len(guests))
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
