package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ceald/senhas/internal/admin"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Staff screen: today's guest list and PDF export",
	Long: `Open the staff screen. After the admin password is accepted the
guest list is shown; r refreshes it and p writes the PDF to admin.export_dir.`,
	RunE: runAdmin,
}

func init() {
	rootCmd.AddCommand(adminCmd)
}

func runAdmin(cmd *cobra.Command, _ []string) error {
	c, err := loadedConfig()
	if err != nil {
		return err
	}

	cleanupLog, err := setupLogging(c)
	if err != nil {
		return err
	}
	defer cleanupLog()

	provider, shutdownTracing, err := setupTracing(c)
	if err != nil {
		return err
	}
	defer shutdownTracing()

	model := admin.New(newClient(c, provider),
		admin.WithExportDir(c.Admin.ExportDir),
		admin.WithContext(cmd.Context()),
	)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
