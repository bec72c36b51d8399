package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/spaghettifunk/meshbridge/bridge/exchange"
)

func (a *App) newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Import the pending exchange file(s) into the selected meshes",
		Long: `Import reads the primary exchange file, or every file in the fallback
folder when the primary file is missing, and reconciles each one into the
current selection. Imported files are deleted once processed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openScene()
			if err != nil {
				return err
			}
			defer s.Close()

			notice, _ := a.newCoordinator(s).Import()
			if notice.Level == exchange.NoticeError {
				return errors.New(notice.Message)
			}
			a.printf("%s\n", notice.Message)
			return nil
		},
	}
}

func (a *App) newExportCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the selected meshes for the external tool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openScene()
			if err != nil {
				return err
			}
			defer s.Close()

			written, err := exchange.NewExporter(a.cfg.Export, a.cfg.ImportOrientation(), s).Export(format)
			for _, path := range written {
				a.printf("%s\n", path)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "export format: obj (default from config)")
	return cmd
}

func (a *App) newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Import exchange files as soon as the external tool writes them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openScene()
			if err != nil {
				return err
			}
			defer s.Close()

			return a.newCoordinator(s).Watch(cmd.Context(), func(n exchange.Notice, _ exchange.BatchOutcome) {
				n.Log()
				a.printf("%s\n", n.Message)
			})
		},
	}
}
