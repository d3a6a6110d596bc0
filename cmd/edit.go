package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"

	"github.com/vihar-s1/bytechef/internal/log"
	"github.com/vihar-s1/bytechef/internal/ui/codeeditor"
)

// pendingSaveTimeout bounds how long edit waits for a save started on close.
const pendingSaveTimeout = 10 * time.Second

var editServer string

var editCmd = &cobra.Command{
	Use:   "edit <workflow-id>",
	Short: "Open a workflow in the code editor",
	Long: `Open a workflow definition in the terminal code editor.

Keys: ctrl+s save, ctrl+r run, ctrl+x stop, ctrl+t test configuration,
ctrl+e open in $EDITOR, esc close (unsaved changes are saved on close).`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVar(&editServer, "server", "", "edit on a bytechef server at this URL instead of the local store (default server.url)")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id := args[0]

	serverURL := editServer
	if serverURL == "" {
		serverURL = cfg.Server.URL
	}
	backend, closeBackend, err := openBackend(serverURL)
	if err != nil {
		return err
	}
	defer closeBackend()

	wf, err := backend.GetWorkflow(ctx, id)
	if err != nil {
		return fmt.Errorf("loading workflow: %w", err)
	}
	testCfg, err := backend.GetTestConfiguration(ctx, id)
	if err != nil {
		return fmt.Errorf("loading test configuration: %w", err)
	}

	zones := zone.New()
	defer zones.Close()

	model := codeeditor.NewProgram(codeeditor.Config{
		Workflow:          wf,
		RunDisabled:       backend.RunDisabled(ctx, wf),
		TestConfiguration: testCfg,
		Zones:             zones,
		OutputStyle:       cfg.UI.OutputStyle,
	}, backend)

	log.Info(log.CatUI, "Opening editor", "id", id, "version", wf.Version)
	final, err := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	).Run()
	if err != nil {
		return fmt.Errorf("running editor: %w", err)
	}

	if p, ok := final.(codeeditor.Program); ok {
		if !p.Editor().WaitPendingSaves(pendingSaveTimeout) {
			log.Warn(log.CatUI, "Gave up waiting for save on close", "id", id)
			fmt.Fprintln(cmd.ErrOrStderr(), "Warning: the last save did not finish; changes may be lost.")
		}
	}
	return nil
}
