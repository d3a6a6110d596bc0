package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/vihar-s1/bytechef/communityworkflows"
	"github.com/vihar-s1/bytechef/internal/api"
	"github.com/vihar-s1/bytechef/internal/workflow/domain"
)

var workflowsServer string

var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "Manage stored workflows",
	Long:  `List, import and delete workflow definitions in the local store or on a bytechef server.`,
}

var workflowsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored workflows",
	Args:  cobra.NoArgs,
	RunE: withBackend(func(cmd *cobra.Command, backend api.WorkflowService, _ []string) error {
		workflows, err := backend.ListWorkflows(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing workflows: %w", err)
		}
		printWorkflows(cmd.OutOrStdout(), workflows)
		return nil
	}),
}

var importLabel string

var workflowsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a workflow definition file",
	Long:  `Import a JSON or YAML workflow definition. The format follows the file extension.`,
	Args:  cobra.ExactArgs(1),
	RunE: withBackend(func(cmd *cobra.Command, backend api.WorkflowService, args []string) error {
		path := args[0]
		format, err := domain.FormatFromExtension(path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path) //nolint:gosec // G304: path is a user argument
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		wf, err := backend.CreateWorkflow(cmd.Context(), importLabel, format, string(data))
		if err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s as %s\n", path, wf.ID)
		return nil
	}),
}

var workflowsSamplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Import the bundled sample workflows",
	Args:  cobra.NoArgs,
	RunE: withBackend(func(cmd *cobra.Command, backend api.WorkflowService, _ []string) error {
		samples, err := communityworkflows.Samples()
		if err != nil {
			return err
		}
		for _, s := range samples {
			wf, err := backend.CreateWorkflow(cmd.Context(), "", s.Format, s.Definition)
			if err != nil {
				return fmt.Errorf("importing sample %s: %w", s.Name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s as %s\n", s.Name, wf.ID)
		}
		return nil
	}),
}

var workflowsDeleteCmd = &cobra.Command{
	Use:   "delete <workflow-id>",
	Short: "Delete a stored workflow",
	Args:  cobra.ExactArgs(1),
	RunE: withBackend(func(cmd *cobra.Command, backend api.WorkflowService, args []string) error {
		if err := backend.DeleteWorkflow(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("deleting workflow: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	}),
}

func init() {
	workflowsCmd.PersistentFlags().StringVar(&workflowsServer, "server", "", "use a bytechef server at this URL instead of the local store (default server.url)")
	workflowsImportCmd.Flags().StringVar(&importLabel, "label", "", "workflow label (default the label in the definition)")

	workflowsCmd.AddCommand(workflowsListCmd, workflowsImportCmd, workflowsSamplesCmd, workflowsDeleteCmd)
	rootCmd.AddCommand(workflowsCmd)
}

func withBackend(run func(*cobra.Command, api.WorkflowService, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		serverURL := workflowsServer
		if serverURL == "" {
			serverURL = cfg.Server.URL
		}
		backend, closeBackend, err := openBackend(serverURL)
		if err != nil {
			return err
		}
		defer closeBackend()
		return run(cmd, backend, args)
	}
}

// maxLabelWidth caps the label column, in terminal cells.
const maxLabelWidth = 48

func printWorkflows(w io.Writer, workflows []*domain.Workflow) {
	if len(workflows) == 0 {
		fmt.Fprintln(w, "No workflows. Import one with 'bytechef workflows import <file>' or 'bytechef workflows samples'.")
		return
	}
	maxLen := maxIDLen(workflows)
	for _, wf := range workflows {
		label := runewidth.Truncate(wf.Label, maxLabelWidth, "…")
		fmt.Fprintf(w, "%-*s  %-4s  v%-3d  %s\n", maxLen, wf.ID, wf.Format, wf.Version, label)
	}
}

// maxIDLen returns the length of the longest workflow ID in the slice.
func maxIDLen(workflows []*domain.Workflow) int {
	maxLen := 0
	for _, wf := range workflows {
		if len(wf.ID) > maxLen {
			maxLen = len(wf.ID)
		}
	}
	return maxLen
}
