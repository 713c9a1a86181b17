package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type statusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the browsion server is reachable",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := newAPIClient()
	var resp statusResponse
	if err := client.get("/api/health", &resp); err != nil {
		return outputError(fmt.Sprintf("server at %s is unreachable: %v", ServerAddr, err))
	}

	if JSONOutput {
		return outputSuccess(resp)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintf(tw, "server\t%s\n", ServerAddr)
	fmt.Fprintf(tw, "status\t%s\n", resp.Status)
	fmt.Fprintf(tw, "version\t%s\n", resp.Version)
	return tw.Flush()
}
