package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/switchboard/internal/domain"
)

// PendingCmd lists all approval items waiting on a human.
func PendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List pending approval items",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(cmd)

			var resp struct {
				Pending []domain.ApprovalItem `json:"pending"`
			}
			if err := client.get("/v1/approvals/pending", &resp); err != nil {
				return err
			}

			if len(resp.Pending) == 0 {
				fmt.Println("No pending approvals.")
				return nil
			}

			for _, item := range resp.Pending {
				fmt.Printf("%s %s  %s\n",
					color.New(color.FgYellow).Sprint(item.ID),
					color.New(color.FgCyan).Sprintf("[%s]", item.RequesterRole),
					item.Action)
				fmt.Printf("    requested by: %s\n", item.RequestingHandler)
				if item.PayloadSummary != "" {
					fmt.Printf("    payload: %s\n", item.PayloadSummary)
				}
				if item.Reason != "" {
					fmt.Printf("    reason: %s\n", item.Reason)
				}
			}
			return nil
		},
	}
}

// ResolveCmd applies an approve/deny verdict to a pending item.
func ResolveCmd() *cobra.Command {
	var approve, deny bool
	var note string

	cmd := &cobra.Command{
		Use:   "resolve <approval-id>",
		Short: "Approve or deny a pending approval item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if approve == deny {
				return fmt.Errorf("exactly one of --approve or --deny is required")
			}
			decision := "approve"
			if deny {
				decision = "deny"
			}

			client := newAPIClient(cmd)

			var resp domain.ResolveResponse
			err := client.post("/v1/approvals/"+args[0]+"/resolve",
				domain.ResolveRequest{Decision: decision, Note: note}, &resp)
			if err != nil {
				return err
			}

			statusColor := color.New(color.FgGreen)
			if resp.Decision == string(domain.ApprovalStatusDenied) {
				statusColor = color.New(color.FgRed)
			}
			fmt.Printf("%s %s\n", resp.ID, statusColor.Sprint(resp.Decision))
			return nil
		},
	}

	cmd.Flags().BoolVar(&approve, "approve", false, "approve the item")
	cmd.Flags().BoolVar(&deny, "deny", false, "deny the item")
	cmd.Flags().StringVar(&note, "note", "", "resolution note")
	return cmd
}
