package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/switchboard/internal/domain"
)

// ClassifyCmd routes a message through the classifier for a quick check.
func ClassifyCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "classify <message>",
		Short: "Classify a message and show the routing decision",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(cmd)

			var decision domain.RoutingDecision
			err := client.post("/v1/classify", domain.ClassifyRequest{
				Source:   "swbctl",
				UserRole: domain.Role(role),
				Message:  strings.Join(args, " "),
			}, &decision)
			if err != nil {
				return err
			}

			fmt.Printf("intent:   %s\n", color.New(color.FgCyan).Sprint(decision.Intent))
			fmt.Printf("handler:  %s\n", decision.TargetHandler)
			fmt.Printf("tier:     %s\n", decision.ModelTier)
			if decision.Dangerous {
				fmt.Printf("danger:   %s (%s)\n", color.New(color.FgRed).Sprint("DANGEROUS"), strings.Join(decision.DangerTags, ", "))
			}
			if decision.RequiresApproval {
				fmt.Printf("approval: %s\n", color.New(color.FgYellow).Sprint("required"))
			}
			fmt.Printf("reason:   %s\n", decision.Reason)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", string(domain.RoleAdmin), "requester role (OWNER, ADMIN, AGENT)")
	return cmd
}
