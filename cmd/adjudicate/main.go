// Command adjudicate runs the decision engine over claim documents on disk
// without any stores. It is used for policy tuning and offline replays.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"adjudicator/internal/adjudication"
	"adjudicator/internal/claims/handler"
	"adjudicator/internal/platform/config"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "adjudicate",
		Short:        "OPD claim adjudication tooling",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.AddCommand(runCmd())
	root.AddCommand(policyCmd())
	return root
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Adjudicate one claim and print the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			intakePath, _ := cmd.Flags().GetString("intake")
			memberPath, _ := cmd.Flags().GetString("member")
			policyPath, _ := cmd.Flags().GetString("policy")

			policy, err := config.LoadPolicy(policyPath)
			if err != nil {
				return err
			}
			engine, err := adjudication.NewEngine(policy)
			if err != nil {
				return fmt.Errorf("build engine: %w", err)
			}

			var req handler.AdjudicateRequest
			if err := decodeFile(intakePath, &req); err != nil {
				return fmt.Errorf("read intake: %w", err)
			}
			if err := req.Validate(); err != nil {
				return err
			}

			var member *adjudication.Member
			if memberPath != "" {
				member = &adjudication.Member{}
				if err := decodeFile(memberPath, member); err != nil {
					return fmt.Errorf("read member: %w", err)
				}
			}

			res := engine.Adjudicate(member, req.Intake())
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().String("intake", "", "Path to the claim intake JSON")
	cmd.Flags().String("member", "", "Path to the member snapshot JSON (omit for non-members)")
	cmd.Flags().String("policy", "", "Path to a policy YAML overriding the defaults")
	_ = cmd.MarkFlagRequired("intake")
	return cmd
}

func policyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Print the effective policy as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			policyPath, _ := cmd.Flags().GetString("policy")
			policy, err := config.LoadPolicy(policyPath)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(policy); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().String("policy", "", "Path to a policy YAML overriding the defaults")
	return cmd
}

func decodeFile(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
