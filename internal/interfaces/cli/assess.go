package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/risknet/pkg/types/risk"
)

func newAssessCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Run a risk assessment",
	}
	cmd.AddCommand(newAssessPersonCommand(), newAssessCompanyCommand())
	return cmd
}

func newAssessPersonCommand() *cobra.Command {
	var email, phone, country string
	var companyName, registration string

	cmd := &cobra.Command{
		Use:   "person <name>",
		Short: "Assess a natural person, optionally together with a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := cliContext(cmd)
			if err != nil {
				return err
			}

			req := risk.AssessmentRequest{
				Type:   risk.InputTypePerson,
				Person: &risk.Person{Name: args[0], Email: email, Phone: phone, Country: country},
			}
			if companyName != "" {
				req.Type = risk.InputTypeBoth
				req.Company = &risk.Company{Name: companyName, RegistrationNumber: registration, Country: country}
			}
			return runAssess(cmd, cliCtx, req)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "person email")
	cmd.Flags().StringVar(&phone, "phone", "", "person phone")
	cmd.Flags().StringVar(&country, "country", "", "country code")
	cmd.Flags().StringVar(&companyName, "company", "", "also assess this company")
	cmd.Flags().StringVar(&registration, "registration", "", "company registration number")
	return cmd
}

func newAssessCompanyCommand() *cobra.Command {
	var registration, country string
	var directors []string

	cmd := &cobra.Command{
		Use:   "company <name>",
		Short: "Assess a legal entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := cliContext(cmd)
			if err != nil {
				return err
			}
			req := risk.AssessmentRequest{
				Type:    risk.InputTypeCompany,
				Company: &risk.Company{Name: args[0], RegistrationNumber: registration, Country: country, Directors: directors},
			}
			return runAssess(cmd, cliCtx, req)
		},
	}

	cmd.Flags().StringVar(&registration, "registration", "", "company registration number")
	cmd.Flags().StringVar(&country, "country", "", "country code")
	cmd.Flags().StringSliceVar(&directors, "director", nil, "named company director (repeatable)")
	return cmd
}

func runAssess(cmd *cobra.Command, cliCtx *CLIContext, req risk.AssessmentRequest) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	defer cancel()

	res, err := cliCtx.Client.Assess(ctx, req)
	if err != nil {
		return err
	}
	return printResult(cmd, cliCtx, res, func() string { return renderAssessment(res) })
}

func renderAssessment(res *risk.AssessmentResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Assessment %s\n", res.AssessmentID)
	fmt.Fprintf(&sb, "Risk: %d/100 (%s)", res.RiskScore, res.RiskLevel)
	if res.Cached {
		sb.WriteString("  [cached]")
	}
	sb.WriteString("\n\n")

	if len(res.ComponentScores) > 0 {
		sb.WriteString("Component scores:\n")
		for _, name := range []string{"sanctions", "web_intelligence", "ai_analysis", "relationships"} {
			if score, ok := res.ComponentScores[name]; ok {
				fmt.Fprintf(&sb, "  %-17s %.1f\n", name, score)
			}
		}
		sb.WriteString("\n")
	}

	if len(res.RiskFactors) > 0 {
		sb.WriteString("Risk factors:\n")
		for _, f := range res.RiskFactors {
			fmt.Fprintf(&sb, "  - [%s] %s\n", f.Source, f.Description)
		}
		sb.WriteString("\n")
	}

	if res.AISummary.Summary != "" {
		fmt.Fprintf(&sb, "Summary (%s):\n  %s\n\n", res.AISummary.Provider, res.AISummary.Summary)
	}

	if len(res.DegradedSources) > 0 {
		fmt.Fprintf(&sb, "Degraded sources: %s\n\n", strings.Join(res.DegradedSources, ", "))
	}

	if len(res.Recommendations) > 0 {
		sb.WriteString("Recommendations:\n")
		for _, r := range res.Recommendations {
			fmt.Fprintf(&sb, "  [%s] %s\n", r.Priority, r.Message)
		}
	}

	return sb.String()
}
