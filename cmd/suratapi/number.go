package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"suratapi/internal/numbering"
	"suratapi/internal/service"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Width(16).Foreground(lipgloss.Color("8"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	numberStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder())
)

func newNumberCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "number",
		Short: "Document number utilities",
	}
	cmd.AddCommand(newNumberPreviewCommand(a))
	return cmd
}

func newNumberPreviewCommand(a *app) *cobra.Command {
	var in service.PreviewInput
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render a document number without drawing a sequence",
		Long: `Render the number a letter would get, using the unit's template unless
--template is given. No counter is touched.

Placeholders: ` + numbering.TokenUnitCode + ` ` + numbering.TokenClassification + ` ` +
			numbering.TokenSequence + ` ` + numbering.TokenYear + `

Example:
  suratapi number preview --unit 6f1c2a4e-0000-4000-8000-000000000101 --classification PR.01.01 --seq 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := a.openStores(ctx)
			if err != nil {
				return err
			}
			defer st.close()

			svc := service.NewNumberService(numbering.NewResolver(st.units, st.classes, a.cfg.NumberTemplate, a.loc))
			n, err := svc.Preview(ctx, in)
			if err != nil {
				cmd.PrintErrln(errStyle.Render(err.Error()))
				return &exitError{code: 2, err: err}
			}
			cmd.Println(numberStyle.Render(n))
			return nil
		},
	}

	cmd.Flags().StringVar(&in.UnitID, "unit", "", "unit id")
	cmd.Flags().StringVar(&in.ClassificationCode, "classification", "", "classification code")
	cmd.Flags().Int64Var(&in.Sequence, "seq", 1, "sequence number")
	cmd.Flags().IntVar(&in.Year, "year", 0, "year (default: current year)")
	cmd.Flags().StringVar(&in.Template, "template", "", "template override")
	_ = cmd.MarkFlagRequired("unit")
	_ = cmd.MarkFlagRequired("classification")
	return cmd
}
