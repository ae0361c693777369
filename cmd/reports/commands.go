package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/srbenoit/mathops-db-sub010/internal/models"
	"github.com/srbenoit/mathops-db-sub010/internal/service"
	appErrors "github.com/srbenoit/mathops-db-sub010/pkg/errors"
)

type reportGenerator interface {
	Generate(ctx context.Context, kind models.ReportKind, format models.ReportFormat, rawTerm string) (*service.ExportResult, error)
}

type runner struct {
	reports reportGenerator
	term    string
	format  string
	logger  *zap.Logger
}

type bootstrapFunc func(ctx context.Context) (*runner, func(), error)

var descriptions = map[models.ReportKind]string{
	models.ReportMilestoneCheck:  "Validate every milestone schedule of the term",
	models.ReportPaceSummary:     "Count students by pace, track and course order",
	models.ReportDeadlineStatus:  "Report on-time, late and overdue milestones per student",
	models.ReportPaceOrderRepair: "List or apply pace order corrections",
}

func newRootCmd(boot bootstrapFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "reports",
		Short:         "Run MathOps batch reports",
		Long:          "Runs batch reports for the term configured in REPORTS_TERM (the active term when blank) against the database profile named by MATHOPS_PROFILE.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	for _, kind := range models.ReportKinds {
		kind := kind
		root.AddCommand(&cobra.Command{
			Use:   string(kind),
			Short: descriptions[kind],
			Args:  cobra.NoArgs,
			RunE:  withRunner(boot, kind),
		})
	}

	root.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "Run every report in order",
		Args:  cobra.NoArgs,
		RunE:  withRunner(boot, models.ReportKinds...),
	})

	return root
}

// withRunner connects once, then runs kinds in order. A failed report is
// reported and the remaining ones still run.
func withRunner(boot bootstrapFunc, kinds ...models.ReportKind) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		r, cleanup, err := boot(cmd.Context())
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "reports:", err)
			return err
		}
		defer cleanup()

		var failed []error
		for _, kind := range kinds {
			if err := r.run(cmd.Context(), cmd.OutOrStdout(), kind); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", kind, appErrors.FromError(err).Message)
				failed = append(failed, fmt.Errorf("%s: %w", kind, err))
			}
		}
		return errors.Join(failed...)
	}
}

func (r *runner) run(ctx context.Context, out io.Writer, kind models.ReportKind) error {
	logger := r.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	result, err := r.reports.Generate(ctx, kind, models.ReportFormat(r.format), r.term)
	if err != nil {
		logger.Error("report failed", zap.String("report", string(kind)), zap.Error(err))
		return err
	}
	fmt.Fprintf(out, "%s\t%s\t%s\t%d bytes\n", result.Kind, result.Term, result.RelativePath, result.Size)
	return nil
}
