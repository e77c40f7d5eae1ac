package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tentkids/internal/gate"
	"tentkids/internal/store"
)

// GateOutcome is the json payload of the gate command.
type GateOutcome struct {
	Passed   bool       `json:"passed"`
	Attempts int        `json:"attemptsLeft"`
	Locked   bool       `json:"locked"`
	State    gate.State `json:"state"`
}

// NewGateCommand runs the parent gate interactively: one answer per input line.
func NewGateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "gate",
		Short: "Solve the parent gate problem",
		Long: `Solve the parent gate problem.

Answers are read one per line from stdin. Blank lines are ignored. Three
wrong answers lock the gate for five minutes, across runs. A pass lets the
next friend send go through within five minutes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGate(cmd, opts)
		},
	}
}

func runGate(cmd *cobra.Command, opts *RootOptions) error {
	return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
		g := gate.New(opts.logger, append([]gate.Option{gate.WithClock(opts.clock)}, opts.gateOpts...)...)
		g.Restore(st.GateRecord())
		defer func() { st.SetGateRecord(g.Record()) }()

		out := opts.output(cmd)
		if err := g.Open(); err != nil {
			gs := g.State()
			out.Success(GateOutcome{Locked: true, State: gs},
				fmt.Sprintf("locked for %d seconds", gs.RemainingSeconds))
			return WrapExitError(ExitFailure, "gate unavailable", err)
		}

		prompt := func() {
			gs := g.State()
			fmt.Fprintf(out.GetErrWriter(), "%s  (%d attempts left)\n", gs.Problem, gs.Attempts)
		}
		prompt()

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			res := g.Answer(scanner.Text())
			st.SetGateRecord(g.Record())
			switch res {
			case gate.Correct:
				gs := g.State()
				return out.Success(GateOutcome{Passed: true, Attempts: gs.Attempts, State: gs}, "gate passed")
			case gate.Incorrect:
				gs := g.State()
				if gs.Locked {
					out.Success(GateOutcome{Locked: true, State: gs},
						fmt.Sprintf("locked for %d seconds", gs.RemainingSeconds))
					return WrapExitError(ExitFailure, "too many wrong answers", gate.ErrLocked)
				}
				fmt.Fprintln(out.GetErrWriter(), "wrong answer")
				prompt()
			case gate.Locked:
				return WrapExitError(ExitFailure, "gate unavailable", gate.ErrLocked)
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read answer: %w", err)
		}
		return WrapExitError(ExitFailure, "no answer given", errors.New("input closed"))
	})
}
