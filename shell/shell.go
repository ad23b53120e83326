/*
Package shell is the interactive menu front end of the leave service.

PURPOSE:
  Reads one line at a time from an io.Reader, builds leave.Requests and
  prints the Results. It holds no business rules: whether a request is
  accepted is decided by leave.Service.Handle.

CANCEL SENTINEL:
  Every prompt accepts "b" (any case) which returns to the menu without side
  effects. End of input behaves like "4. Exit".

SEE ALSO:
  - leave/result.go: Request/Result
  - api:             The HTTP front end over the same core
*/
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/warp/leave-tracker/calendar"
	"github.com/warp/leave-tracker/leave"
	"go.uber.org/zap"
)

const (
	menuText = `
Smart Leave Manager
1. Apply for Leave
2. View Leave History
3. Export Leave History
4. Exit
`
	choicePrompt = "Choose an option (1-4): "
)

// errBack is returned by ask when the user typed the cancel sentinel.
var errBack = errors.New("back to menu")

// Shell runs the menu loop.
type Shell struct {
	svc    *leave.Service
	in     *bufio.Scanner
	out    io.Writer
	logger *zap.Logger
}

// Option configures a Shell.
type Option func(*Shell)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Shell) {
		s.logger = l.Named("shell")
	}
}

// New creates a shell reading from in and writing to out.
func New(svc *leave.Service, in io.Reader, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		svc:    svc,
		in:     bufio.NewScanner(in),
		out:    out,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run shows the menu until the user exits, input ends or ctx is done.
// Validation failures and IO faults are reported and never end the loop;
// only a read error on the input does.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(s.out, menuText)
		choice, err := s.readLine(choicePrompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = s.applyFlow(ctx)
		case "2":
			err = s.viewFlow(ctx)
		case "3":
			err = s.exportFlow(ctx)
		case "4":
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(s.out, "Invalid choice. Try 1-4.")
			continue
		}

		switch {
		case err == nil, errors.Is(err, errBack):
		case errors.Is(err, io.EOF):
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		default:
			return err
		}
	}
}

// =============================================================================
// FLOWS
// =============================================================================

func (s *Shell) applyFlow(ctx context.Context) error {
	id, err := s.ask("Employee ID")
	if err != nil {
		return err
	}

	// Checked up front so the user doesn't type dates for nobody.
	if err := s.svc.CheckEmployee(ctx, leave.EmployeeID(id)); err != nil {
		if leave.IsNotFound(err) {
			s.fail("Employee ID not found. Please try again.")
		} else {
			s.fail(leave.Message(err))
		}
		return nil
	}

	var start calendar.Date
	for {
		raw, err := s.ask("Start Date (YYYY-MM-DD)")
		if err != nil {
			return err
		}
		if start, err = calendar.Parse(raw); err == nil {
			break
		}
		fmt.Fprintln(s.out, "Invalid date format. Try again.")
	}

	var end calendar.Date
	for {
		raw, err := s.ask("End Date (YYYY-MM-DD)")
		if err != nil {
			return err
		}
		if end, err = calendar.Parse(raw); err == nil && !end.Before(start) {
			break
		}
		fmt.Fprintln(s.out, "Invalid or out-of-order date. Try again.")
	}

	leaveType, err := s.ask("Leave Type")
	if err != nil {
		return err
	}
	reason, err := s.ask("Reason for Leave")
	if err != nil {
		return err
	}

	s.report(s.svc.Handle(ctx, leave.Request{
		Action:     leave.ActionApply,
		EmployeeID: leave.EmployeeID(id),
		Start:      start.String(),
		End:        end.String(),
		LeaveType:  leaveType,
		Reason:     reason,
	}))
	return nil
}

func (s *Shell) viewFlow(ctx context.Context) error {
	id, err := s.ask("Employee ID")
	if err != nil {
		return err
	}

	res := s.svc.Handle(ctx, leave.Request{Action: leave.ActionView, EmployeeID: leave.EmployeeID(id)})
	if res.Outcome != leave.OutcomeSuccess {
		s.report(res)
		return nil
	}
	s.renderRecords(res.Records)
	return nil
}

func (s *Shell) exportFlow(ctx context.Context) error {
	id, err := s.ask("Employee ID")
	if err != nil {
		return err
	}

	s.report(s.svc.Handle(ctx, leave.Request{Action: leave.ActionExport, EmployeeID: leave.EmployeeID(id)}))
	return nil
}

// =============================================================================
// IO HELPERS
// =============================================================================

// ask prompts for a value. It returns errBack for the cancel sentinel and
// io.EOF when input ends.
func (s *Shell) ask(label string) (string, error) {
	line, err := s.readLine(label + " (or 'b' to go back): ")
	if err != nil {
		return "", err
	}
	if strings.EqualFold(line, "b") {
		return "", errBack
	}
	return line, nil
}

func (s *Shell) readLine(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		fmt.Fprintln(s.out)
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Shell) report(res leave.Result) {
	switch res.Outcome {
	case leave.OutcomeSuccess:
		fmt.Fprintln(s.out, "✅ "+res.Message)
	case leave.OutcomeInfo:
		fmt.Fprintln(s.out, "ℹ️  "+res.Message)
	case leave.OutcomeFault:
		s.logger.Error("operation aborted", zap.String("action", string(res.Action)), zap.Error(res.Err))
		s.fail(res.Message)
	default:
		s.fail(res.Message)
	}
}

func (s *Shell) fail(msg string) {
	fmt.Fprintln(s.out, "❌ "+msg)
}

func (s *Shell) renderRecords(records []leave.Record) {
	table := tablewriter.NewWriter(s.out)
	table.SetHeader([]string{"ID", "Start", "End", "Days", "Type", "Reason"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, r := range records {
		table.Append([]string{
			strconv.FormatInt(int64(r.ID), 10),
			r.Period.Start.String(),
			r.Period.End.String(),
			strconv.Itoa(r.Duration()),
			r.Type,
			r.Reason,
		})
	}
	table.Render()
}
