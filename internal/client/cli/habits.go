package cli

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/stickyhabits/internal/escrow"
)

var errUsage = errors.New("usage")

func usage(format string) error {
	return fmt.Errorf("%w: %s", errUsage, format)
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	return i, nil
}

// parseRef reads "<user> <index>".
func parseRef(args []string, format string) (string, int, error) {
	if len(args) != 2 {
		return "", 0, usage(format)
	}
	index, err := parseIndex(args[1])
	if err != nil {
		return "", 0, err
	}
	return args[0], index, nil
}

// parsePage reads the optional "[who] [from] [limit]" arguments of the list
// commands. who defaults to the logged in account.
func (a *App) parsePage(args []string, format string) (string, int, int, error) {
	who := a.user()
	if len(args) > 0 {
		who = args[0]
	}
	if who == "" || len(args) > 3 {
		return "", 0, 0, usage(format)
	}

	var from, limit int
	var err error
	if len(args) > 1 {
		if from, err = parseIndex(args[1]); err != nil {
			return "", 0, 0, err
		}
	}
	if len(args) > 2 {
		if limit, err = parseIndex(args[2]); err != nil {
			return "", 0, 0, err
		}
	}
	return who, from, limit, nil
}

func (a *App) requireLogin() error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	return nil
}

// AddHabit prompts for the habit fields and the attached deposit.
func (a *App) AddHabit(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	description, err := getSimpleText(a.reader, "Describe the habit", a.out)
	if err != nil {
		return err
	}
	beneficiary, err := getSimpleText(a.reader, "Beneficiary account", a.out)
	if err != nil {
		return err
	}
	depositText, err := getSimpleText(a.reader, "Deposit (smallest units)", a.out)
	if err != nil {
		return err
	}
	deposit, err := strconv.ParseUint(depositText, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid deposit %q", depositText)
	}
	extensionText, err := getSimpleText(a.reader, "Extra time before the deadline, e.g. 48h (empty for none)", a.out)
	if err != nil {
		return err
	}
	var extension time.Duration
	if extensionText != "" {
		if extension, err = time.ParseDuration(extensionText); err != nil {
			return fmt.Errorf("invalid duration %q", extensionText)
		}
	}

	index, err := a.habitService.Add(ctx, description, extension, beneficiary, deposit)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Habit #%d added\n", index)
	return nil
}

func (a *App) SetEvidence(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) < 2 {
		return usage("evidence <index> <text>")
	}
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	if err := a.habitService.SetEvidence(ctx, index, strings.Join(args[1:], " ")); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Evidence saved")
	return nil
}

func (a *App) Upload(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) != 2 {
		return usage("upload <index> <file>")
	}
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	uri, err := a.habitService.UploadEvidence(ctx, index, args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Evidence uploaded as %s\n", uri)
	return nil
}

func (a *App) Fetch(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	user, index, err := parseRef(args, "fetch <user> <index>")
	if err != nil {
		return err
	}

	ev, err := a.habitService.FetchEvidence(ctx, user, index, a.config.DownloadDir)
	if err != nil {
		return err
	}
	if ev.Path != "" {
		fmt.Fprintf(a.out, "Evidence saved to %s\n", ev.Path)
	} else {
		fmt.Fprintf(a.out, "Evidence: %s\n", ev.Text)
	}
	return nil
}

func (a *App) Approve(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	user, index, err := parseRef(args, "approve <user> <index>")
	if err != nil {
		return err
	}

	if err := a.habitService.Approve(ctx, user, index); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Approval sent")
	return nil
}

func (a *App) Unlock(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	user, index, err := parseRef(args, "unlock <user> <index>")
	if err != nil {
		return err
	}

	receiver, err := a.habitService.Unlock(ctx, user, index)
	if err != nil {
		return err
	}
	if receiver == "" {
		fmt.Fprintln(a.out, "Nothing to unlock")
	} else {
		fmt.Fprintf(a.out, "Deposit released to %s\n", receiver)
	}
	return nil
}

func (a *App) Habits(ctx context.Context, args []string) error {
	user, from, limit, err := a.parsePage(args, "habits <user> [from] [limit]")
	if err != nil {
		return err
	}

	habits, err := a.habitService.Habits(ctx, user, from, limit)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Fprintln(a.out, "No habits")
	}
	for i, h := range habits {
		fmt.Fprintf(a.out, "#%d %s\n", from+i, formatHabit(h))
	}
	return nil
}

func (a *App) Watching(ctx context.Context, args []string) error {
	beneficiary, from, limit, err := a.parsePage(args, "watching <beneficiary> [from] [limit]")
	if err != nil {
		return err
	}

	byUser, err := a.habitService.Watching(ctx, beneficiary, from, limit)
	if err != nil {
		return err
	}
	if len(byUser) == 0 {
		fmt.Fprintln(a.out, "Nobody to watch")
	}
	for _, user := range slices.Sorted(maps.Keys(byUser)) {
		fmt.Fprintf(a.out, "%s:\n", user)
		for _, h := range byUser[user] {
			fmt.Fprintf(a.out, "  - %s\n", formatHabit(h))
		}
	}
	return nil
}

func (a *App) Balance(ctx context.Context) error {
	balance, err := a.habitService.Balance(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Locked in escrow: %d\n", balance)
	return nil
}

func (a *App) Contract(ctx context.Context) error {
	c, err := a.habitService.Contract(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Owner: %s\nDeveloper fee: %d%%\nAcquisition period: %s\nGrace period: %s\nStorage cost: %d\nBalance: %d\n",
		c.Owner, c.DevFeePercent, c.AcquisitionPeriod, c.GracePeriod, c.StorageCost, c.Balance)
	return nil
}

func formatHabit(h escrow.Habit) string {
	state := "pending"
	switch {
	case h.Settled():
		state = "settled"
	case h.Approved:
		state = "approved"
	}
	deadline := time.Unix(0, h.Deadline).UTC().Format(time.RFC3339)
	s := fmt.Sprintf("%q deadline=%s deposit=%d beneficiary=%s %s", h.Description, deadline, h.Deposit, h.Beneficiary, state)
	if h.Evidence != "" {
		s += fmt.Sprintf(" evidence=%q", h.Evidence)
	}
	return s
}
