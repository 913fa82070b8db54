// Package cli implements adminctl, the terminal front end over the same
// page view-models the web console uses.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"admin-console/internal/pages"
	"admin-console/internal/services"
	"admin-console/pkg/common"
	"admin-console/pkg/validation"
)

// Env is what a command runs against.
type Env struct {
	Auth      *services.AuthService
	Workspace *pages.Workspace
	Out       io.Writer
	Err       io.Writer
	// Password is used by login when -password is not given.
	Password string
}

type command struct {
	usage string
	run   func(ctx context.Context, env *Env, args []string) error
}

var commands = map[string]command{
	"login":         {"login -email EMAIL [-password PW]", runLogin},
	"logout":        {"logout", runLogout},
	"lists":         {"lists", runLists},
	"list":          {"list NAME [-f key=value]... [-sort COL [-desc]] [-page N]", runList},
	"export":        {"export NAME [-f key=value]... [-o FILE]", runExport},
	"dashboard":     {"dashboard", runDashboard},
	"user":          {"user ID [-block|-unblock]", runUser},
	"network":       {"network UID [-page N]", runNetwork},
	"balance":       {"balance -chain CHAIN [-address ADDR]", runBalance},
	"check-sweep":   {"check-sweep -chain CHAIN -address ADDR", runCheckSweep},
	"sweep":         {"sweep -chain CHAIN -address ADDR -to ADDR", runSweep},
	"sweep-all":     {"sweep-all -chain CHAIN -to ADDR", runSweepAll},
	"roi":           {"roi [-set RATE [-cascade]]", runROI},
	"trade-summary": {"trade-summary", runTradeSummary},
	"trade-create":  {"trade-create -pair PAIR -direction UP|DOWN -amount N ... (see -h)", runTradeCreate},
	"credit":        {"credit -uid UID -amount N [-note TEXT]", runCredit},
}

// Run executes one command and returns the process exit code.
func Run(ctx context.Context, env *Env, args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" {
		usage(env.Err)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(env.Err, "unknown command %q\n\n", args[0])
		usage(env.Err)
		return 2
	}
	if args[0] != "login" && !env.Auth.LoggedIn(ctx) {
		printError(env.Err, "not logged in, run: adminctl login -email EMAIL")
		return 1
	}

	err := cmd.run(ctx, env, args[1:])
	printNotices(env.Err, env.Workspace.Toasts.Drain())
	if err == nil {
		return 0
	}
	var usageErr *usageError
	switch {
	case errors.As(err, &usageErr):
		fmt.Fprintf(env.Err, "usage: adminctl %s\n", cmd.usage)
		return 2
	case common.Classify(err) == common.ClassAuth:
		printError(env.Err, "session expired, run: adminctl login")
	case common.Classify(err) == common.ClassValidation:
		var verr *validation.Error
		if !errors.As(err, &verr) {
			printError(env.Err, err.Error())
			break
		}
		for _, f := range verr.Fields {
			printError(env.Err, f.Message)
		}
	case common.Classify(err) == common.ClassNetwork:
		printError(env.Err, common.Message(err))
	}
	// application errors were already shown as a notice
	return 1
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "usage: adminctl COMMAND [flags]")
	for _, n := range names {
		fmt.Fprintf(w, "  %s\n", commands[n].usage)
	}
}

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func newFlags(name string, env *Env) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.Err)
	return fs
}

// parse accepts one leading positional argument before the flags.
func parse(fs *flag.FlagSet, args []string, positional bool) (string, error) {
	var pos string
	if positional {
		if len(args) == 0 || strings.HasPrefix(args[0], "-") {
			return "", &usageError{"missing argument"}
		}
		pos, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return "", &usageError{err.Error()}
	}
	return pos, nil
}

// filterFlag collects repeated -f key=value flags.
type filterFlag map[string]string

func (f filterFlag) String() string {
	parts := make([]string, 0, len(f))
	for k, v := range f {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func (f filterFlag) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return fmt.Errorf("filter %q is not key=value", s)
	}
	f[k] = v
	return nil
}

func runLogin(ctx context.Context, env *Env, args []string) error {
	fs := newFlags("login", env)
	email := fs.String("email", "", "operator email")
	password := fs.String("password", "", "password (default $ADMIN_PASSWORD)")
	if _, err := parse(fs, args, false); err != nil {
		return err
	}
	if *password == "" {
		*password = env.Password
	}
	if *email == "" || *password == "" {
		return &usageError{"email and password are required"}
	}
	res, err := env.Auth.Login(ctx, *email, *password)
	if err != nil {
		printError(env.Err, common.Message(err))
		return err
	}
	who := res.Admin.Email
	if who == "" {
		who = *email
	}
	printOK(env.Out, "Logged in as "+who)
	return nil
}

func runLogout(ctx context.Context, env *Env, _ []string) error {
	if err := env.Auth.Logout(ctx); err != nil {
		return err
	}
	printOK(env.Out, "Logged out")
	return nil
}

func runLists(_ context.Context, env *Env, _ []string) error {
	for _, n := range env.Workspace.ListNames() {
		fmt.Fprintln(env.Out, n)
	}
	return nil
}

func lookupList(env *Env, name string) (pages.Lister, error) {
	l, ok := env.Workspace.List(name)
	if !ok {
		return nil, &usageError{fmt.Sprintf("unknown list %q (one of %s)", name, strings.Join(env.Workspace.ListNames(), ", "))}
	}
	return l, nil
}

func runList(ctx context.Context, env *Env, args []string) error {
	fs := newFlags("list", env)
	filters := filterFlag{}
	fs.Var(filters, "f", "filter key=value, repeatable")
	sortCol := fs.String("sort", "", "sort column")
	desc := fs.Bool("desc", false, "sort descending")
	page := fs.Int("page", 0, "page as the pager shows it")
	name, err := parse(fs, args, true)
	if err != nil {
		return err
	}
	l, err := lookupList(env, name)
	if err != nil {
		return err
	}

	q := pages.ListQuery{Filters: filters, Sort: pages.Sort{Column: *sortCol, Order: pages.SortAsc}, UIPage: *page}
	if *desc {
		q.Sort.Order = pages.SortDesc
	}
	if err := l.Open(ctx, q); err != nil {
		return err
	}
	return renderList(env.Out, l.Snapshot())
}

func runExport(ctx context.Context, env *Env, args []string) error {
	fs := newFlags("export", env)
	filters := filterFlag{}
	fs.Var(filters, "f", "filter key=value, repeatable")
	out := fs.String("o", "", "output file (default stdout)")
	name, err := parse(fs, args, true)
	if err != nil {
		return err
	}
	l, err := lookupList(env, name)
	if err != nil {
		return err
	}
	if err := l.StageFilters(filters); err != nil {
		return err
	}

	if *out == "" {
		_, err = l.Export(ctx, env.Out)
		return err
	}
	tmp := *out + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)
	rows, err := l.Export(ctx, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, *out); err != nil {
		return err
	}
	printOK(env.Out, fmt.Sprintf("Wrote %d rows to %s", rows, *out))
	return nil
}

func runDashboard(ctx context.Context, env *Env, _ []string) error {
	d := env.Workspace.Dashboard
	if err := d.Load(ctx); err != nil {
		return err
	}
	rows := [][]string{}
	for _, m := range d.View().Metrics {
		rows = append(rows, []string{m.Label, m.Value})
	}
	renderTable(env.Out, []string{"Metric", "Value"}, rows)
	return nil
}

func runUser(ctx context.Context, env *Env, args []string) error {
	fs := newFlags("user", env)
	block := fs.Bool("block", false, "block the user")
	unblock := fs.Bool("unblock", false, "unblock the user")
	id, err := parse(fs, args, true)
	if err != nil {
		return err
	}
	users := env.Workspace.Users
	switch {
	case *block && *unblock:
		return &usageError{"-block and -unblock are exclusive"}
	case *block, *unblock:
		if err := users.SetBlocked(ctx, id, *block); err != nil {
			return err
		}
	}
	u, err := users.Detail(ctx, id)
	if err != nil {
		return err
	}
	return renderObject(env.Out, u)
}

func runNetwork(ctx context.Context, env *Env, args []string) error {
	fs := newFlags("network", env)
	page := fs.Int("page", 1, "page")
	uid, err := parse(fs, args, true)
	if err != nil {
		return err
	}
	p := env.Workspace.Network(uid)
	if err := p.GoTo(ctx, *page); err != nil {
		return err
	}
	return renderList(env.Out, p.Snapshot())
}
