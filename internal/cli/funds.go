package cli

import (
	"context"
	"flag"
	"fmt"

	"admin-console/internal/models"
	"admin-console/internal/pages"
)

type treasuryFlags struct {
	chain   *string
	address *string
	to      *string
}

func treasuryArgs(name string, env *Env, args []string) (*pages.TreasuryPage, error) {
	fs := newFlags(name, env)
	f := treasuryFlags{
		chain:   fs.String("chain", string(models.ChainBSC), "chain"),
		address: fs.String("address", "", "source address"),
		to:      fs.String("to", "", "destination address"),
	}
	if _, err := parse(fs, args, false); err != nil {
		return nil, err
	}
	p := env.Workspace.Treasury
	if err := p.SetChain(*f.chain); err != nil {
		return nil, err
	}
	p.SetSource(*f.address)
	p.SetDestination(*f.to)
	return p, nil
}

func balanceRow(b models.FundBalance) []string {
	return []string{b.Address, b.UID, b.USDT.String(), b.Native.String() + " " + b.NativeCurrency}
}

var balanceHeader = []string{"Address", "UID", "USDT", "Native"}

func runBalance(ctx context.Context, env *Env, args []string) error {
	p, err := treasuryArgs("balance", env, args)
	if err != nil {
		return err
	}
	if p.View().Source == "" {
		if err := p.LookupAll(ctx); err != nil {
			return err
		}
		rows := [][]string{}
		for _, b := range p.View().Balances {
			rows = append(rows, balanceRow(b))
		}
		renderTable(env.Out, balanceHeader, rows)
		return nil
	}
	if err := p.LookupBalance(ctx); err != nil {
		return err
	}
	if b := p.View().Balance; b != nil {
		renderTable(env.Out, balanceHeader, [][]string{balanceRow(*b)})
	}
	return nil
}

func runCheckSweep(ctx context.Context, env *Env, args []string) error {
	p, err := treasuryArgs("check-sweep", env, args)
	if err != nil {
		return err
	}
	if err := p.CheckSweep(ctx); err != nil {
		return err
	}
	if c := p.View().Check; c != nil {
		return renderObject(env.Out, c)
	}
	return nil
}

func runSweep(ctx context.Context, env *Env, args []string) error {
	p, err := treasuryArgs("sweep", env, args)
	if err != nil {
		return err
	}
	if err := p.Sweep(ctx); err != nil {
		return err
	}
	return renderObject(env.Out, p.View().LastSweep)
}

func runSweepAll(ctx context.Context, env *Env, args []string) error {
	p, err := treasuryArgs("sweep-all", env, args)
	if err != nil {
		return err
	}
	if err := p.SweepAll(ctx); err != nil {
		return err
	}
	return renderObject(env.Out, p.View().LastSweep)
}

func runROI(ctx context.Context, env *Env, args []string) error {
	fs := newFlags("roi", env)
	set := fs.String("set", "", "new daily ROI rate in percent")
	cascade := fs.Bool("cascade", false, "apply the rate to active investments")
	if _, err := parse(fs, args, false); err != nil {
		return err
	}
	p := env.Workspace.ROI
	if *set != "" {
		if err := p.Submit(ctx, *set, *cascade); err != nil {
			return err
		}
	} else if err := p.Load(ctx); err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "ROI rate: %s%%\n", p.View().Rate.String())
	return nil
}

func runTradeSummary(ctx context.Context, env *Env, _ []string) error {
	card := env.Workspace.TradeSummary
	if err := card.Load(ctx); err != nil {
		return err
	}
	return renderObject(env.Out, card.View().Data)
}

func runTradeCreate(ctx context.Context, env *Env, args []string) error {
	fs := newFlags("trade-create", env)
	var form pages.TradeForm
	fs.StringVar(&form.Pair, "pair", "", "trading pair, e.g. BTC/USDT")
	fs.StringVar(&form.Direction, "direction", "", "UP or DOWN")
	fs.StringVar(&form.Amount, "amount", "", "stake")
	fs.StringVar(&form.NetAmount, "net-amount", "", "stake after fee")
	fs.StringVar(&form.Fee, "fee", "", "fee")
	fs.StringVar(&form.EntryPrice, "entry-price", "", "entry price")
	fs.StringVar(&form.ExitPrice, "exit-price", "", "exit price")
	fs.StringVar(&form.Payout, "payout", "", "payout")
	fs.StringVar(&form.Status, "status", "", "OPEN, WIN or LOSS")
	fs.StringVar(&form.StartTime, "start", "", "start time, RFC 3339")
	fs.StringVar(&form.ExpiryTime, "expiry", "", "expiry time, RFC 3339")
	fs.StringVar(&form.UserID, "user-id", "", "owner user id")
	dummy := fs.Bool("dummy", true, "isDummy flag, sent only when given")
	if _, err := parse(fs, args, false); err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "dummy" {
			form.IsDummy = dummy
		}
	})

	trade, err := env.Workspace.TradeDialog.Submit(ctx, form)
	if err != nil {
		return err
	}
	return renderObject(env.Out, trade)
}

func runCredit(ctx context.Context, env *Env, args []string) error {
	fs := newFlags("credit", env)
	var form pages.CreditForm
	fs.StringVar(&form.UID, "uid", "", "user UID")
	fs.StringVar(&form.Amount, "amount", "", "amount")
	fs.StringVar(&form.Currency, "currency", "", "currency (default USDT)")
	fs.StringVar(&form.Note, "note", "", "note")
	if _, err := parse(fs, args, false); err != nil {
		return err
	}
	dep, err := env.Workspace.Credit.Submit(ctx, form)
	if err != nil {
		return err
	}
	return renderObject(env.Out, dep)
}
