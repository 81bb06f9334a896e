package replay

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/investsim/ledger/ledger"
	"github.com/investsim/ledger/market"
	"github.com/investsim/ledger/sim"
)

// Clock is a settable clock. Pass Now to sim.WithClock and the replay moves
// it to each row's time, so records carry the scripted timestamps.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.t.IsZero() {
		return time.Now()
	}
	return c.t
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// Options controls how replay behaves.
type Options struct {
	// Clock, when set, is moved to each row's time before the row is applied.
	Clock *Clock
	// EventThenPrice applies a row's event before its price instead of after.
	EventThenPrice bool
}

// Stats counts what a replay applied.
type Stats struct {
	Rows   int
	Prices int
	Events int
}

// CSV replays a scripted session from a CSV file. See Run for the format.
func CSV(ctx context.Context, path string, engine *sim.Engine, opts Options) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, err
	}
	defer f.Close()
	return Run(ctx, f, engine, opts)
}

// Run replays rows of
//
//	time,symbol,price,event,user,arg1,arg2
//
// A header row starting with "time" is skipped. symbol and price may be empty
// for event-only rows; event and its arguments may be omitted.
//
// Events (case-insensitive):
//
//	OPEN:      user                    provisions the account
//	BUY:       user arg1=shares        at the current price
//	SELL:      user arg1=shares        at the current price
//	TRANSFER:  user arg1=direction arg2=amount
//	DEPOSIT:   user arg1=amount arg2=tenure months (optional)
//	MATURE:                            runs the maturity sweep
//
// BUY and SELL trade the row's symbol. A failing row stops the replay; rows
// before it stay applied.
func Run(ctx context.Context, r io.Reader, engine *sim.Engine, opts Options) (Stats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var st Stats
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return st, nil
		}
		line++
		if err != nil {
			return st, err
		}
		if len(rec) == 0 || (line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "time")) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return st, err
		}

		rr, err := parseRow(rec)
		if err != nil {
			return st, fmt.Errorf("line %d: %w", line, err)
		}
		if opts.Clock != nil {
			opts.Clock.Set(rr.time)
		}
		if err := applyRow(ctx, engine, rr, opts, &st); err != nil {
			return st, fmt.Errorf("line %d: %w", line, err)
		}
		st.Rows++
	}
}

type row struct {
	time   time.Time
	symbol string
	price  *market.Money
	event  string
	user   string
	args   []string
}

func parseRow(fields []string) (row, error) {
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 3 {
		return row{}, fmt.Errorf("bad row (need at least time,symbol,price): %v", fields)
	}

	t, err := time.Parse(time.RFC3339, fields[0])
	if err != nil {
		return row{}, fmt.Errorf("bad time %q: %w", fields[0], err)
	}
	r := row{time: t, symbol: fields[1]}

	if fields[2] != "" {
		p, err := market.ParseMoney(fields[2])
		if err != nil {
			return row{}, err
		}
		r.price = &p
	}
	if len(fields) >= 4 {
		r.event = strings.ToUpper(fields[3])
	}
	if len(fields) >= 5 {
		r.user = fields[4]
	}
	if len(fields) >= 6 {
		r.args = fields[5:]
	}
	return r, nil
}

func applyRow(ctx context.Context, engine *sim.Engine, r row, opts Options, st *Stats) error {
	price := func() error {
		if r.price == nil {
			return nil
		}
		if _, err := engine.SetPrice(ctx, r.symbol, *r.price); err != nil {
			return err
		}
		st.Prices++
		return nil
	}
	event := func() error {
		if r.event == "" {
			return nil
		}
		if err := handleEvent(ctx, engine, r); err != nil {
			return fmt.Errorf("%s: %w", r.event, err)
		}
		st.Events++
		return nil
	}

	if opts.EventThenPrice {
		if err := event(); err != nil {
			return err
		}
		return price()
	}
	if err := price(); err != nil {
		return err
	}
	return event()
}

func handleEvent(ctx context.Context, engine *sim.Engine, r row) error {
	if r.event != "MATURE" && r.user == "" {
		return fmt.Errorf("missing user")
	}

	switch r.event {
	case "OPEN":
		_, err := engine.Account(ctx, r.user)
		return err

	case "BUY", "SELL":
		// BUY,alice,10
		if len(r.args) < 1 {
			return fmt.Errorf("need arg1=shares")
		}
		shares, err := market.ParseShares(r.args[0])
		if err != nil {
			return err
		}
		if r.event == "BUY" {
			_, err = engine.Buy(ctx, r.user, r.symbol, shares)
		} else {
			_, err = engine.Sell(ctx, r.user, r.symbol, shares)
		}
		return err

	case "TRANSFER":
		// TRANSFER,alice,cash_to_savings,500
		if len(r.args) < 2 {
			return fmt.Errorf("need arg1=direction arg2=amount")
		}
		dir, err := ledger.ParseDirection(r.args[0])
		if err != nil {
			return err
		}
		amount, err := market.ParseMoney(r.args[1])
		if err != nil {
			return err
		}
		_, err = engine.Transfer(ctx, r.user, dir, amount)
		return err

	case "DEPOSIT":
		// DEPOSIT,alice,5000,24
		if len(r.args) < 1 {
			return fmt.Errorf("need arg1=amount")
		}
		amount, err := market.ParseMoney(r.args[0])
		if err != nil {
			return err
		}
		tenure := ledger.DefaultTenureMonths
		if len(r.args) >= 2 && r.args[1] != "" {
			tenure, err = strconv.Atoi(r.args[1])
			if err != nil {
				return fmt.Errorf("bad tenure %q: %w", r.args[1], err)
			}
		}
		_, err = engine.CreateFixedDeposit(ctx, r.user, amount, tenure)
		return err

	case "MATURE":
		_, err := engine.MatureDeposits(ctx)
		return err

	default:
		return fmt.Errorf("unknown event %q", r.event)
	}
}
