package policy

import (
	"testing"
	"time"

	"github.com/backlab/quantsim/internal/broker"
	"github.com/backlab/quantsim/internal/feed"
	"github.com/backlab/quantsim/internal/orders"
	"github.com/backlab/quantsim/internal/strategy"
	"github.com/backlab/quantsim/internal/types"
)

var (
	apple = types.NewAsset("AAPL", types.USD)
	msft  = types.NewAsset("MSFT", types.USD)
)

func emptyAccount(cash float64) *broker.Account {
	return &broker.Account{
		BaseCurrency: types.USD,
		Cash:         types.NewWallet(types.NewAmount(types.USD, cash)),
		Positions:    make(map[types.Asset]broker.Position),
		LastUpdate:   time.Now(),
	}
}

func newPolicy(cfg Config) *FlexPolicy {
	return NewFlexPolicy(cfg, types.SingleCurrencyRates{}, orders.NewSequence())
}

func marketSize(t *testing.T, o orders.Order) types.Size {
	t.Helper()
	mo, ok := o.(*orders.MarketOrder)
	if !ok {
		t.Fatalf("expected market order, got %T", o)
	}
	return mo.Size
}

func TestFlexPolicyEntrySizing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OrderPercentage = 0.1
	cfg.SafetyMargin = 0.0
	p := newPolicy(cfg)

	account := emptyAccount(100_000)
	event := feed.NewEvent(time.Now(), feed.NewTradePrice(apple, 150.0, 0))
	out := p.Act([]strategy.Signal{strategy.NewSignal(apple, strategy.Buy)}, account, event)

	if len(out) != 1 {
		t.Fatalf("expected 1 order, got %d", len(out))
	}
	// floor(10000 / 150) = 66 whole shares.
	if !marketSize(t, out[0]).Equal(types.NewSize(66)) {
		t.Errorf("expected size 66, got %s", marketSize(t, out[0]))
	}
}

func TestFlexPolicyFractionalSizing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OrderPercentage = 0.1
	cfg.SafetyMargin = 0.0
	cfg.Fractions = 2
	p := newPolicy(cfg)

	account := emptyAccount(100_000)
	event := feed.NewEvent(time.Now(), feed.NewTradePrice(apple, 150.0, 0))
	out := p.Act([]strategy.Signal{strategy.NewSignal(apple, strategy.Buy)}, account, event)

	if len(out) != 1 {
		t.Fatalf("expected 1 order, got %d", len(out))
	}
	want, _ := types.SizeFromString("66.66")
	if !marketSize(t, out[0]).Equal(want) {
		t.Errorf("expected size 66.66 (truncated), got %s", marketSize(t, out[0]))
	}
}

func TestFlexPolicyExitIgnoresBuyingPower(t *testing.T) {
	p := newPolicy(DefaultConfig())

	// Broke account holding a long position.
	account := emptyAccount(0)
	account.Positions[apple] = broker.Position{
		Asset: apple, Size: types.NewSize(40), AvgPrice: 100, MarkPrice: 150,
	}

	event := feed.NewEvent(time.Now(), feed.NewTradePrice(apple, 150.0, 0))
	out := p.Act([]strategy.Signal{strategy.NewSignal(apple, strategy.Sell)}, account, event)

	if len(out) != 1 {
		t.Fatalf("expected 1 closing order, got %d", len(out))
	}
	if !marketSize(t, out[0]).Equal(types.NewSize(-40)) {
		t.Errorf("closing order must exactly negate the position, got %s", marketSize(t, out[0]))
	}
}

func TestFlexPolicyNoExitWithoutFlag(t *testing.T) {
	p := newPolicy(DefaultConfig())

	account := emptyAccount(100_000)
	account.Positions[apple] = broker.Position{
		Asset: apple, Size: types.NewSize(40), AvgPrice: 100, MarkPrice: 150,
	}

	sig := strategy.NewSignal(apple, strategy.Sell)
	sig.Exit = false
	event := feed.NewEvent(time.Now(), feed.NewTradePrice(apple, 150.0, 0))

	// Not exit-capable and shorting is off, so nothing happens.
	if out := p.Act([]strategy.Signal{sig}, account, event); len(out) != 0 {
		t.Errorf("expected no orders, got %d", len(out))
	}
}

func TestFlexPolicySkipsMissingPrice(t *testing.T) {
	p := newPolicy(DefaultConfig())
	account := emptyAccount(100_000)
	event := feed.EmptyEvent(time.Now())

	if out := p.Act([]strategy.Signal{strategy.NewSignal(apple, strategy.Buy)}, account, event); len(out) != 0 {
		t.Errorf("expected no orders without a price, got %d", len(out))
	}
}

func TestFlexPolicySkipsExistingPosition(t *testing.T) {
	p := newPolicy(DefaultConfig())
	account := emptyAccount(100_000)
	account.Positions[apple] = broker.Position{
		Asset: apple, Size: types.NewSize(10), AvgPrice: 100, MarkPrice: 100,
	}

	event := feed.NewEvent(time.Now(), feed.NewTradePrice(apple, 100.0, 0))
	// A positive signal on an existing long is an increase, which is not
	// allowed.
	if out := p.Act([]strategy.Signal{strategy.NewSignal(apple, strategy.Buy)}, account, event); len(out) != 0 {
		t.Errorf("expected no increase orders, got %d", len(out))
	}
}

func TestFlexPolicyShortingDisabled(t *testing.T) {
	p := newPolicy(DefaultConfig())
	account := emptyAccount(100_000)
	event := feed.NewEvent(time.Now(), feed.NewTradePrice(apple, 100.0, 0))

	if out := p.Act([]strategy.Signal{strategy.NewSignal(apple, strategy.Sell)}, account, event); len(out) != 0 {
		t.Errorf("expected no short orders while shorting is disabled, got %d", len(out))
	}

	cfg := DefaultConfig()
	cfg.Shorting = true
	p = newPolicy(cfg)
	out := p.Act([]strategy.Signal{strategy.NewSignal(apple, strategy.Sell)}, account, event)
	if len(out) != 1 || marketSize(t, out[0]).Sign() >= 0 {
		t.Error("expected a short order with shorting enabled")
	}
}

func TestFlexPolicyOneOrderOnly(t *testing.T) {
	p := newPolicy(DefaultConfig())
	account := emptyAccount(100_000)
	event := feed.NewEvent(time.Now(), feed.NewTradePrice(apple, 100.0, 0))

	// Two signals for the same asset in one call: only the first creates
	// an order.
	signals := []strategy.Signal{
		strategy.NewSignal(apple, strategy.Buy),
		strategy.NewSignal(apple, strategy.Buy),
	}
	if out := p.Act(signals, account, event); len(out) != 1 {
		t.Errorf("expected 1 order with oneOrderOnly, got %d", len(out))
	}

	// An open order for the asset in the account also blocks new ones.
	seq := orders.NewSequence()
	account.OpenOrders = []*orders.OrderState{
		orders.NewOrderState(orders.NewMarketOrder(seq, apple, types.NewSize(1), "")),
	}
	if out := p.Act(signals[:1], account, event); len(out) != 0 {
		t.Errorf("expected no orders while one is open, got %d", len(out))
	}
}

func TestFlexPolicyBuyingPowerRunsOut(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OrderPercentage = 0.6
	cfg.SafetyMargin = 0.0
	p := newPolicy(cfg)

	account := emptyAccount(10_000)
	event := feed.NewEvent(time.Now(),
		feed.NewTradePrice(apple, 100.0, 0),
		feed.NewTradePrice(msft, 100.0, 0),
	)
	signals := []strategy.Signal{
		strategy.NewSignal(apple, strategy.Buy),
		strategy.NewSignal(msft, strategy.Buy),
	}

	// Each order wants 60% of equity; after the first the running buying
	// power cannot cover the second.
	out := p.Act(signals, account, event)
	if len(out) != 1 {
		t.Fatalf("expected 1 order, got %d", len(out))
	}
	if out[0].Asset() != apple {
		t.Error("the first signal should win the remaining buying power")
	}
}

func TestFlexPolicyZeroSizeSkipped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OrderPercentage = 0.001
	cfg.SafetyMargin = 0.0
	p := newPolicy(cfg)

	// 0.1% of 10k is 10, not enough for one 100-priced share.
	account := emptyAccount(10_000)
	event := feed.NewEvent(time.Now(), feed.NewTradePrice(apple, 100.0, 0))
	if out := p.Act([]strategy.Signal{strategy.NewSignal(apple, strategy.Buy)}, account, event); len(out) != 0 {
		t.Errorf("expected no order when size truncates to zero, got %d", len(out))
	}
}
