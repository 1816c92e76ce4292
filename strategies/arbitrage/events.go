package arbitrage

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval is the time between timer-driven cycles
const DefaultInterval = 180 * time.Second

// Kind is the type of an engine event
type Kind int

const (
	KindTimerTick Kind = iota
	KindTradeExecuted
	KindPriceChanged
	KindShutdown
)

func (k Kind) String() string {
	switch k {
	case KindTimerTick:
		return "timer_tick"
	case KindTradeExecuted:
		return "trade_executed"
	case KindPriceChanged:
		return "price_changed"
	case KindShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Event wakes the engine. Pair is set for TradeExecuted and Token for PriceChanged.
type Event struct {
	Kind  Kind
	Pair  string
	Token string
}

func TimerTick() Event { return Event{Kind: KindTimerTick} }
func TradeExecuted(pair string) Event { return Event{Kind: KindTradeExecuted, Pair: pair} }
func PriceChanged(token string) Event { return Event{Kind: KindPriceChanged, Token: token} }
func Shutdown() Event { return Event{Kind: KindShutdown} }

// EventSource yields the events that drive the engine. Next blocks until an
// event is available and returns Shutdown once the source is exhausted or
// ctx is done.
type EventSource interface {
	Next(ctx context.Context) Event
}

// TimerSource emits a tick immediately and then one interval after each
// previous Next returned.
type TimerSource struct {
	interval time.Duration
	started  bool
	logger   *zap.Logger
}

func NewTimerSource(interval time.Duration, logger *zap.Logger) *TimerSource {
	return &TimerSource{
		interval: interval,
		logger:   logger.Named("timer"),
	}
}

func (t *TimerSource) Next(ctx context.Context) Event {
	if ctx.Err() != nil {
		return Shutdown()
	}
	if !t.started {
		t.started = true
		return TimerTick()
	}

	t.logger.Info("Sleeping until next cycle", zap.Duration("interval", t.interval))
	timer := time.NewTimer(t.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Shutdown()
	case <-timer.C:
		return TimerTick()
	}
}

// ChanSource forwards events from a channel. A closed channel yields Shutdown.
type ChanSource struct {
	events <-chan Event
}

func NewChanSource(events <-chan Event) *ChanSource {
	return &ChanSource{events: events}
}

func (c *ChanSource) Next(ctx context.Context) Event {
	select {
	case <-ctx.Done():
		return Shutdown()
	case ev, ok := <-c.events:
		if !ok {
			return Shutdown()
		}
		return ev
	}
}
