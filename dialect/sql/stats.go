package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/syssam/cruddals/dialect"
)

// Stats counts the statements run through a StatsDriver.
type Stats struct {
	Queries int64
	Execs   int64
	Failed  int64
	Slow    int64
	Elapsed time.Duration
}

// Mean returns the mean statement duration.
func (s Stats) Mean() time.Duration {
	if n := s.Queries + s.Execs; n > 0 {
		return s.Elapsed / time.Duration(n)
	}
	return 0
}

func (s Stats) String() string {
	return fmt.Sprintf("queries=%d execs=%d failed=%d slow=%d elapsed=%s mean=%s",
		s.Queries, s.Execs, s.Failed, s.Slow, s.Elapsed, s.Mean())
}

// StatsDriver counts the statements of the wrapped driver and reports
// the ones running longer than its threshold. Statements of
// transactions started by the driver are counted too.
type StatsDriver struct {
	dialect.Driver
	threshold time.Duration
	onSlow    func(ctx context.Context, query string, args any, took time.Duration)

	queries, execs atomic.Int64
	failed, slow   atomic.Int64
	elapsed        atomic.Int64
}

// StatsOption configures a StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the duration above which a statement is slow.
// It defaults to 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) { s.threshold = d }
}

// WithSlowQueryLog logs slow statements to logger at warn level.
func WithSlowQueryLog(logger *slog.Logger) StatsOption {
	if logger == nil {
		logger = slog.Default()
	}
	return func(s *StatsDriver) {
		s.onSlow = func(ctx context.Context, query string, args any, took time.Duration) {
			logger.WarnContext(ctx, "slow statement", "took", took, "query", query, "args", args)
		}
	}
}

// NewStatsDriver wraps drv:
//
//	drv, _ := sql.Open(dialect.SQLite, dsn)
//	st := sqlstore.New(g, sql.NewStatsDriver(drv, sql.WithSlowQueryLog(logger)))
func NewStatsDriver(drv dialect.Driver, opts ...StatsOption) *StatsDriver {
	d := &StatsDriver{Driver: drv, threshold: 100 * time.Millisecond}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Stats returns the counters collected so far.
func (d *StatsDriver) Stats() Stats {
	return Stats{
		Queries: d.queries.Load(),
		Execs:   d.execs.Load(),
		Failed:  d.failed.Load(),
		Slow:    d.slow.Load(),
		Elapsed: time.Duration(d.elapsed.Load()),
	}
}

// SlowThreshold returns the duration above which a statement is slow.
func (d *StatsDriver) SlowThreshold() time.Duration { return d.threshold }

func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	return d.observe(ctx, &d.queries, query, args, func() error {
		return d.Driver.Query(ctx, query, args, v)
	})
}

func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	return d.observe(ctx, &d.execs, query, args, func() error {
		return d.Driver.Exec(ctx, query, args, v)
	})
}

func (d *StatsDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &statsTx{Tx: tx, d: d}, nil
}

func (d *StatsDriver) observe(ctx context.Context, n *atomic.Int64, query string, args any, run func() error) error {
	start := time.Now()
	err := run()
	took := time.Since(start)
	n.Add(1)
	d.elapsed.Add(int64(took))
	if err != nil {
		d.failed.Add(1)
	}
	if took > d.threshold {
		d.slow.Add(1)
		if d.onSlow != nil {
			d.onSlow(ctx, query, args, took)
		}
	}
	return err
}

type statsTx struct {
	dialect.Tx
	d *StatsDriver
}

func (tx *statsTx) Query(ctx context.Context, query string, args, v any) error {
	return tx.d.observe(ctx, &tx.d.queries, query, args, func() error {
		return tx.Tx.Query(ctx, query, args, v)
	})
}

func (tx *statsTx) Exec(ctx context.Context, query string, args, v any) error {
	return tx.d.observe(ctx, &tx.d.execs, query, args, func() error {
		return tx.Tx.Exec(ctx, query, args, v)
	})
}
