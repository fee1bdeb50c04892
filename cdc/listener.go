package cdc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/jackc/pglogrepl"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgproto3/v2"
	"go.uber.org/zap"
)

// State is the listener's lifecycle state, per spec.md §4.6.
type State string

const (
	StateStopped      State = "STOPPED"
	StateStarting     State = "STARTING"
	StateRunning      State = "RUNNING"
	StateReconnecting State = "RECONNECTING"
)

const (
	outputPlugin  = "pgoutput"
	protoVersion  = "proto_version '1'"
	standbyPeriod = 10 * time.Second
)

// Config configures one logical replication listener.
type Config struct {
	ConnString  string
	Publication string
	Slot        string
}

// Listener drives a single logical replication stream and publishes decoded
// events onto Sink. One dedicated goroutine runs the decode loop; the
// replication connection is exclusive to this listener.
type Listener struct {
	cfg Config
	log *zap.SugaredLogger
	sink func(Event)

	state State
	conn  *pgconn.PgConn
	rel   *relationCache

	cancel context.CancelFunc
}

// New builds a Listener that calls sink for every decoded event.
func New(cfg Config, log *zap.SugaredLogger, sink func(Event)) *Listener {
	return &Listener{cfg: cfg, log: log, sink: sink, state: StateStopped, rel: newRelationCache()}
}

func (l *Listener) State() State { return l.state }

// Start runs the listener until ctx is cancelled. It blocks; callers run it
// on its own goroutine — spec.md §5 calls for exactly one dedicated worker
// per CDC decoder.
func (l *Listener) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	defer func() { l.state = StateStopped }()

	for ctx.Err() == nil {
		l.state = StateStarting
		if err := l.runOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			l.log.Warnw("cdc stream error, reconnecting", "error", err)
			l.state = StateReconnecting
			backoff(ctx)
			continue
		}
	}
}

// Stop signals the run loop to drain and exit.
func (l *Listener) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
}

func backoff(ctx context.Context) {
	_ = retry.Do(func() error { return errors.New("reconnect delay") },
		retry.Attempts(1),
		retry.Delay(time.Second),
		retry.Context(ctx),
	)
	select {
	case <-time.After(time.Second):
	case <-ctx.Done():
	}
}

func (l *Listener) runOnce(ctx context.Context) error {
	conn, err := pgconn.Connect(ctx, l.cfg.ConnString+"replication=database")
	if err != nil {
		return fmt.Errorf("cdc: connect: %w", err)
	}
	l.conn = conn
	defer conn.Close(ctx)

	if err := ensurePublication(ctx, conn, l.cfg.Publication); err != nil {
		return err
	}

	sysident, err := pglogrepl.IdentifySystem(ctx, conn)
	if err != nil {
		return fmt.Errorf("cdc: identify system: %w", err)
	}

	if err := ensureSlot(ctx, conn, l.cfg.Slot); err != nil {
		return err
	}

	err = pglogrepl.StartReplication(ctx, conn, l.cfg.Slot, sysident.XLogPos, pglogrepl.StartReplicationOptions{
		PluginArgs: []string{protoVersion, fmt.Sprintf("publication_names '%s'", l.cfg.Publication)},
	})
	if err != nil {
		return fmt.Errorf("cdc: start replication: %w", err)
	}

	l.state = StateRunning
	l.log.Infow("cdc replication stream started", "slot", l.cfg.Slot, "publication", l.cfg.Publication)

	clientXLogPos := sysident.XLogPos
	lastStandby := time.Now()
	var commitLSN pglogrepl.LSN
	var commitTime time.Time

	for ctx.Err() == nil {
		if time.Since(lastStandby) >= standbyPeriod {
			if err := pglogrepl.SendStandbyStatusUpdate(ctx, conn, pglogrepl.StandbyStatusUpdate{WALWritePosition: clientXLogPos}); err != nil {
				return fmt.Errorf("cdc: standby status update: %w", err)
			}
			lastStandby = time.Now()
		}

		recvCtx, cancel := context.WithTimeout(ctx, standbyPeriod)
		rawMsg, err := conn.ReceiveMessage(recvCtx)
		cancel()
		if err != nil {
			if pgconn.Timeout(err) {
				continue
			}
			return fmt.Errorf("cdc: receive message: %w", err)
		}

		cd, ok := rawMsg.(*pgproto3.CopyData)
		if !ok {
			continue
		}

		switch cd.Data[0] {
		case pglogrepl.PrimaryKeepaliveMessageByteID:
			ka, err := pglogrepl.ParsePrimaryKeepaliveMessage(cd.Data[1:])
			if err != nil {
				return fmt.Errorf("cdc: parse keepalive: %w", err)
			}
			if ka.ServerWALEnd > clientXLogPos {
				clientXLogPos = ka.ServerWALEnd
			}

		case pglogrepl.XLogDataByteID:
			xld, err := pglogrepl.ParseXLogData(cd.Data[1:])
			if err != nil {
				return fmt.Errorf("cdc: parse xlog data: %w", err)
			}
			msg, err := pglogrepl.Parse(xld.WALData)
			if err != nil {
				l.log.Warnw("cdc: failed to parse logical message, skipping", "error", err)
				continue
			}

			if b, ok := msg.(*pglogrepl.BeginMessage); ok {
				commitLSN = b.FinalLSN
				commitTime = b.Timestamp
			}

			ev, err := decodeMessage(l.rel, msg, commitLSN.String(), commitTime)
			if err != nil {
				l.log.Warnw("cdc: skipping undecodable message", "error", err)
				continue
			}
			if ev != nil {
				l.sink(*ev)
			}

			if xld.WALStart > clientXLogPos {
				clientXLogPos = xld.WALStart
			}
		}
	}

	return ctx.Err()
}

func ensurePublication(ctx context.Context, conn *pgconn.PgConn, name string) error {
	sql := fmt.Sprintf(
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_publication WHERE pubname = '%s') THEN CREATE PUBLICATION %s FOR ALL TABLES; END IF; END $$;`,
		name, quoteIdent(name))
	return execSimple(ctx, conn, sql)
}

func ensureSlot(ctx context.Context, conn *pgconn.PgConn, slot string) error {
	_, err := pglogrepl.CreateReplicationSlot(ctx, conn, slot, outputPlugin, pglogrepl.CreateReplicationSlotOptions{})
	if err != nil {
		// Already exists is fine; any other failure is fatal to startup.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "42710" {
			return nil
		}
		return fmt.Errorf("cdc: create replication slot: %w", err)
	}
	return nil
}

func execSimple(ctx context.Context, conn *pgconn.PgConn, sql string) error {
	result := conn.Exec(ctx, sql)
	_, err := result.ReadAll()
	return err
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}
