package remote

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// channel is the notification channel the messages insert trigger publishes to.
func channel(reportID string) string { return "messages:" + reportID }

// Listener yields notification payloads for one channel.
type Listener interface {
	Next(ctx context.Context) (string, error)
	Close()
}

type notificationSource interface {
	Listen(ctx context.Context, channel string) (Listener, error)
}

// Feed is the realtime change feed over Postgres LISTEN/NOTIFY. Every
// listener holds one pooled connection until it is closed.
type Feed struct{ pool *pgxpool.Pool }

func NewFeed(pool *pgxpool.Pool) *Feed { return &Feed{pool: pool} }

func (f *Feed) Listen(ctx context.Context, ch string) (Listener, error) {
	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{ch}.Sanitize()); err != nil {
		conn.Release()
		return nil, err
	}
	return &pgListener{conn: conn}, nil
}

type pgListener struct{ conn *pgxpool.Conn }

func (l *pgListener) Next(ctx context.Context) (string, error) {
	n, err := l.conn.Conn().WaitForNotification(ctx)
	if err != nil {
		return "", err
	}
	return n.Payload, nil
}

// Close stops listening and hands the connection back. A connection broken
// by a cancelled wait is discarded by the pool.
func (l *pgListener) Close() {
	if !l.conn.Conn().IsClosed() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := l.conn.Exec(ctx, "UNLISTEN *"); err != nil {
			_ = l.conn.Conn().Close(ctx)
		}
	}
	l.conn.Release()
}
