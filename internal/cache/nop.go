package cache

import (
	"context"
	"time"
)

// Nop never stores anything; every read is a miss
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, string, []byte, time.Duration, ...string) error { return nil }

func (Nop) Invalidate(context.Context, ...string) error { return nil }

func (Nop) Ping(context.Context) error { return nil }

func (Nop) Close() error { return nil }
