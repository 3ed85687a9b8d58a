package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type simpleRow struct {
	scan func(dest ...any) error
}

func (r simpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

// stubExecutor answers each statement with a canned row, tag or error.
type stubExecutor struct {
	rows    map[string]func(args []any) pgx.Row
	execTag map[string]pgconn.CommandTag
	execErr error
	calls   []string
	args    map[string][]any
}

func newStubExecutor() *stubExecutor {
	return &stubExecutor{
		rows:    map[string]func([]any) pgx.Row{},
		execTag: map[string]pgconn.CommandTag{},
		args:    map[string][]any{},
	}
}

func (s *stubExecutor) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.calls = append(s.calls, query)
	s.args[query] = args
	if s.execErr != nil {
		return pgconn.CommandTag{}, s.execErr
	}
	return s.execTag[query], nil
}

func (s *stubExecutor) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	s.calls = append(s.calls, query)
	s.args[query] = args
	if fn, ok := s.rows[query]; ok {
		return fn(args)
	}
	return simpleRow{}
}

func (s *stubExecutor) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, fmt.Errorf("query not stubbed: %s", query)
}

func assign(dest []any, values ...any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, v := range values {
		switch d := dest[i].(type) {
		case *int64:
			*d = v.(int64)
		case **int64:
			if v == nil {
				*d = nil
			} else {
				n := v.(int64)
				*d = &n
			}
		case *int:
			*d = v.(int)
		case *string:
			*d = v.(string)
		case *bool:
			*d = v.(bool)
		case *[]byte:
			*d = v.([]byte)
		case *time.Time:
			*d = v.(time.Time)
		case **time.Time:
			if v == nil {
				*d = nil
			} else {
				ts := v.(time.Time)
				*d = &ts
			}
		default:
			return fmt.Errorf("scan: unsupported destination %T", dest[i])
		}
	}
	return nil
}
