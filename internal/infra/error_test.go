//go:build unit

package infra_test

import (
	"context"
	"errors"
	"io"
	"fmt"
	"log/slog"
	"net"
	"syscall"
	"testing"

	"roomchat/internal/infra"
	"roomchat/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want infra.RepositoryErrorKind
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: infra.KindNotFound},
		{name: "exclusion violation", err: &pgconn.PgError{Code: "23P01"}, want: infra.KindConflict},
		{name: "serialization failure", err: &pgconn.PgError{Code: "40001"}, want: infra.KindTransient},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, want: infra.KindTransient},
		{name: "connection failure", err: &pgconn.PgError{Code: "08006"}, want: infra.KindTransient},
		{name: "deadline", err: context.DeadlineExceeded, want: infra.KindTransient},
		{name: "connection refused", err: &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, want: infra.KindTransient},
		{name: "wrapped connection refused", err: fmt.Errorf("acquire: %w", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}), want: infra.KindTransient},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, want: infra.KindDBFailure},
		{name: "unknown", err: errors.New("boom"), want: infra.KindDBFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, infra.Classify(tt.err))
		})
	}
}

func TestWrapRepoErr(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := infra.WrapRepoErr(logger, infra.KindTransient, "insert reservation", &pgconn.PgError{Code: "40001"})

	assert.True(t, infra.IsKind(err, infra.KindTransient))
	assert.True(t, errs.Is(err, errs.ErrTransient))
	assert.False(t, errs.Is(err, errs.ErrConflict))
	assert.Contains(t, err.Error(), "insert reservation")

	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr))
}
