package infra

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"

	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgconn"
)

type RepositoryErrorKind string

type RepositoryError struct {
	Kind RepositoryErrorKind
	msg  string
	err  error // wrapped low-level error
}

func (e RepositoryError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e RepositoryError) Unwrap() error {
	return e.err
}

// Infrastructure-specific error kinds
const (
	KindNotFound  RepositoryErrorKind = "NOT_FOUND"
	KindConflict  RepositoryErrorKind = "CONFLICT"
	KindTransient RepositoryErrorKind = "TRANSIENT"
	KindDBFailure RepositoryErrorKind = "DB_FAILURE"
)

const (
	pgErrCodeExclusionViolation   = "23P01"
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
	pgErrClassConnection          = "08"
)

// markers map each kind onto the usecase sentinel callers branch on.
var markers = map[RepositoryErrorKind]error{
	KindNotFound:  errs.ErrReservationNotFound,
	KindConflict:  errs.ErrConflict,
	KindTransient: errs.ErrTransient,
	KindDBFailure: errs.ErrDatabaseOperationFailed,
}

// WrapRepoErr logs the failure and returns a RepositoryError marked with the sentinel for kind.
func WrapRepoErr(logger *slog.Logger, kind RepositoryErrorKind, msg string, err error) error {
	logArgs := []any{
		slog.String("kind", string(kind)),
	}
	if err != nil {
		logArgs = append(logArgs, slog.String("error", err.Error()))
	}

	switch kind {
	case KindDBFailure:
		logger.Error("Repository error: "+msg, logArgs...)
	default:
		logger.Warn("Repository error: "+msg, logArgs...)
	}

	if err != nil {
		err = errs.Wrap(err, msg)
	}

	return errs.Mark(RepositoryError{Kind: kind, msg: msg, err: err}, markers[kind])
}

// Classify maps a driver error onto a repository error kind.
func Classify(err error) RepositoryErrorKind {
	if pgconv.IsNoRows(err) {
		return KindNotFound
	}
	switch code := pgconv.SQLState(err); {
	case code == pgErrCodeExclusionViolation:
		return KindConflict
	case code == pgErrCodeSerializationFailure, code == pgErrCodeDeadlockDetected:
		return KindTransient
	case strings.HasPrefix(code, pgErrClassConnection):
		return KindTransient
	case code != "":
		return KindDBFailure
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return KindTransient
	}
	// the server could not be reached at all
	var connectErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connectErr) || errors.As(err, &netErr) {
		return KindTransient
	}
	return KindDBFailure
}

func IsKind(err error, kind RepositoryErrorKind) bool {
	var e RepositoryError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
