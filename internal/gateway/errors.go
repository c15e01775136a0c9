package gateway

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Error kinds surfaced by the gateway. Callers match them with errors.Is.
var (
	// ErrConflict is returned when an insert or update violates a uniqueness
	// constraint, typically a duplicate user-supplied identifier.
	ErrConflict = errors.New("uniqueness conflict")

	// ErrNotFound is returned when an update or single-row read matches nothing.
	ErrNotFound = errors.New("no matching row")

	// ErrRemote marks any other failure of the backing store.
	ErrRemote = errors.New("remote data failure")

	ErrUnknownRelation = errors.New("unknown relation")
	ErrInvalidColumn   = errors.New("invalid column name")

	// ErrUnfiltered guards Update and Delete against touching a whole relation.
	ErrUnfiltered = errors.New("refusing to modify a relation without a filter")
)

const uniqueViolation = "23505"

// RemoteError wraps a store failure with the operation and relation it
// happened on. Its message is the opaque backend message.
type RemoteError struct {
	Op       string
	Relation Relation
	Kind     error
	Err      error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Relation, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is matches the error kind as well as the wrapped cause.
func (e *RemoteError) Is(target error) bool {
	return target == e.Kind
}

// Classify wraps a gorm or driver error into a *RemoteError of the matching
// kind. A nil err stays nil.
func Classify(op string, rel Relation, err error) error {
	if err == nil {
		return nil
	}
	kind := ErrRemote
	switch {
	case isUniqueViolation(err):
		kind = ErrConflict
	case errors.Is(err, gorm.ErrRecordNotFound):
		kind = ErrNotFound
	}
	return &RemoteError{Op: op, Relation: rel, Kind: kind, Err: err}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return true
	}
	// sqlite reports constraint failures only through the message text.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
