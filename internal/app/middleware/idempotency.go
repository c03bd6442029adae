package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"rentflow/internal/app/commands"
	"rentflow/internal/domain/shared/fault"
)

// IdempotentCommand must be implemented by commands that want idempotency guarantees.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any // should match the handler result type
}

// Fault kinds stored alongside a failed record so the replayed error keeps
// its taxonomy (and thus its HTTP status) instead of degrading to a plain
// string.
const (
	FaultKindNotFound   = "not_found"
	FaultKindConflict   = "conflict"
	FaultKindValidation = "validation"
)

type IdempotencyRecord struct {
	Key     string
	Payload []byte
	Error   string
	// FaultKind classifies Error when the failure came from the taxonomy.
	// FaultSubject holds the entity (not found) or field (validation);
	// FaultDetail holds the id or reason.
	FaultKind    string
	FaultSubject string
	FaultDetail  string
	OccurredAt   time.Time
}

func (r *IdempotencyRecord) setError(err error) {
	r.Error = err.Error()
	var notFound *fault.NotFoundError
	var conflict *fault.ConflictError
	var validation *fault.ValidationError
	switch {
	case errors.As(err, &notFound):
		r.FaultKind, r.FaultSubject, r.FaultDetail = FaultKindNotFound, notFound.Entity, notFound.ID
	case errors.As(err, &conflict):
		r.FaultKind, r.FaultDetail = FaultKindConflict, conflict.Reason
	case errors.As(err, &validation):
		r.FaultKind, r.FaultSubject, r.FaultDetail = FaultKindValidation, validation.Field, validation.Reason
	}
}

func (r IdempotencyRecord) replayError() error {
	switch r.FaultKind {
	case FaultKindNotFound:
		return fault.NotFound(r.FaultSubject, r.FaultDetail)
	case FaultKindConflict:
		return fault.Conflict(r.FaultDetail)
	case FaultKindValidation:
		return fault.Validation(r.FaultSubject, r.FaultDetail)
	}
	return errors.New(r.Error)
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONResultCodec) Decode(data []byte, out any) error {
	return json.Unmarshal(data, out)
}

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

func Idempotency(store IdempotencyStore, codec ResultCodec) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok {
				return nextFn(ctx, cmd)
			}
			key := idCmd.IdempotencyKey()
			if key == "" {
				return nextFn(ctx, cmd)
			}
			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				if rec.Error != "" {
					return nil, rec.replayError()
				}
				proto := idCmd.ResultPrototype()
				if proto == nil {
					return nil, errMissingPrototype
				}
				if err := codec.Decode(rec.Payload, proto); err != nil {
					return nil, err
				}
				return normalizePrototype(proto), nil
			}
			result, err := nextFn(ctx, cmd)
			record := IdempotencyRecord{
				Key:        key,
				OccurredAt: time.Now().UTC(),
			}
			if err != nil {
				record.setError(err)
				if saveErr := store.Save(ctx, record); saveErr != nil {
					return nil, errors.Join(err, saveErr)
				}
				return nil, err
			}
			if result != nil {
				payload, encErr := codec.Encode(result)
				if encErr != nil {
					return nil, encErr
				}
				record.Payload = payload
			}
			if saveErr := store.Save(ctx, record); saveErr != nil {
				return nil, saveErr
			}
			return result, nil
		})
	}
}

func normalizePrototype(proto any) any {
	rv := reflect.ValueOf(proto)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Interface()
	}
	return proto
}
