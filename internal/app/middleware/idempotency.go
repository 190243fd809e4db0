package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"villacove/internal/app/commands"
)

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

// IdempotentCommand marks commands that may be retried by the client,
// create-booking being the main one. The key usually comes from the
// Idempotency-Key request header.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any
}

type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	Error      string
	OccurredAt time.Time
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

func (JSONResultCodec) Encode(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONResultCodec) Decode(data []byte, out any) error { return json.Unmarshal(data, out) }

// Idempotency answers a repeated command key with the stored outcome,
// success or failure, without rerunning the handler. A double-submitted
// booking request therefore creates exactly one booking.
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
			if !ok || idCmd.IdempotencyKey() == "" {
				return nextFn(ctx, cmd)
			}
			key := idCmd.IdempotencyKey()

			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				return replay(rec, idCmd, codec)
			}

			result, runErr := nextFn(ctx, cmd)
			if saveErr := persist(ctx, store, codec, key, result, runErr); saveErr != nil {
				if runErr != nil {
					return nil, errors.Join(runErr, saveErr)
				}
				return nil, saveErr
			}
			return result, runErr
		})
	}
}

func replay(rec IdempotencyRecord, cmd IdempotentCommand, codec ResultCodec) (any, error) {
	if rec.Error != "" {
		return nil, errors.New(rec.Error)
	}
	proto := cmd.ResultPrototype()
	if proto == nil {
		return nil, errMissingPrototype
	}
	if err := codec.Decode(rec.Payload, proto); err != nil {
		return nil, err
	}
	if rv := reflect.ValueOf(proto); rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Interface(), nil
	}
	return proto, nil
}

func persist(ctx context.Context, store IdempotencyStore, codec ResultCodec, key string, result any, runErr error) error {
	rec := IdempotencyRecord{Key: key, OccurredAt: time.Now().UTC()}
	if runErr != nil {
		rec.Error = runErr.Error()
		return store.Save(ctx, rec)
	}
	if result != nil {
		payload, err := codec.Encode(result)
		if err != nil {
			return err
		}
		rec.Payload = payload
	}
	return store.Save(ctx, rec)
}
