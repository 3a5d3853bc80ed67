package obs

import (
	"context"
	"log"
	"time"

	"github.com/oklog/ulid/v2"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// NewRequestID генерирует идентификатор запроса (ULID, сортируется по времени)
func NewRequestID() string {
	return ulid.Make().String()
}

// WithRequestID кладет идентификатор запроса в контекст
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestID достает идентификатор запроса, "-" если его нет
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		return id
	}
	return "-"
}

// Time замеряет длительность операции, использование:
//
//	defer obs.Time(ctx, "openmeteo.geocode")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()
	reqID := RequestID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("req_id=%s op=%s dur=%dms err=%v", reqID, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("req_id=%s op=%s dur=%dms", reqID, name, dur.Milliseconds())
	}
}
