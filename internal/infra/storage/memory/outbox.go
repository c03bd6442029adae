package memory

import (
	"context"
	"sync"

	"rentflow/internal/app/outbox"
	"rentflow/internal/app/uow"
)

// Outbox buffers event records in memory. Flush hands them to the publish
// callback and drops them; without a callback it simply clears the buffer.
type Outbox struct {
	mu      sync.Mutex
	records []outbox.EventRecord
	Publish func(ctx context.Context, record outbox.EventRecord) error
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

// Add stages the record on the unit of work when one is open, so it reaches
// the buffer only if the unit commits. Records from a rolled-back unit are
// discarded with it.
func (o *Outbox) Add(ctx context.Context, record outbox.EventRecord) error {
	if current, ok := uow.FromContext(ctx); ok {
		if u, ok := current.(*unit); ok && !u.released {
			u.stageOutboxRecord(o, record)
			return nil
		}
	}
	o.append(record)
	return nil
}

func (o *Outbox) append(record outbox.EventRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	pending := o.records
	o.records = nil
	o.mu.Unlock()

	if o.Publish == nil {
		return nil
	}
	for _, rec := range pending {
		if err := o.Publish(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Records returns a copy of the buffered records. Test helper.
func (o *Outbox) Records() []outbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]outbox.EventRecord, len(o.records))
	copy(out, o.records)
	return out
}

type stagedOutboxRecord struct {
	box    *Outbox
	record outbox.EventRecord
}

func (u *unit) stageOutboxRecord(box *Outbox, record outbox.EventRecord) {
	u.outboxStaged = append(u.outboxStaged, stagedOutboxRecord{box: box, record: record})
}

var _ outbox.Outbox = (*Outbox)(nil)
