package serv

import (
	"github.com/pgqlgate/pgqlgate/cdc"
	"github.com/pgqlgate/pgqlgate/core"
)

// hubAdapter adapts *cdc.Hub to core.Hub: the two packages intentionally
// don't import each other, so the event type is translated at the
// boundary instead.
type hubAdapter struct {
	hub *cdc.Hub
}

func newHubAdapter(hub *cdc.Hub) core.Hub { return hubAdapter{hub: hub} }

func (a hubAdapter) Subscribe(table string) (<-chan core.ChangeEvent, func()) {
	in, unsubscribe := a.hub.Subscribe(table)
	out := make(chan core.ChangeEvent, 16)
	go func() {
		defer close(out)
		for ev := range in {
			out <- core.ChangeEvent{
				Operation: string(ev.Operation),
				Table:     ev.Table,
				Schema:    ev.Schema,
				Timestamp: ev.Timestamp,
				LSN:       ev.LSN,
				Data:      ev.Data,
				Old:       ev.Old,
				New:       ev.New,
				Err:       ev.Err,
			}
		}
	}()
	return out, unsubscribe
}
