package realtime

import (
	"github.com/yungbote/coursehub/internal/domain/learning"
	"github.com/yungbote/coursehub/internal/store"
)

// SnapshotData is the first message a new stream receives.
type SnapshotData struct {
	Courses  []learning.Course    `json:"courses"`
	Stats    learning.CourseStats `json:"stats"`
	Selected *learning.Course     `json:"selected"`
}

// ForwardStore relays store events to the hub: every event on ChannelStore and,
// when it names a course, on that course's channel. The returned func stops
// forwarding.
func ForwardStore(st *store.Store, hub *SSEHub) func() {
	return st.Subscribe(func(ev store.Event) {
		event := SSEEvent(ev.Type)
		hub.Broadcast(SSEMessage{Channel: ChannelStore, Event: event, Data: ev})
		if ev.CourseID != "" {
			hub.Broadcast(SSEMessage{Channel: CourseChannel(ev.CourseID), Event: event, Data: ev})
		}
	})
}

func Snapshot(st *store.Store, channel string) SSEMessage {
	data := SnapshotData{Courses: st.Courses(), Stats: st.Stats()}
	if sel, ok := st.Selected(); ok {
		data.Selected = &sel
	}
	return SSEMessage{Channel: channel, Event: SSEEventSnapshot, Data: data}
}

// Attach queues a snapshot for client and subscribes it to channel while store
// mutations are held, so the stream continues exactly where the snapshot ends.
// client must be fresh: the snapshot goes into its empty outbound buffer.
func Attach(st *store.Store, hub *SSEHub, client *SSEClient, channel string) {
	st.Hold(func() {
		client.Outbound <- Snapshot(st, channel)
		hub.AddChannel(client, channel)
	})
}
