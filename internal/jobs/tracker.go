package jobs

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// DefaultStatusTTL is how long a job status stays readable after its last
// update.
const DefaultStatusTTL = time.Hour

// Tracker keeps recent job statuses in a TTL cache.
type Tracker struct {
	mu    sync.Mutex
	items *ttlcache.Cache[string, Status]
}

// NewTracker returns a Tracker whose entries expire ttl after their last
// update. Call Start to run the expiry loop and Stop to end it.
func NewTracker(ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = DefaultStatusTTL
	}
	return &Tracker{
		items: ttlcache.New[string, Status](
			ttlcache.WithTTL[string, Status](ttl),
			ttlcache.WithDisableTouchOnHit[string, Status](),
		),
	}
}

func (t *Tracker) Start() { go t.items.Start() }
func (t *Tracker) Stop()  { t.items.Stop() }

func (t *Tracker) put(s Status) {
	t.items.Set(s.ID, s, ttlcache.DefaultTTL)
}

// update applies fn to the stored status of id, if still present.
func (t *Tracker) update(id string, fn func(*Status)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	item := t.items.Get(id)
	if item == nil {
		return
	}
	s := item.Value()
	fn(&s)
	t.put(s)
}

func (t *Tracker) Status(id string) (Status, bool) {
	item := t.items.Get(id)
	if item == nil {
		return Status{}, false
	}
	return item.Value(), true
}
