/*
Package progress carries the running percentage and the user-visible log of a
conversion batch.

A Reporter is owned by whoever runs the batch; it is the only writer. Any
number of observers can subscribe to updates or take snapshots.
*/
package progress

import (
	"sync"
	"time"
)

// Category classifies a log entry.
type Category int

const (
	Info Category = iota
	Warning
	Error
	Headline
	Done
)

func (c Category) String() string {
	switch c {
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Headline:
		return "headline"
	case Done:
		return "done"
	default:
		return "info"
	}
}

// Entry is one line of the log.
type Entry struct {
	Time     time.Time
	Category Category
	Message  string
	// File optionally names the config or image the entry is about.
	File string
}

// Update is delivered to subscribers for every new entry.
type Update struct {
	Entry   Entry
	Percent int
}

// Reporter tracks a batch. The zero value is not usable, use NewReporter.
type Reporter struct {
	mu        sync.Mutex
	now       func() time.Time
	total     int
	remaining int
	entries   []Entry
	subs      map[chan Update]struct{}
}

// NewReporter returns an idle Reporter.
func NewReporter() *Reporter {
	return &Reporter{
		now:  time.Now,
		subs: make(map[chan Update]struct{}),
	}
}

// Subscribe returns a channel receiving updates and a function ending the
// subscription. Updates are dropped when the channel buffer is full; the
// complete log is always available from Entries.
func (r *Reporter) Subscribe(buffer int) (<-chan Update, func()) {
	ch := make(chan Update, buffer)

	r.mu.Lock()
	r.subs[ch] = struct{}{}
	r.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, ch)
			r.mu.Unlock()
			close(ch)
		})
	}
}

func (r *Reporter) percent() int {
	if r.total == 0 {
		return 100
	}
	return (r.total - r.remaining) * 100 / r.total
}

// r.mu must be held.
func (r *Reporter) append(c Category, message, file string) {
	e := Entry{
		Time:     r.now(),
		Category: c,
		Message:  message,
		File:     file,
	}
	r.entries = append(r.entries, e)

	u := Update{Entry: e, Percent: r.percent()}
	for ch := range r.subs {
		select {
		case ch <- u:
		default:
		}
	}
}

// Begin resets the log and starts counting down total units of work. A batch
// with nothing to do is done immediately.
func (r *Reporter) Begin(total int, headline string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil
	r.total, r.remaining = total, total
	r.append(Headline, headline, "")
	if total == 0 {
		r.append(Done, "Done", "")
	}
}

// Step marks one unit of work complete. The Done entry is logged when the
// count reaches zero.
func (r *Reporter) Step() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.remaining == 0 {
		return
	}
	r.remaining--
	if r.remaining == 0 {
		r.append(Done, "Done", "")
	}
}

// Log appends an entry.
func (r *Reporter) Log(c Category, message, file string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.append(c, message, file)
}

// Percent returns how much of the batch is complete.
func (r *Reporter) Percent() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.percent()
}

// Entries returns a copy of the log.
func (r *Reporter) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Entry(nil), r.entries...)
}
