// Package component provides the lifecycle base shared by every chartflow
// engine object: a name-scoped unique id, an explicit two-phase
// initialization flag, and guarded destruction.
package component

import (
	"strconv"
	"strings"
	"sync"

	"github.com/dshills/chartflow/internal/logging"
)

var (
	uidMu     sync.Mutex
	uidCounts = make(map[string]int)
)

// UID returns the next id for the given name. The name is lowercased and
// runs of whitespace become a single '-', then a per-name counter is
// appended, so UID("Chart Context") yields "chart-context-1", then
// "chart-context-2", and so on.
func UID(name string) string {
	formatted := strings.ToLower(strings.Join(strings.Fields(name), "-"))

	uidMu.Lock()
	defer uidMu.Unlock()

	uidCounts[formatted]++
	return formatted + "-" + strconv.Itoa(uidCounts[formatted])
}

// Lifecycle is implemented by every engine object.
type Lifecycle interface {
	ID() string
	Initiated() bool
	Destroyed() bool
}

// Base tracks id, name and lifecycle state. It is meant to be embedded.
// Base is not safe for concurrent use.
type Base struct {
	id        string
	kind      string
	name      string
	initiated bool
	destroyed bool
	logger    *logging.Logger
}

// NewBase creates a Base whose id is derived from kind.
// A nil logger selects logging.Default().
func NewBase(kind string, logger *logging.Logger) Base {
	if logger == nil {
		logger = logging.Default()
	}
	return Base{
		id:     UID(kind),
		kind:   kind,
		logger: logger,
	}
}

// ID returns the unique id.
func (b *Base) ID() string {
	return b.id
}

// Kind returns the kind the id was derived from.
func (b *Base) Kind() string {
	return b.kind
}

// Name returns the arbitrary instance name.
func (b *Base) Name() string {
	return b.name
}

// SetName sets the arbitrary instance name.
func (b *Base) SetName(name string) {
	b.name = name
}

// Logger returns the component logger.
func (b *Base) Logger() *logging.Logger {
	if b.logger == nil {
		return logging.Default()
	}
	return b.logger
}

// SetLogger replaces the component logger. Nil is ignored.
func (b *Base) SetLogger(l *logging.Logger) {
	if l != nil {
		b.logger = l
	}
}

// FinishInit marks construction as complete. Constructors call it as
// their last step so that Initiated distinguishes a half-built value
// from a ready one.
func (b *Base) FinishInit() {
	b.initiated = true
}

// Initiated reports whether FinishInit has been called.
func (b *Base) Initiated() bool {
	return b.initiated
}

// Destroyed reports whether Destroy has been called.
func (b *Base) Destroyed() bool {
	return b.destroyed
}

// Destroy marks the component destroyed. Destroying twice is logged and
// reported by returning false; it is never fatal.
func (b *Base) Destroy() bool {
	if b.destroyed {
		b.Logger().Warn("attempt to destroy already destroyed component %s", b.id)
		return false
	}
	b.destroyed = true
	return true
}
