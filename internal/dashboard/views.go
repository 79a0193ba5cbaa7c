package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Ualine055/task-mgt-app/internal/session"
	"github.com/charmbracelet/log"
)

// Notifier is told after a successful write so other sessions of the same
// owner can refresh.
type Notifier interface {
	Notify(owner, originSID string)
}

type view struct {
	mu     sync.Mutex
	owner  string
	state  State
	loaded bool
	// stale is set by other sessions without holding mu.
	stale atomic.Bool
	// seen is the unix nano time of the last access.
	seen atomic.Int64
}

// Views keeps one dashboard state per session id. Each state survives
// between requests until the next full load.
type Views struct {
	store    Store
	logger   *log.Logger
	notifier Notifier
	now      func() time.Time

	mu    sync.Mutex
	views map[string]*view
}

func NewViews(store Store, logger *log.Logger, notifier Notifier) *Views {
	return &Views{
		store:    store,
		logger:   logger,
		notifier: notifier,
		now:      time.Now,
		views:    make(map[string]*view),
	}
}

func (v *Views) get(sess *session.Session) *view {
	v.mu.Lock()
	defer v.mu.Unlock()
	vw, ok := v.views[sess.ID()]
	if !ok {
		vw = &view{owner: sess.Owner()}
		v.views[sess.ID()] = vw
	}
	vw.seen.Store(v.now().UnixNano())
	return vw
}

// load refreshes vw from the store. The caller holds vw.mu.
func (v *Views) load(ctx context.Context, vw *view) {
	tasks, err := Load(ctx, v.store, vw.owner, v.now())
	if err != nil {
		v.logger.Error("load tasks", "owner", vw.owner, "err", err)
		vw.state.Alert = ReasonLoad
		return
	}
	vw.state = Refresh(vw.state, tasks)
	vw.loaded = true
	vw.stale.Store(false)
}

// Open returns the session's dashboard state, loading it on first use, when
// reload is set, or after another session of the owner changed a task.
func (v *Views) Open(ctx context.Context, sess *session.Session, reload bool) State {
	vw := v.get(sess)
	vw.mu.Lock()
	defer vw.mu.Unlock()
	if reload || !vw.loaded || vw.stale.Load() {
		v.load(ctx, vw)
	}
	return vw.state
}

// Snapshot returns the current state without touching the store.
func (v *Views) Snapshot(sess *session.Session) State {
	vw := v.get(sess)
	vw.mu.Lock()
	defer vw.mu.Unlock()
	return vw.state
}

// Dispatch runs cmd and reduces the session's state with its result. Other
// sessions are told about the change after the view lock is released.
func (v *Views) Dispatch(ctx context.Context, sess *session.Session, cmd Command) Result {
	vw := v.get(sess)
	vw.mu.Lock()
	res := Execute(ctx, v.store, sess, cmd, v.now())
	if !res.OK() {
		v.logger.Error("task "+res.Op.String()+" failed", "owner", vw.owner, "err", res.Err)
	}
	vw.state = Reduce(vw.state, res)
	vw.mu.Unlock()

	if res.OK() {
		v.Invalidate(vw.owner, sess.ID())
		if v.notifier != nil {
			v.notifier.Notify(vw.owner, sess.ID())
		}
	}
	return res
}

// Invalidate marks every view of owner except exceptSID for reload.
func (v *Views) Invalidate(owner, exceptSID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for sid, vw := range v.views {
		if sid != exceptSID && vw.owner == owner {
			vw.stale.Store(true)
		}
	}
}

func (v *Views) update(sess *session.Session, fn func(State) State) State {
	vw := v.get(sess)
	vw.mu.Lock()
	defer vw.mu.Unlock()
	vw.state = fn(vw.state)
	return vw.state
}

// BeginEdit opens the edit form for id. It reports false when the session's
// dashboard does not show that task.
func (v *Views) BeginEdit(sess *session.Session, id string) bool {
	found := false
	v.update(sess, func(s State) State {
		task, ok := s.Find(id)
		if !ok {
			return s
		}
		found = true
		return BeginEdit(s, task)
	})
	return found
}

func (v *Views) CancelEdit(sess *session.Session) State {
	return v.update(sess, CancelEdit)
}

func (v *Views) DismissAlert(sess *session.Session) State {
	return v.update(sess, DismissAlert)
}

func (v *Views) SetAlert(sess *session.Session, msg string) State {
	return v.update(sess, func(s State) State {
		s.Alert = msg
		return s
	})
}

// Sweep drops views not used for longer than maxIdle and returns how many
// were removed.
func (v *Views) Sweep(maxIdle time.Duration) int {
	cutoff := v.now().Add(-maxIdle).UnixNano()
	v.mu.Lock()
	defer v.mu.Unlock()
	removed := 0
	for sid, vw := range v.views {
		if vw.seen.Load() < cutoff {
			delete(v.views, sid)
			removed++
		}
	}
	return removed
}

func (v *Views) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.views)
}

// Close drops the state of a signed-out session.
func (v *Views) Close(sid string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.views, sid)
}
