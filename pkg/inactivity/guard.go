// Package inactivity terminates the session after a period with no
// qualifying user input, showing a countdown warning first.
package inactivity

import (
	"sync"
	"time"

	"github.com/anatoly-dev/go-store-sync/pkg/auth"
	"github.com/anatoly-dev/go-store-sync/pkg/metrics"
	"go.uber.org/zap"
)

// Navigator is the redirect primitive. CurrentPath lets the guard avoid
// redirecting when the user is already on the login screen.
type Navigator interface {
	CurrentPath() string
	Redirect(path string)
}

// Guard runs the Idle -> Warning -> LoggedOut state machine. Any
// qualifying input event (reported via Activity) in a non-terminal state
// cancels both timers and restarts the cycle.
type Guard struct {
	limit     time.Duration
	warning   time.Duration
	tick      time.Duration
	loginPath string
	session   auth.SessionProvider
	nav       Navigator
	logger    *zap.Logger
	metrics   *metrics.SessionMetrics
	onWarning func(secondsRemaining int)

	mu               sync.Mutex
	gen              uint64
	delayTimer       *time.Timer
	tickerStop       chan struct{}
	warningActive    bool
	secondsRemaining int
	loggedOut        bool
	started          bool
}

type Option func(*Guard)

// WithTickInterval overrides the one-second countdown tick.
func WithTickInterval(tick time.Duration) Option {
	return func(g *Guard) {
		if tick > 0 {
			g.tick = tick
		}
	}
}

// WithWarningCallback registers the countdown observer; it is invoked on
// entering Warning and on every tick with the seconds left.
func WithWarningCallback(fn func(secondsRemaining int)) Option {
	return func(g *Guard) {
		g.onWarning = fn
	}
}

func NewGuard(limit, warning time.Duration, loginPath string, session auth.SessionProvider, nav Navigator, logger *zap.Logger, opts ...Option) *Guard {
	guard := &Guard{
		limit:     limit,
		warning:   warning,
		tick:      time.Second,
		loginPath: loginPath,
		session:   session,
		nav:       nav,
		logger:    logger,
	}

	for _, opt := range opts {
		opt(guard)
	}

	return guard
}

func (g *Guard) SetMetrics(metrics *metrics.SessionMetrics) {
	g.metrics = metrics
}

// Start arms the delay timer for limit minus warning. Calling Start on a
// running guard restarts it.
func (g *Guard) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stopTimersLocked()
	g.loggedOut = false
	g.started = true
	g.warningActive = false
	g.armDelayLocked()
}

// Activity records a qualifying input event: both timers are cancelled,
// the warning hides and the delay restarts from zero. No-op after logout
// or teardown.
func (g *Guard) Activity() {
	g.mu.Lock()
	if !g.started || g.loggedOut {
		g.mu.Unlock()
		return
	}

	g.stopTimersLocked()
	g.warningActive = false
	g.secondsRemaining = 0
	g.armDelayLocked()
	g.mu.Unlock()

	g.session.UpdateActivity()

	if g.metrics != nil {
		g.metrics.ActivityResets.Inc()
	}
}

// StayLoggedIn ends the warning early; equivalent to a qualifying event.
func (g *Guard) StayLoggedIn() {
	g.Activity()
}

// LogoutNow forces the credential clear and redirect immediately.
func (g *Guard) LogoutNow() {
	g.mu.Lock()
	done := g.logoutLocked()
	g.mu.Unlock()

	if done {
		g.logger.Info("User requested immediate logout")
	}
}

// Warning reports whether the countdown is visible and the seconds left.
func (g *Guard) Warning() (bool, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.warningActive, g.secondsRemaining
}

func (g *Guard) LoggedOut() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loggedOut
}

// Stop cancels both timers. A stopped guard ignores events until Start
// is called again; leaking timers across navigations is the failure this
// guards against.
func (g *Guard) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stopTimersLocked()
	g.started = false
	g.warningActive = false
}

func (g *Guard) armDelayLocked() {
	delay := g.limit - g.warning
	if delay < 0 {
		delay = 0
	}
	gen := g.gen
	g.delayTimer = time.AfterFunc(delay, func() { g.enterWarning(gen) })
}

// enterWarning runs from the delay timer. The generation check catches a
// timer whose callback already fired but was blocked on the mutex while
// a qualifying event reset the cycle: stopping such a timer is a no-op,
// so the stale callback must recognize itself and bail.
func (g *Guard) enterWarning(gen uint64) {
	g.mu.Lock()
	if gen != g.gen || !g.started || g.loggedOut || g.warningActive {
		g.mu.Unlock()
		return
	}

	g.warningActive = true
	g.secondsRemaining = int(g.warning / g.tick)
	if g.secondsRemaining < 1 {
		g.secondsRemaining = 1
	}
	remaining := g.secondsRemaining

	stop := make(chan struct{})
	g.tickerStop = stop
	g.mu.Unlock()

	g.logger.Info("Inactivity warning shown", zap.Int("secondsRemaining", remaining))

	if g.metrics != nil {
		g.metrics.WarningsShown.Inc()
	}

	if g.onWarning != nil {
		g.onWarning(remaining)
	}

	go g.countdown(stop)
}

func (g *Guard) countdown(stop chan struct{}) {
	ticker := time.NewTicker(g.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			g.mu.Lock()
			if !g.warningActive || g.loggedOut {
				g.mu.Unlock()
				return
			}

			g.secondsRemaining--
			remaining := g.secondsRemaining

			var done bool
			if remaining <= 0 {
				done = g.logoutLocked()
			}
			g.mu.Unlock()

			if done {
				g.logger.Info("Session terminated after inactivity timeout")

				if g.metrics != nil {
					g.metrics.InactivityLogouts.Inc()
				}
				return
			}

			if g.onWarning != nil {
				g.onWarning(remaining)
			}
		}
	}
}

// logoutLocked moves to the terminal state, clears credentials and
// redirects unless already on the login screen. Returns false when the
// guard was already logged out. The caller holds g.mu.
func (g *Guard) logoutLocked() bool {
	if g.loggedOut {
		return false
	}

	g.loggedOut = true
	g.warningActive = false
	g.stopTimersLocked()

	g.session.Clear()

	if g.nav.CurrentPath() != g.loginPath {
		g.nav.Redirect(g.loginPath)
	}

	return true
}

// stopTimersLocked cancels both timers and invalidates any callback
// already in flight by bumping the generation. The caller holds g.mu.
func (g *Guard) stopTimersLocked() {
	g.gen++
	if g.delayTimer != nil {
		g.delayTimer.Stop()
		g.delayTimer = nil
	}
	if g.tickerStop != nil {
		close(g.tickerStop)
		g.tickerStop = nil
	}
}
