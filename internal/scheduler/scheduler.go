package scheduler

import (
	"container/heap"
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Filatest/sync-your-cookie/internal/browser"
	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	"github.com/Filatest/sync-your-cookie/internal/settings"
	"github.com/Filatest/sync-your-cookie/pkg/logger"
)

const (
	// DefaultDebounce is the quiet window before a batch is pushed.
	DefaultDebounce = 15 * time.Second
	// DefaultWatchdog bounds how long changes may postpone a batch.
	DefaultWatchdog = 60 * time.Second
	// DefaultIncognitoDelay lets a new private window finish opening.
	DefaultIncognitoDelay = time.Second

	maxSleepCap = 60 * time.Second
)

// Syncer performs the operations the scheduler triggers.
type Syncer interface {
	// PushDomains reads the current cookies of each configured key from the
	// browser and commits them in a single write.
	PushDomains(ctx context.Context, keys []string) error
	// PullDomain pulls the remote cookies of key into the browser for the
	// tab showing activeURL.
	PullDomain(ctx context.Context, activeURL, key string) error
	// SyncIncognito materializes the incognito plane.
	SyncIncognito(ctx context.Context) error
}

// Config configures a Scheduler.
type Config struct {
	Syncer Syncer
	// Browser is used to list tabs for auto-pull.
	Browser  browser.Browser
	Settings func() settings.Settings
	Logger   logger.Logger
	// Clock defaults to SystemClock.
	Clock          Clock
	Debounce       time.Duration
	Watchdog       time.Duration
	IncognitoDelay time.Duration
}

type eventKind int

const (
	evCookie eventKind = iota
	evTabUpdated
	evTabActivated
	evIncognitoWindow
	evStats
)

type event struct {
	kind   eventKind
	domain string
	tabID  string
	url    string
	status string
	stats  chan Stats
	done   chan struct{}
}

// Stats is a snapshot of the scheduler state.
type Stats struct {
	Pending       []string `json:"pending"`
	DebounceArmed bool     `json:"debounceArmed"`
	WatchdogArmed bool     `json:"watchdogArmed"`
	TimedOut      bool     `json:"timedOut"`
}

// Scheduler owns the auto-push, auto-pull and incognito triggers.
type Scheduler struct {
	cfg    Config
	log    logger.Logger
	clock  Clock
	events chan event
	ctx    context.Context
}

// New creates and starts a Scheduler. The scheduler goroutine exits when
// ctx is cancelled.
func New(ctx context.Context, cfg Config) *Scheduler {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Watchdog <= 0 {
		cfg.Watchdog = DefaultWatchdog
	}
	if cfg.IncognitoDelay <= 0 {
		cfg.IncognitoDelay = DefaultIncognitoDelay
	}
	s := &Scheduler{
		cfg:    cfg,
		log:    logger.Or(cfg.Logger),
		clock:  cfg.Clock,
		events: make(chan event, 64),
		ctx:    ctx,
	}
	if s.clock == nil {
		s.clock = SystemClock{}
	}
	go s.run()
	return s
}

// send hands ev to the scheduler goroutine and waits until it has been
// handled.
func (s *Scheduler) send(ev event) {
	ev.done = make(chan struct{})
	select {
	case s.events <- ev:
	case <-s.ctx.Done():
		return
	}
	select {
	case <-ev.done:
	case <-s.ctx.Done():
	}
}

// OnCookieChanged records a change of a cookie stored for domain.
func (s *Scheduler) OnCookieChanged(domain string) {
	s.send(event{kind: evCookie, domain: domain})
}

// OnTabUpdated handles a tab navigation.
func (s *Scheduler) OnTabUpdated(tabID, url, status string) {
	s.send(event{kind: evTabUpdated, tabID: tabID, url: url, status: status})
}

// OnTabActivated refreshes the remembered set of active tabs.
func (s *Scheduler) OnTabActivated() {
	s.send(event{kind: evTabActivated})
}

// OnIncognitoWindowOpened schedules an incognito sync.
func (s *Scheduler) OnIncognitoWindowOpened() {
	s.send(event{kind: evIncognitoWindow})
}

// Stats returns a snapshot of the scheduler state.
func (s *Scheduler) Stats() Stats {
	ch := make(chan Stats, 1)
	s.send(event{kind: evStats, stats: ch})
	select {
	case st := <-ch:
		return st
	default:
		return Stats{}
	}
}

// state is owned by the run goroutine.
type state struct {
	pending      map[string]struct{}
	timedOut     bool
	retries      int
	previousTabs []browser.Tab
	deadlines    *deadlineHeap
}

// run is the scheduler goroutine. It sleeps until the earliest deadline,
// capped at maxSleepCap, and otherwise waits for events.
func (s *Scheduler) run() {
	st := &state{pending: make(map[string]struct{}), deadlines: &deadlineHeap{}}
	heap.Init(st.deadlines)

	var timer Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
			timer = nil
		}
		if st.deadlines.Len() == 0 {
			return nil
		}
		dur := (*st.deadlines)[0].At.Sub(s.clock.Now())
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		timer = s.clock.NewTimer(dur)
		return timer.C()
	}

	fireDue := func() {
		now := s.clock.Now()
		for st.deadlines.Len() > 0 && !(*st.deadlines)[0].At.After(now) {
			s.fire(st, heapPop(st.deadlines).Kind)
		}
	}

	timerCh := resetTimer()
	for {
		select {
		case <-s.ctx.Done():
			return

		case ev := <-s.events:
			// Deadlines that already passed are handled before the event.
			fireDue()
			s.handle(st, ev)
			close(ev.done)
			timerCh = resetTimer()

		case <-timerCh:
			fireDue()
			timerCh = resetTimer()
		}
	}
}

func (s *Scheduler) handle(st *state, ev event) {
	switch ev.kind {
	case evCookie:
		s.cookieChanged(st, ev.domain)
	case evTabUpdated:
		s.tabUpdated(st, ev.tabID, ev.url, ev.status)
	case evTabActivated:
		st.previousTabs = s.activeTabs()
	case evIncognitoWindow:
		heapSet(st.deadlines, timerIncognito, s.clock.Now().Add(s.cfg.IncognitoDelay))
	case evStats:
		ev.stats <- Stats{
			Pending:       sortedKeys(st.pending),
			DebounceArmed: heapHas(st.deadlines, timerDebounce),
			WatchdogArmed: heapHas(st.deadlines, timerWatchdog),
			TimedOut:      st.timedOut,
		}
	}
}

func (s *Scheduler) cookieChanged(st *state, domain string) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		cookieEvents.WithLabelValues("ignored").Inc()
		return
	}
	if _, ok := s.cfg.Settings().AutoPushKeyFor(domain); !ok {
		cookieEvents.WithLabelValues("ignored").Inc()
		return
	}
	if st.timedOut && heapHas(st.deadlines, timerDebounce) {
		cookieEvents.WithLabelValues("dropped").Inc()
		return
	}
	st.pending[domain] = struct{}{}
	pendingDomains.Set(float64(len(st.pending)))
	cookieEvents.WithLabelValues("queued").Inc()

	now := s.clock.Now()
	heapSet(st.deadlines, timerDebounce, now.Add(s.cfg.Debounce))
	if !heapHas(st.deadlines, timerWatchdog) {
		heapPush(st.deadlines, deadline{Kind: timerWatchdog, At: now.Add(s.cfg.Watchdog)})
	}
}

func (s *Scheduler) fire(st *state, k timerKind) {
	switch k {
	case timerWatchdog:
		if heapHas(st.deadlines, timerDebounce) {
			st.timedOut = true
			s.log.Info("scheduler: changes kept arriving for %s, holding the batch", s.cfg.Watchdog)
		}
	case timerDebounce:
		st.timedOut = false
		heapRemove(st.deadlines, timerWatchdog)
		s.flush(st)
	case timerIncognito:
		if !s.cfg.Settings().EnableIncognitoSync {
			return
		}
		if err := s.cfg.Syncer.SyncIncognito(s.ctx); err != nil {
			s.log.Warning("scheduler: incognito sync failed: %v", err)
		}
	}
}

// flush pushes every pending domain that still resolves to an auto-push
// key. The pending set is cleared only when the batch write succeeds; a
// failed batch re-arms the debounce with a growing delay.
func (s *Scheduler) flush(st *state) {
	changed := sortedKeys(st.pending)
	keys := Resolve(changed, s.cfg.Settings())
	if len(keys) == 0 {
		s.log.Info("scheduler: no auto-push keys match %v", changed)
		st.retries = 0
		clear(st.pending)
		pendingDomains.Set(0)
		flushes.WithLabelValues("empty").Inc()
		return
	}
	if err := s.cfg.Syncer.PushDomains(s.ctx, keys); err != nil {
		// Retry the kept batch, doubling the wait up to the watchdog.
		st.retries++
		wait := s.cfg.Debounce << min(st.retries-1, 16)
		if wait > s.cfg.Watchdog || wait <= 0 {
			wait = s.cfg.Watchdog
		}
		heapSet(st.deadlines, timerDebounce, s.clock.Now().Add(wait))
		s.log.Warning("scheduler: auto-push of %v failed, retrying in %s: %v", keys, wait, err)
		flushes.WithLabelValues("failed").Inc()
		return
	}
	st.retries = 0
	for _, d := range changed {
		delete(st.pending, d)
	}
	pendingDomains.Set(float64(len(st.pending)))
	flushes.WithLabelValues("ok").Inc()
	s.log.Info("scheduler: auto-pushed %s", strings.Join(keys, ", "))
}

// Resolve maps changed cookie domains to the configured auto-push keys
// they belong to. Domains are compared after stripping a leading "." and
// "www.", and match when equal or when either is a subdomain of the
// other. The result is sorted and never contains an empty key.
func Resolve(changed []string, st settings.Settings) []string {
	set := make(map[string]struct{})
	for _, d := range changed {
		for key, dc := range st.Domains {
			if strings.TrimSpace(key) == "" || !dc.AutoPush {
				continue
			}
			if cookiemap.RelatedDomains(d, key) {
				set[key] = struct{}{}
			}
		}
	}
	return sortedKeys(set)
}

func (s *Scheduler) tabUpdated(st *state, tabID, url, status string) {
	if status != "loading" || url == "" {
		return
	}
	host := cookiemap.HostOf(url)
	key, ok := s.cfg.Settings().AutoPullKeyFor(host)
	if ok {
		ok = s.shouldPull(st, tabID, host)
	}
	if ok {
		if err := s.cfg.Syncer.PullDomain(s.ctx, url, key); err != nil {
			autoPulls.WithLabelValues("failed").Inc()
			s.log.Warning("scheduler: auto-pull of %s failed: %v", key, err)
		} else {
			autoPulls.WithLabelValues("ok").Inc()
		}
	}
	st.previousTabs = s.activeTabs()
}

// shouldPull is false when host is already open in another tab or was
// shown by a tab that was active before this navigation.
func (s *Scheduler) shouldPull(st *state, tabID, host string) bool {
	if s.cfg.Browser == nil {
		return true
	}
	tabs, err := s.cfg.Browser.Tabs(s.ctx)
	if err != nil {
		s.log.Warning("scheduler: failed to list tabs: %v", err)
		return false
	}
	for _, t := range tabs {
		if t.ID != tabID && cookiemap.HostOf(t.URL) == host {
			autoPulls.WithLabelValues("skipped").Inc()
			return false
		}
	}
	for _, t := range st.previousTabs {
		if cookiemap.HostOf(t.URL) == host {
			autoPulls.WithLabelValues("skipped").Inc()
			return false
		}
	}
	return true
}

func (s *Scheduler) activeTabs() []browser.Tab {
	if s.cfg.Browser == nil {
		return nil
	}
	tabs, err := s.cfg.Browser.Tabs(s.ctx)
	if err != nil {
		return nil
	}
	var out []browser.Tab
	for _, t := range tabs {
		if t.Active {
			out = append(out, t)
		}
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
