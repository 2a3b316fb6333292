package netmon

import (
	"context"
	gosync "sync"
	"time"

	"go.uber.org/zap"
	"resty.dev/v3"
)

// Monitor probes a well-known endpoint on an interval and tells subscribers
// when connectivity flips. Any HTTP response counts as online; only a
// transport-level failure means the network is gone. Captive portals and
// broken upstreams still prove the link works.
type Monitor struct {
	url      string
	interval time.Duration
	http     *resty.Client
	logger   *zap.Logger

	mu     gosync.Mutex
	online bool
	probed bool
	subs   []chan bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     gosync.WaitGroup
}

func New(url string, interval, timeout time.Duration, logger *zap.Logger) *Monitor {
	return &Monitor{
		url:      url,
		interval: interval,
		http:     resty.New().SetTimeout(timeout),
		logger:   logger,
	}
}

// Subscribe returns a channel that carries the state after the first probe
// and every transition after that. The channel holds one pending value;
// a slow reader sees the latest state, not a backlog.
func (m *Monitor) Subscribe() <-chan bool {
	ch := make(chan bool, 1)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	if m.probed {
		ch <- m.online
	}
	m.mu.Unlock()
	return ch
}

// Online reports the last probed state. Before the first probe it reports
// false: offline-first means assuming nothing.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Start runs the first probe synchronously so subscribers learn the initial
// state right away, then keeps probing on the interval.
func (m *Monitor) Start() {
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.set(m.probe())
	m.wg.Add(1)
	go m.run()
}

func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
		m.wg.Wait()
	}
	m.http.Close()
}

func (m *Monitor) run() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.set(m.probe())
		}
	}
}

func (m *Monitor) probe() bool {
	_, err := m.http.R().SetContext(m.ctx).Head(m.url)
	return err == nil
}

func (m *Monitor) set(online bool) {
	m.mu.Lock()
	first := !m.probed
	changed := m.online != online
	m.online = online
	m.probed = true
	subs := m.subs
	m.mu.Unlock()

	if !first && !changed {
		return
	}
	if changed || first {
		m.logger.Info("connectivity probe", zap.Bool("online", online))
	}
	for _, ch := range subs {
		// drop the stale pending value so the latest always fits
		select {
		case <-ch:
		default:
		}
		ch <- online
	}
}
