package sync

import (
	"context"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-pos-sync/internal/model"
	"go-pos-sync/internal/store"
)

// Config tunes the coordinator loop.
type Config struct {
	// Debounce is how long to sit on a local-change signal before cycling,
	// so a burst of writes becomes one push.
	Debounce time.Duration
	// Interval is the periodic cycle that catches anything a signal missed.
	Interval time.Duration
	// OpTimeout bounds each outbound phase (push, pull) of a cycle.
	OpTimeout time.Duration
}

// Coordinator owns the push/pull loop between the local store and the
// cloud. It reacts to local mutations (debounced), network transitions,
// a periodic tick and manual triggers; cycles never overlap because only
// the run goroutine starts them.
type Coordinator struct {
	cfg     Config
	local   *store.Local
	cloud   CloudStore
	applier RemoteApplier
	logger  *zap.Logger
	events  Events

	notify  chan struct{}
	trigger chan struct{}
	netCh   <-chan bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     gosync.WaitGroup

	mu        gosync.Mutex
	started   bool
	running   bool
	online    bool
	state     State
	lastCycle *Summary
	lastError string
}

func New(cfg Config, local *store.Local, cloud CloudStore, applier RemoteApplier, netCh <-chan bool, logger *zap.Logger, events Events) *Coordinator {
	return &Coordinator{
		cfg:     cfg,
		local:   local,
		cloud:   cloud,
		applier: applier,
		logger:  logger,
		events:  events,
		notify:  make(chan struct{}, 1),
		trigger: make(chan struct{}, 1),
		netCh:   netCh,
		state:   StateIdle,
	}
}

// Start launches the run loop. Safe to call once.
func (c *Coordinator) Start() {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.wg.Add(1)
	go c.run()
	c.logger.Info("sync coordinator started",
		zap.Duration("debounce", c.cfg.Debounce),
		zap.Duration("interval", c.cfg.Interval))
}

// Stop shuts the loop down. An in-flight cycle runs to completion; its
// outbound calls carry their own timeouts, so Stop is bounded too.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.cancel()
	c.wg.Wait()
	c.logger.Info("sync coordinator stopped")
}

// NotifyLocalChange signals that a tracked write happened. Non-blocking;
// signals arriving while one is pending coalesce.
func (c *Coordinator) NotifyLocalChange() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// TriggerSync requests an immediate cycle. It refuses rather than queues:
// callers get told why nothing will happen.
func (c *Coordinator) TriggerSync() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case !c.started:
		return ErrNotReady
	case !c.online:
		return ErrOffline
	case c.running:
		return ErrBusy
	}
	select {
	case c.trigger <- struct{}{}:
	default:
	}
	return nil
}

// Status reports the coordinator's current condition.
func (c *Coordinator) Status() Status {
	pending, err := c.local.CountDirty()
	if err != nil {
		pending = -1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:     c.state,
		Online:    c.online,
		LastCycle: c.lastCycle,
		LastError: c.lastError,
		Pending:   pending,
		UpdatedAt: time.Now(),
	}
}

func (c *Coordinator) run() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	debounce := time.NewTimer(c.cfg.Debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	debouncing := false

	for {
		select {
		case <-c.ctx.Done():
			return

		case <-c.notify:
			// restart the window; a burst keeps collapsing until writes
			// go quiet for one debounce period
			if debouncing && !debounce.Stop() {
				<-debounce.C
			}
			debounce.Reset(c.cfg.Debounce)
			debouncing = true

		case <-debounce.C:
			debouncing = false
			c.cycle("local change")

		case <-ticker.C:
			c.cycle("interval")

		case <-c.trigger:
			c.cycle("manual")

		case online, ok := <-c.netCh:
			if !ok {
				c.netCh = nil
				continue
			}
			c.setOnline(online)
			if online {
				c.cycle("reconnect")
			}
		}
	}
}

func (c *Coordinator) setOnline(online bool) {
	c.mu.Lock()
	changed := c.online != online
	c.online = online
	c.mu.Unlock()
	if changed {
		c.logger.Info("network state changed", zap.Bool("online", online))
		c.publish()
	}
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.publish()
}

func (c *Coordinator) publish() {
	if c.events != nil {
		c.events.SyncStatus(c.Status())
	}
}

// cycle runs one push then one pull. Only the run goroutine calls it, so
// cycles cannot overlap; the running flag exists for TriggerSync.
func (c *Coordinator) cycle(reason string) {
	c.mu.Lock()
	if !c.online {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	sum := &Summary{StartedAt: time.Now()}
	err := c.runCycle(sum)

	c.mu.Lock()
	c.running = false
	sum.Duration = time.Since(sum.StartedAt)
	c.lastCycle = sum
	if err != nil {
		sum.Err = err.Error()
		c.lastError = err.Error()
		c.state = StateError
	} else {
		c.lastError = ""
		c.state = StateIdle
	}
	c.mu.Unlock()
	c.publish()

	if err != nil {
		c.logger.Warn("sync cycle failed",
			zap.String("reason", reason),
			zap.Error(err),
			zap.Int("pushed", sum.Pushed),
			zap.Int("push_failed", sum.PushFailed))
		return
	}
	c.logger.Info("sync cycle complete",
		zap.String("reason", reason),
		zap.Duration("took", sum.Duration),
		zap.Int("pushed", sum.Pushed),
		zap.Int("push_failed", sum.PushFailed),
		zap.Int("pulled", sum.Pulled),
		zap.Int("applied", sum.PullApplied),
		zap.Int("skipped", sum.PullSkipped))
}

func (c *Coordinator) runCycle(sum *Summary) error {
	ensureCtx, cancel := context.WithTimeout(context.Background(), c.cfg.OpTimeout)
	err := c.cloud.Ensure(ensureCtx)
	cancel()
	if err != nil {
		return err
	}

	c.setState(StatePushing)
	if err := c.push(sum); err != nil {
		return err
	}

	c.setState(StatePulling)
	return c.pull(sum)
}

// push sends every dirty record. Failures are isolated per record so one
// poisoned row cannot dam the queue, but a transport-level error ends the
// phase early; the rest stays dirty for the next cycle.
func (c *Coordinator) push(sum *Summary) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.OpTimeout)
	defer cancel()
	now := time.Now()

	products, err := c.local.DirtyProducts()
	if err != nil {
		return err
	}
	var acked []uuid.UUID
	for i := range products {
		if err := c.cloud.UpsertProduct(ctx, &products[i]); err != nil {
			sum.PushFailed++
			c.logger.Warn("push product failed",
				zap.String("id", products[i].ID.String()), zap.Error(err))
			if IsTransient(err) {
				break
			}
			continue
		}
		acked = append(acked, products[i].ID)
	}
	if err := c.local.MarkProductsSynced(acked, now); err != nil {
		return err
	}
	sum.Pushed += len(acked)

	sales, err := c.local.DirtySales()
	if err != nil {
		return err
	}
	for i := range sales {
		ref, err := c.cloud.UpsertSale(ctx, &sales[i])
		if err != nil {
			sum.PushFailed++
			c.logger.Warn("push sale failed",
				zap.String("id", sales[i].ID.String()), zap.Error(err))
			if IsTransient(err) {
				break
			}
			continue
		}
		if err := c.local.MarkSaleSynced(sales[i].ID, ref, now); err != nil {
			return err
		}
		sum.Pushed++
	}

	items, err := c.local.DirtyCartItems()
	if err != nil {
		return err
	}
	var cartAcked []uuid.UUID
	for i := range items {
		if err := c.cloud.UpsertCartItem(ctx, &items[i]); err != nil {
			sum.PushFailed++
			c.logger.Warn("push cart item failed",
				zap.String("id", items[i].ID.String()), zap.Error(err))
			if IsTransient(err) {
				break
			}
			continue
		}
		cartAcked = append(cartAcked, items[i].ID)
	}
	if err := c.local.MarkCartItemsSynced(cartAcked, now); err != nil {
		return err
	}
	sum.Pushed += len(cartAcked)

	return nil
}

// pull fetches what other terminals changed since the last pull and hands
// it to the applier. The checkpoint is taken before the query and advanced
// only after a clean apply, so a crash re-pulls an overlapping window into
// an idempotent applier.
func (c *Coordinator) pull(sum *Summary) error {
	since, err := c.local.Checkpoint(model.CheckpointLastCloudPull)
	if err != nil {
		return err
	}
	pullStart := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.OpTimeout)
	defer cancel()

	remote, err := c.cloud.GetModifiedSince(ctx, since)
	if err != nil {
		return err
	}
	sum.Pulled = len(remote)
	if len(remote) > 0 {
		applied, skipped, err := c.applier.ApplyProducts(ctx, remote)
		sum.PullApplied = applied
		sum.PullSkipped = skipped
		if err != nil {
			return err
		}
	}
	return c.local.SetCheckpoint(model.CheckpointLastCloudPull, pullStart)
}
