package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hospital-roster/internal/roster"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const offlineBanner = "Could not reach the roster service. Showing the last known roster."

// Dashboard keeps a local copy of the roster and its stats for an interactive caller
type Dashboard struct {
	client   *Client
	store    *roster.Store
	fallback []roster.Result
	delay    time.Duration

	mu     sync.Mutex
	stats  roster.Stats
	banner string
	closed bool
}

// DashboardOption configures a Dashboard
type DashboardOption func(*Dashboard)

// WithFallback sets the roster shown when the service cannot be reached and
// nothing has been fetched yet
func WithFallback(results []roster.Result) DashboardOption {
	return func(d *Dashboard) { d.fallback = results }
}

func NewDashboard(c *Client, opts ...DashboardOption) *Dashboard {
	d := &Dashboard{client: c, store: roster.NewStore(), delay: retryDelay}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Store exposes the roster snapshot for filtering
func (d *Dashboard) Store() *roster.Store {
	return d.store
}

// View filters the current roster
func (d *Dashboard) View(c roster.Criteria) []roster.Hospital {
	return d.store.View(c)
}

// Stats returns the last fetched stats
func (d *Dashboard) Stats() roster.Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Banner returns the current error banner, empty when there is none
func (d *Dashboard) Banner() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.banner
}

// DismissBanner clears the error banner
func (d *Dashboard) DismissBanner() {
	d.mu.Lock()
	d.banner = ""
	d.mu.Unlock()
}

// Close detaches the dashboard; fetches that complete afterwards change nothing
func (d *Dashboard) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}

// Refresh fetches the roster and the stats independently. Whichever completes
// last wins for the state it owns. A transport failure keeps the last known
// roster (or the fallback) and raises the banner.
func (d *Dashboard) Refresh(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return d.refreshRoster(ctx) })
	g.Go(func() error { return d.refreshStats(ctx) })
	return g.Wait()
}

func (d *Dashboard) refreshRoster(ctx context.Context) error {
	results, err := retry(ctx, retryAttempts, d.delay, func(ctx context.Context) ([]roster.Result, error) {
		return d.client.Hospitals(ctx, roster.Criteria{})
	})

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}

	if err != nil {
		d.degrade(err)
		return fmt.Errorf("fetch roster: %w", err)
	}

	for _, r := range results {
		if r.Defaulted() {
			log.Debug().Str("hospital_id", r.Hospital.ID).Strs("warnings", r.Warnings).Msg("Hospital record defaulted")
		}
	}
	d.store.Replace(results)
	return nil
}

func (d *Dashboard) refreshStats(ctx context.Context) error {
	stats, err := d.client.Stats(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}

	if err != nil {
		if IsTransport(err) {
			d.banner = offlineBanner
			d.stats = roster.Summarize(d.store.Snapshot())
		}
		return fmt.Errorf("fetch stats: %w", err)
	}
	d.stats = stats
	return nil
}

// degrade must be called with d.mu held
func (d *Dashboard) degrade(err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		d.banner = apiErr.Message
		return
	}
	d.banner = offlineBanner
	if d.store.Len() == 0 && len(d.fallback) > 0 {
		d.store.Replace(d.fallback)
	}
}

// SaveAdmins reconciles the admin edits of one hospital against its current
// admins, submits the payload and re-fetches the roster. Validation failures are
// returned as roster.ValidationErrors and nothing is sent.
func (d *Dashboard) SaveAdmins(ctx context.Context, hospitalID string, drafts []roster.DraftAdmin, removalIDs []string, primary *roster.PrimaryAdminEdit) (*SaveResult, error) {
	existing, err := d.client.HospitalAdmins(ctx, hospitalID)
	if err != nil {
		return nil, fmt.Errorf("fetch admins: %w", err)
	}

	payload, err := roster.Reconcile(existing, drafts, removalIDs, primary)
	if err != nil {
		return nil, err
	}
	if payload.IsEmpty() {
		return &SaveResult{AddedAdmins: []AddedAdmin{}}, nil
	}

	res, err := d.client.UpdateHospital(ctx, hospitalID, nil, payload)
	if err != nil {
		return nil, err
	}
	if res.AddedAdminsCount.Failed > 0 {
		log.Warn().
			Str("hospital_id", hospitalID).
			Int("successful", res.AddedAdminsCount.Successful).
			Int("failed", res.AddedAdminsCount.Failed).
			Msg("Some admins were not added")
	}

	if err := d.refreshRoster(ctx); err != nil {
		log.Warn().Err(err).Msg("Roster refetch after save failed")
	}
	return res, nil
}
