package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"pensionado/internal/domain"
	"pensionado/internal/events"
	"pensionado/internal/metrics"
	"pensionado/internal/models"
	"pensionado/internal/validator"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrReservationCancelled = errors.New("reservation is cancelled")
	ErrSubmitInProgress     = errors.New("another reservation change is still being saved")
	ErrNotSignedIn          = errors.New("no user signed in")
	ErrNotLoaded            = errors.New("reservations not loaded")
)

const (
	opLoad   = "load"
	opCreate = "create"
	opEdit   = "edit"
	opCancel = "cancel"
)

// DraftValidator checks a reservation form against the business rules.
type DraftValidator interface {
	Validate(in validator.Input) validator.ValidationErrors
}

// SeedFunc returns the demo reservations of userID. An empty result means nothing to seed.
type SeedFunc func(userID string) []models.Reservation

type ManagerOption func(*ReservationManager)

func WithClock(now func() time.Time) ManagerOption {
	return func(m *ReservationManager) { m.now = now }
}

func WithTablePicker(pick func() string) ManagerOption {
	return func(m *ReservationManager) { m.pickTable = pick }
}

func WithIDGenerator(gen func(now time.Time) string) ManagerOption {
	return func(m *ReservationManager) { m.newID = gen }
}

// WithSeed sets the first-run dataset. A nil seed disables seeding.
func WithSeed(seed SeedFunc) ManagerOption {
	return func(m *ReservationManager) { m.seed = seed }
}

func WithEventPublisher(p domain.EventPublisher) ManagerOption {
	return func(m *ReservationManager) { m.events = p }
}

// RandomTable picks "Mesa N" with N uniform in 1..count.
func RandomTable(count int) func() string {
	if count <= 0 {
		count = models.DefaultTableCount
	}
	return func() string {
		return fmt.Sprintf("Mesa %d", rand.IntN(count)+1)
	}
}

// NewReservationID returns "<unix millis>-<random suffix>".
func NewReservationID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s", now.UnixMilli(), suffix)
}

var _ domain.ReservationManager = (*ReservationManager)(nil)

// ReservationManager owns the signed-in user's reservation list and draft
// form. Store I/O runs without holding mu; only one write is in flight at
// a time and results arriving after Close are discarded. generation counts
// committed writes so a load that read before a commit cannot replace it.
type ReservationManager struct {
	store     domain.ReservationStore
	validator DraftValidator
	session   domain.Session
	events    domain.EventPublisher
	logger    *zerolog.Logger

	now       func() time.Time
	pickTable func() string
	newID     func(now time.Time) string
	seed      SeedFunc

	mu           sync.Mutex
	userID       string
	reservations []models.Reservation
	draft        models.Draft
	lastErr      error
	submitting   bool
	closed       bool
	generation   uint64
}

func NewReservationManager(store domain.ReservationStore, v DraftValidator, session domain.Session, logger *zerolog.Logger, opts ...ManagerOption) *ReservationManager {
	m := &ReservationManager{
		store:     store,
		validator: v,
		session:   session,
		logger:    logger,
		now:       time.Now,
		pickTable: RandomTable(models.DefaultTableCount),
		newID:     NewReservationID,
		draft:     models.NewDraft(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load reads the current user's reservations, seeding the demo dataset
// when the user has none stored. On failure the previous list is kept.
func (m *ReservationManager) Load(ctx context.Context) error {
	userID := m.session.CurrentUserID()
	if userID == "" {
		return ErrNotSignedIn
	}

	m.mu.Lock()
	startGen := m.generation
	m.mu.Unlock()

	list, err := m.store.LoadForUser(ctx, userID)
	seeded := false
	if err == nil && len(list) == 0 && m.seed != nil {
		if demo := m.seed(userID); len(demo) > 0 {
			if err = m.store.SaveForUser(ctx, userID, demo); err == nil {
				list, seeded = demo, true
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}

	if err != nil {
		if m.userID != userID {
			m.userID = userID
			m.reservations = []models.Reservation{}
		}
		m.lastErr = err
		metrics.IncReservationOp(opLoad, metrics.ResultError)
		m.logger.Error().Err(err).Str("user_id", userID).Msg("failed to load reservations")
		return err
	}

	if m.userID == userID && m.generation != startGen {
		m.logger.Debug().Str("user_id", userID).Msg("load overtaken by a committed write, keeping newer list")
		metrics.IncReservationOp(opLoad, metrics.ResultNoop)
		return nil
	}

	m.userID = userID
	m.reservations = list
	m.lastErr = nil
	metrics.IncReservationOp(opLoad, metrics.ResultOK)
	m.logger.Debug().Str("user_id", userID).Int("count", len(list)).Bool("seeded", seeded).Msg("reservations loaded")
	return nil
}

// Refresh reloads from the store; the visible list is replaced only on success.
func (m *ReservationManager) Refresh(ctx context.Context) error {
	return m.Load(ctx)
}

// Create validates draft and persists a new pending reservation. Rule
// violations come back as validator.ValidationErrors with nothing changed.
func (m *ReservationManager) Create(ctx context.Context, draft models.Draft) (*models.Reservation, error) {
	m.mu.Lock()
	userID, err := m.beginWrite(opCreate)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}

	now := m.now()
	if errs := m.validator.Validate(validator.Input{Draft: draft, Existing: m.reservations, Now: now}); len(errs) > 0 {
		m.submitting = false
		m.mu.Unlock()
		metrics.IncReservationOp(opCreate, metrics.ResultRejected)
		return nil, errs
	}

	res := models.Reservation{
		ID:        m.newID(now),
		UserID:    userID,
		Date:      draft.Date,
		Time:      draft.Time,
		PartySize: draft.PartySize,
		Table:     m.pickTable(),
		Status:    models.StatusPending,
		Comments:  draft.Comments,
		CreatedAt: now.Format(time.RFC3339),
	}
	next := append(cloneReservations(m.reservations), res)
	m.mu.Unlock()

	if err := m.commit(ctx, opCreate, userID, next); err != nil {
		return nil, err
	}

	m.publish(events.EventReservationCreated, res)
	m.logger.Info().Str("reservation_id", res.ID).Str("user_id", userID).Str("date", res.Date).Str("time", res.Time).Msg("reservation created")
	return &res, nil
}

// BeginEdit loads an existing reservation into the draft form.
func (m *ReservationManager) BeginEdit(id string) (models.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return models.Draft{}, ErrReservationNotFound
	}
	m.draft = models.DraftOf(m.reservations[idx])
	return m.draft, nil
}

// Edit replaces date, time, party size and comments of reservation id.
// ID, owner, table, status and creation time are kept.
func (m *ReservationManager) Edit(ctx context.Context, id string, draft models.Draft) (*models.Reservation, error) {
	m.mu.Lock()
	userID, err := m.beginWrite(opEdit)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}

	idx := m.indexOf(id)
	if idx < 0 {
		m.submitting = false
		m.mu.Unlock()
		metrics.IncReservationOp(opEdit, metrics.ResultNotFound)
		return nil, ErrReservationNotFound
	}
	if !m.reservations[idx].IsActive() {
		m.submitting = false
		m.mu.Unlock()
		metrics.IncReservationOp(opEdit, metrics.ResultRejected)
		return nil, ErrReservationCancelled
	}

	in := validator.Input{Draft: draft, Existing: m.reservations, EditingID: id, Now: m.now()}
	if errs := m.validator.Validate(in); len(errs) > 0 {
		m.submitting = false
		m.mu.Unlock()
		metrics.IncReservationOp(opEdit, metrics.ResultRejected)
		return nil, errs
	}

	next := cloneReservations(m.reservations)
	updated := next[idx]
	updated.Date = draft.Date
	updated.Time = draft.Time
	updated.PartySize = draft.PartySize
	updated.Comments = draft.Comments
	next[idx] = updated
	m.mu.Unlock()

	if err := m.commit(ctx, opEdit, userID, next); err != nil {
		return nil, err
	}

	m.publish(events.EventReservationEdited, updated)
	m.logger.Info().Str("reservation_id", id).Str("user_id", userID).Msg("reservation edited")
	return &updated, nil
}

// Cancel marks reservation id as cancelled. Cancelling twice succeeds
// without touching the store.
func (m *ReservationManager) Cancel(ctx context.Context, id string) error {
	m.mu.Lock()
	userID, err := m.beginWrite(opCancel)
	if err != nil {
		m.mu.Unlock()
		return err
	}

	idx := m.indexOf(id)
	if idx < 0 {
		m.submitting = false
		m.mu.Unlock()
		metrics.IncReservationOp(opCancel, metrics.ResultNotFound)
		return ErrReservationNotFound
	}
	if !m.reservations[idx].IsActive() {
		m.submitting = false
		m.mu.Unlock()
		metrics.IncReservationOp(opCancel, metrics.ResultNoop)
		return nil
	}

	next := cloneReservations(m.reservations)
	next[idx].Status = models.StatusCancelled
	cancelled := next[idx]
	m.mu.Unlock()

	if err := m.commit(ctx, opCancel, userID, next); err != nil {
		return err
	}

	m.publish(events.EventReservationCancelled, cancelled)
	m.logger.Info().Str("reservation_id", id).Str("user_id", userID).Msg("reservation cancelled")
	return nil
}

// beginWrite claims the single write slot. Caller holds mu.
func (m *ReservationManager) beginWrite(op string) (string, error) {
	if m.submitting {
		metrics.IncReservationOp(op, metrics.ResultDuplicate)
		return "", ErrSubmitInProgress
	}
	if m.userID == "" {
		return "", ErrNotLoaded
	}
	if current := m.session.CurrentUserID(); current != m.userID {
		return "", ErrNotLoaded
	}
	m.submitting = true
	return m.userID, nil
}

// commit persists next and installs it as the in-memory list unless the
// manager was closed meanwhile. A failed save leaves list and draft as they were.
func (m *ReservationManager) commit(ctx context.Context, op, userID string, next []models.Reservation) error {
	err := m.store.SaveForUser(ctx, userID, next)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitting = false

	if err != nil {
		if !m.closed {
			m.lastErr = err
		}
		metrics.IncReservationOp(op, metrics.ResultError)
		m.logger.Error().Err(err).Str("operation", op).Str("user_id", userID).Msg("failed to save reservations")
		return err
	}
	metrics.IncReservationOp(op, metrics.ResultOK)

	if m.closed {
		return nil
	}
	m.generation++
	m.reservations = next
	m.lastErr = nil
	if op != opCancel {
		m.draft = models.NewDraft()
	}
	return nil
}

func (m *ReservationManager) publish(eventType string, r models.Reservation) {
	if m.events == nil {
		return
	}

	payload := events.ReservationEventPayload{
		ReservationID: r.ID,
		UserID:        r.UserID,
		Date:          r.Date,
		Time:          r.Time,
		PartySize:     r.PartySize,
		Table:         r.Table,
		Status:        r.Status,
		Comments:      r.Comments,
	}

	if err := m.events.PublishJSON(eventType, payload); err != nil {
		m.logger.Error().Err(err).Str("event_type", eventType).Str("reservation_id", r.ID).Msg("publish event error")
	}
}

// indexOf returns the position of id in the list or -1. Caller holds mu.
func (m *ReservationManager) indexOf(id string) int {
	for i := range m.reservations {
		if m.reservations[i].ID == id {
			return i
		}
	}
	return -1
}

// Reservations returns every reservation of the user, cancelled included.
func (m *ReservationManager) Reservations() []models.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneReservations(m.reservations)
}

// Get returns reservation id from the in-memory list.
func (m *ReservationManager) Get(id string) (models.Reservation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexOf(id)
	if idx < 0 {
		return models.Reservation{}, false
	}
	return m.reservations[idx], true
}

// Upcoming returns the active reservations ordered by date, then time.
func (m *ReservationManager) Upcoming() []models.Reservation {
	m.mu.Lock()
	active := make([]models.Reservation, 0, len(m.reservations))
	for _, r := range m.reservations {
		if r.IsActive() {
			active = append(active, r)
		}
	}
	m.mu.Unlock()

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Date != active[j].Date {
			return active[i].Date < active[j].Date
		}
		return active[i].Time < active[j].Time
	})
	return active
}

func (m *ReservationManager) Counts() models.StatusCounts {
	m.mu.Lock()
	defer m.mu.Unlock()

	var c models.StatusCounts
	for _, r := range m.reservations {
		switch r.Status {
		case models.StatusPending:
			c.Pending++
		case models.StatusConfirmed:
			c.Confirmed++
		case models.StatusCancelled:
			c.Cancelled++
		}
	}
	return c
}

// ActiveDates returns the days holding at least one active reservation, for calendar markers.
func (m *ReservationManager) ActiveDates() map[string]bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	dates := make(map[string]bool)
	for _, r := range m.reservations {
		if r.IsActive() {
			dates[r.Date] = true
		}
	}
	return dates
}

func (m *ReservationManager) Draft() models.Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

// UpdateDraft applies fn to the form state.
func (m *ReservationManager) UpdateDraft(fn func(d *models.Draft)) models.Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.draft)
	return m.draft
}

// SelectDate stores a date emitted by the calendar picker into the form.
func (m *ReservationManager) SelectDate(date string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft.Date = date
}

func (m *ReservationManager) ResetDraft() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft = models.NewDraft()
}

// LastError is the retryable persistence failure of the last operation, if any.
func (m *ReservationManager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *ReservationManager) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = nil
}

// Close detaches the manager: pending store results no longer update its state.
func (m *ReservationManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func cloneReservations(list []models.Reservation) []models.Reservation {
	out := make([]models.Reservation, len(list))
	copy(out, list)
	return out
}
