package selection

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/recruitify/internal/localstore"
	"github.com/wolfeidau/recruitify/internal/models"
)

const (
	// LegacyOrganizationKey is the old, user-agnostic key. It is only read for migration.
	LegacyOrganizationKey = "selectedOrganization"

	organizationKeyPrefix = "lastUsedOrg_"
)

// Sentinel errors
var (
	// ErrNoUser is returned when a selection is made before Initialize.
	ErrNoUser = errors.New("selection store not initialized for a user")

	// ErrNoOrganization is returned when a cycle is selected without a current organization.
	ErrNoOrganization = errors.New("no organization selected")

	// ErrUnknownOrganization is returned when selecting an organization that is not loaded.
	ErrUnknownOrganization = errors.New("organization not in loaded organizations")

	// ErrUnknownCycle is returned when selecting a cycle that is not loaded.
	ErrUnknownCycle = errors.New("cycle not in loaded recruitment cycles")

	// ErrCycleOutsideOrganization is returned when a cycle does not belong to the current organization.
	ErrCycleOutsideOrganization = errors.New("cycle does not belong to the current organization")
)

// OrganizationKey returns the durable storage key for a user's last used organization.
func OrganizationKey(userID string) string {
	return organizationKeyPrefix + userID
}

// Store is the single source of truth for the current selection of one user.
//
// Organization choices are written through to the injected localstore.Store before
// the call returns. Cycle choices are kept in memory only.
type Store struct {
	mu      sync.Mutex
	persist localstore.Store

	userID  string
	current Selection

	organizations []models.Organization
	orgsLoaded    bool
	cycles        []models.RecruitmentCycle
	cyclesLoaded  bool

	// request sequencing, see Begin
	nextSeq     uint64
	appliedSeq  uint64
	staleBefore uint64

	subscribers map[int]func(Selection)
	nextSubID   int
	notified    Selection
}

// NewStore creates a selection store persisting to persist.
func NewStore(persist localstore.Store) *Store {
	return &Store{
		persist:     persist,
		subscribers: make(map[int]func(Selection)),
	}
}

// Initialize starts a selection for userID, restoring the last used organization
// from durable storage as a tentative selection with no cycle.
//
// A missing or malformed record yields an empty selection; it is never an error.
// Calling Initialize for a different user discards everything held for the previous one.
func (s *Store) Initialize(userID string) Selection {
	s.mu.Lock()

	if s.userID != "" && s.userID != userID {
		log.Debug().Str("userID", userID).Str("previousUserID", s.userID).Msg("switching selection user")
	}

	s.resetLocked()
	s.userID = userID
	if userID != "" {
		if org := s.restoreLocked(userID); org != nil {
			s.current = Selection{Organization: org}
		}
	}

	return s.commitLocked()
}

// Current returns a copy of the current selection.
func (s *Store) Current() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current.clone()
}

// UserID returns the user the store was initialized for.
func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.userID
}

// Organizations returns the most recently reconciled organizations.
func (s *Store) Organizations() []models.Organization {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.Organization(nil), s.organizations...)
}

// Cycles returns the most recently reconciled cycles of the current organization.
func (s *Store) Cycles() []models.RecruitmentCycle {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.RecruitmentCycle(nil), s.cycles...)
}

// Begin hands out the sequence number for a new organizations fetch.
// Pass it to ReconcileAt when the response arrives.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSeq++
	return s.nextSeq
}

// ReconcileAt applies an organizations response obtained with sequence number seq.
// Responses older than one already applied, or issued before the last Initialize or
// Clear, are ignored and reported with applied=false.
func (s *Store) ReconcileAt(seq uint64, organizations []models.Organization) (sel Selection, applied bool) {
	s.mu.Lock()

	if seq <= s.staleBefore || seq < s.appliedSeq {
		log.Debug().
			Uint64("seq", seq).
			Uint64("appliedSeq", s.appliedSeq).
			Msg("ignoring stale organizations response")
		sel = s.current.clone()
		s.mu.Unlock()
		return sel, false
	}

	s.appliedSeq = seq
	s.reconcileLocked(organizations)

	return s.commitLocked(), true
}

// Reconcile applies a freshly fetched organizations list, see the Reconcile function.
func (s *Store) Reconcile(organizations []models.Organization) Selection {
	s.mu.Lock()
	s.reconcileLocked(organizations)
	return s.commitLocked()
}

// ReconcileCycles applies a freshly fetched cycles list for organizationID.
// A list for an organization that is no longer current is ignored.
func (s *Store) ReconcileCycles(organizationID string, cycles []models.RecruitmentCycle) Selection {
	s.mu.Lock()

	if s.current.OrganizationID() == "" || s.current.OrganizationID() != organizationID {
		log.Debug().
			Str("organizationID", organizationID).
			Str("currentOrganizationID", s.current.OrganizationID()).
			Msg("ignoring cycles for organization that is not current")
		sel := s.current.clone()
		s.mu.Unlock()
		return sel
	}

	s.cycles = append([]models.RecruitmentCycle(nil), cycles...)
	s.cyclesLoaded = true
	s.current = ReconcileCycles(s.current, s.cycles)

	return s.commitLocked()
}

// SelectOrganization makes org current, clears the cycle and persists org for the user.
//
// The in-memory selection changes even when the write fails; the write error is returned
// so the caller can report it.
func (s *Store) SelectOrganization(org models.Organization) (Selection, error) {
	s.mu.Lock()

	if s.userID == "" {
		s.mu.Unlock()
		return Selection{}, ErrNoUser
	}

	if org.ID == "" {
		s.mu.Unlock()
		return s.Current(), ErrUnknownOrganization
	}

	if s.orgsLoaded {
		loaded := models.FindOrganization(s.organizations, org.ID)
		if loaded == nil {
			sel := s.current.clone()
			s.mu.Unlock()
			return sel, fmt.Errorf("%w: %s", ErrUnknownOrganization, org.ID)
		}
		org = *loaded
	}

	changed := s.current.OrganizationID() != org.ID
	s.current = Selection{Organization: &org}
	if changed {
		s.cycles = nil
		s.cyclesLoaded = false
	}

	err := s.persistLocked(org)

	log.Info().
		Str("userID", s.userID).
		Str("organizationID", org.ID).
		Msg("organization selected")

	return s.commitLocked(), err
}

// SelectCycle makes cycle current. The cycle must belong to the current organization.
func (s *Store) SelectCycle(cycle models.RecruitmentCycle) (Selection, error) {
	s.mu.Lock()

	if s.current.Organization == nil {
		s.mu.Unlock()
		return Selection{}, ErrNoOrganization
	}

	if !cycle.BelongsTo(s.current.Organization) {
		sel := s.current.clone()
		s.mu.Unlock()
		return sel, fmt.Errorf("%w: cycle %s belongs to %s, current is %s",
			ErrCycleOutsideOrganization, cycle.ID, cycle.OrganizationID, s.current.Organization.ID)
	}

	if s.cyclesLoaded {
		loaded := models.FindCycle(s.cycles, cycle.ID)
		if loaded == nil {
			sel := s.current.clone()
			s.mu.Unlock()
			return sel, fmt.Errorf("%w: %s", ErrUnknownCycle, cycle.ID)
		}
		cycle = *loaded
	}

	s.current.Cycle = &cycle

	log.Debug().
		Str("organizationID", cycle.OrganizationID).
		Str("cycleID", cycle.ID).
		Msg("recruitment cycle selected")

	return s.commitLocked(), nil
}

// Clear drops all in-memory state, used on logout and before switching users.
// The persisted record is kept so the user gets it back on next login.
func (s *Store) Clear() {
	s.mu.Lock()
	s.resetLocked()
	s.commitLocked()
}

// Forget deletes the user's persisted organization and clears the store.
func (s *Store) Forget() error {
	s.mu.Lock()

	var err error
	if s.userID != "" {
		if derr := s.persist.Delete(OrganizationKey(s.userID)); derr != nil {
			err = fmt.Errorf("failed to delete persisted organization: %w", derr)
		}
	}

	s.resetLocked()
	s.commitLocked()

	return err
}

// Subscribe registers fn to be called with the new selection after every change.
// Call the returned function to unsubscribe.
func (s *Store) Subscribe(fn func(Selection)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) reconcileLocked(organizations []models.Organization) {
	prevOrgID := s.current.OrganizationID()

	s.organizations = append([]models.Organization(nil), organizations...)
	s.orgsLoaded = true
	s.current = Reconcile(s.current, s.organizations)

	if s.current.OrganizationID() != prevOrgID {
		s.cycles = nil
		s.cyclesLoaded = false

		if prevOrgID != "" {
			log.Info().
				Str("userID", s.userID).
				Str("organizationID", prevOrgID).
				Msg("selected organization no longer available, clearing selection")
		}
	}
}

func (s *Store) resetLocked() {
	s.userID = ""
	s.current = Selection{}
	s.organizations = nil
	s.orgsLoaded = false
	s.cycles = nil
	s.cyclesLoaded = false
	s.staleBefore = s.nextSeq
	s.appliedSeq = 0
}

// commitLocked unlocks the store and notifies subscribers if the selection changed
// since the last notification. Must be called with s.mu held.
func (s *Store) commitLocked() Selection {
	sel := s.current.clone()

	var subs []func(Selection)
	if !sel.Equal(s.notified) {
		s.notified = sel.clone()
		for _, fn := range s.subscribers {
			subs = append(subs, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(sel.clone())
	}

	return sel
}

// restoreLocked reads the persisted organization for userID, migrating the legacy
// global record when the user has none of their own.
func (s *Store) restoreLocked(userID string) *models.Organization {
	key := OrganizationKey(userID)

	data, err := s.persist.Get(key)
	switch {
	case err == nil:
		org, perr := decodeOrganization(data)
		if perr != nil {
			log.Warn().Err(perr).Str("key", key).Msg("discarding malformed persisted organization")
			return nil
		}
		return org
	case errors.Is(err, localstore.ErrKeyNotFound):
		return s.migrateLegacyLocked(userID)
	default:
		log.Warn().Err(err).Str("key", key).Msg("failed to read persisted organization")
		return nil
	}
}

// migrateLegacyLocked adopts the global record for userID and removes it so no other
// user can inherit it. The global record is only removed once the per-user copy is written.
func (s *Store) migrateLegacyLocked(userID string) *models.Organization {
	data, err := s.persist.Get(LegacyOrganizationKey)
	if err != nil {
		if !errors.Is(err, localstore.ErrKeyNotFound) {
			log.Warn().Err(err).Msg("failed to read legacy organization record")
		}
		return nil
	}

	org, err := decodeOrganization(data)
	if err != nil {
		log.Warn().Err(err).Msg("discarding malformed legacy organization record")
		s.deleteLegacyLocked()
		return nil
	}

	if err := s.persistLocked(*org); err != nil {
		log.Warn().Err(err).Msg("failed to migrate legacy organization record, keeping it")
		return org
	}

	s.deleteLegacyLocked()

	log.Info().
		Str("userID", userID).
		Str("organizationID", org.ID).
		Msg("migrated legacy organization record")

	return org
}

func (s *Store) deleteLegacyLocked() {
	if err := s.persist.Delete(LegacyOrganizationKey); err != nil {
		log.Warn().Err(err).Msg("failed to delete legacy organization record")
	}
}

func (s *Store) persistLocked(org models.Organization) error {
	data, err := json.Marshal(org)
	if err != nil {
		return fmt.Errorf("failed to marshal organization: %w", err)
	}

	if err := s.persist.Set(OrganizationKey(s.userID), data); err != nil {
		return fmt.Errorf("failed to persist organization: %w", err)
	}

	return nil
}

func decodeOrganization(data []byte) (*models.Organization, error) {
	var org models.Organization
	if err := json.Unmarshal(data, &org); err != nil {
		return nil, err
	}
	if org.ID == "" {
		return nil, errors.New("organization record has no id")
	}
	return &org, nil
}
