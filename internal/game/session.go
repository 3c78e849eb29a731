package game

import (
	"math/rand"
	"sync"
	"time"

	"blindpick-service/internal/domain"
)

// DefaultVolume is the initial audience volume on the 0-100 scale.
const DefaultVolume = 70

// Session holds all mutable state for one running Blind Pick show: the loaded
// round templates, the cumulative score ledger, and the per-round runtime
// (answers, shuffle order, reveal flags, selections). Every mutation goes
// through one mutex, which is the single logical sequence point the rest of
// the process funnels into, and broadcasts a fresh snapshot to subscribers.
type Session struct {
	id   string
	now  func() time.Time
	perm func(n int) []int

	mu          sync.RWMutex
	players     []string
	rounds      []domain.RoundTemplate
	scores      map[string]int
	roundIndex  int
	volume      int
	playback    domain.PlaybackState
	runtime     roundRuntime
	subscribers map[chan domain.ShowSnapshot]struct{}
}

// roundRuntime is the state that resets together on round change or re-shuffle.
type roundRuntime struct {
	answers    []string                      // index-aligned with the fixed player order
	slots      []domain.Slot                 // derived fresh at shuffle time
	order      []int                         // display row -> slot index, a permutation
	revealed   []bool                        // per display row, flips false->true only
	selections map[string]domain.DisplayRow // canonical player -> picked row
}

func NewSession(id string) *Session {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	return newSession(id, time.Now, rnd.Perm)
}

// NewSessionWithPerm is test-only for deterministic shuffle orders.
func NewSessionWithPerm(id string, perm func(n int) []int) *Session {
	return newSession(id, time.Now, perm)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(id string, now func() time.Time) *Session {
	rnd := rand.New(rand.NewSource(1))
	return newSession(id, now, rnd.Perm)
}

func newSession(id string, now func() time.Time, perm func(n int) []int) *Session {
	return &Session{
		id:          id,
		now:         now,
		perm:        perm,
		volume:      DefaultVolume,
		playback:    domain.PlaybackStopped,
		subscribers: make(map[chan domain.ShowSnapshot]struct{}),
	}
}

// Setup installs players and round templates, zeroes the ledger, and moves to
// round 0 with a blank runtime. Prior state is untouched when setup fails.
func (s *Session) Setup(players []string, rounds []domain.RoundTemplate) error {
	if len(players) < 2 {
		return domain.ErrTooFewPlayers
	}
	if len(rounds) == 0 {
		return domain.ErrNoRounds
	}
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if _, ok := seen[p]; ok {
			return domain.ErrDuplicatePlayer
		}
		seen[p] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = append([]string(nil), players...)
	s.rounds = append([]domain.RoundTemplate(nil), rounds...)
	s.scores = make(map[string]int, len(players))
	for _, p := range players {
		s.scores[p] = 0
	}
	s.roundIndex = 0
	s.playback = domain.PlaybackStopped
	s.resetRuntimeLocked()
	s.broadcastLocked()
	return nil
}

// GotoRound moves to the given round and hard-resets the runtime: blank
// answers, no shuffle, no selections, no reveals. Any in-progress shuffle of
// the departed round is discarded, never merged.
func (s *Session) GotoRound(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.rounds) == 0 {
		return domain.ErrNotSetUp
	}
	if index < 0 || index >= len(s.rounds) {
		return domain.ErrRoundOutOfRange
	}
	s.roundIndex = index
	s.playback = domain.PlaybackStopped
	s.resetRuntimeLocked()
	s.broadcastLocked()
	return nil
}

// NextRound advances one round; staying put on the last round is not an error.
func (s *Session) NextRound() error {
	s.mu.RLock()
	index, count := s.roundIndex+1, len(s.rounds)
	s.mu.RUnlock()
	if count == 0 {
		return domain.ErrNotSetUp
	}
	if index >= count {
		return nil
	}
	return s.GotoRound(index)
}

// PrevRound steps back one round; staying put on round 0 is not an error.
func (s *Session) PrevRound() error {
	s.mu.RLock()
	index, count := s.roundIndex-1, len(s.rounds)
	s.mu.RUnlock()
	if count == 0 {
		return domain.ErrNotSetUp
	}
	if index < 0 {
		return nil
	}
	return s.GotoRound(index)
}

// SubmitAnswers records answer texts for the current round, keyed by
// canonical player name. Unknown players are silently ignored; answers for
// players not mentioned keep their previous text.
func (s *Session) SubmitAnswers(answers map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.players) == 0 {
		return domain.ErrNotSetUp
	}
	for i, p := range s.players {
		if text, ok := answers[p]; ok {
			s.runtime.answers[i] = text
		}
	}
	s.broadcastLocked()
	return nil
}

// Shuffle derives fresh slots from the collected answers plus the truth and
// draws a new uniform display order. It fully replaces the previous order:
// all reveal flags and selections are cleared.
func (s *Session) Shuffle() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.players) == 0 || len(s.rounds) == 0 {
		return domain.ErrNotSetUp
	}
	slots := buildSlots(s.players, s.runtime.answers, s.rounds[s.roundIndex].Truth)
	s.runtime.slots = slots
	s.runtime.order = s.perm(len(slots))
	s.runtime.revealed = make([]bool, len(slots))
	for _, p := range s.players {
		s.runtime.selections[p] = domain.NoSelection
	}
	s.broadcastLocked()
	return nil
}

// Select records a player's single-choice pick of a display row, overwriting
// any previous pick. Picking an already-revealed row, or the row hiding the
// player's own answer, is allowed. Unknown players are a silent no-op.
func (s *Session) Select(player string, row domain.DisplayRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.runtime.order) == 0 {
		return domain.ErrNoShuffle
	}
	if row < 0 || int(row) >= len(s.runtime.order) {
		return domain.ErrRowOutOfRange
	}
	if _, ok := s.runtime.selections[player]; !ok {
		return nil
	}
	s.runtime.selections[player] = row
	s.broadcastLocked()
	return nil
}

// Selection returns the player's current pick, if any.
func (s *Session) Selection(player string) (domain.DisplayRow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.runtime.selections[player]
	if !ok || row == domain.NoSelection {
		return domain.NoSelection, false
	}
	return row, true
}

// Reveal exposes the true author of a display row and applies the resulting
// score delta to the ledger in one step. Revealing an already-revealed row is
// an idempotent no-op returning an empty delta, so a moderator double-click
// never double-awards points.
//
// Scoring: if the row hides the truth, every player who selected it gains a
// point. Otherwise the row is a decoy and its author gains a point per
// selecting player other than themselves.
func (s *Session) Reveal(row domain.DisplayRow) (domain.ScoreDelta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.runtime.order) == 0 {
		return nil, domain.ErrNoShuffle
	}
	if row < 0 || int(row) >= len(s.runtime.order) {
		return nil, domain.ErrRowOutOfRange
	}
	if s.runtime.revealed[row] {
		return domain.ScoreDelta{}, nil
	}

	slot := s.runtime.slots[s.runtime.order[row]]
	delta := domain.ScoreDelta{}
	if slot.IsTruth() {
		for p, sel := range s.runtime.selections {
			if sel == row {
				delta[p]++
			}
		}
	} else {
		for p, sel := range s.runtime.selections {
			if sel == row && p != slot.Author {
				delta[slot.Author]++
			}
		}
	}

	s.runtime.revealed[row] = true
	for p, d := range delta {
		s.scores[p] += d
	}
	s.broadcastLocked()
	return delta, nil
}

// SetVolume stores the audience volume on the moderator's 0-100 scale;
// snapshots carry it normalized to 0.0-1.0 for the renderer.
func (s *Session) SetVolume(level int) error {
	if level < 0 || level > 100 {
		return domain.ErrBadVolume
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = level
	s.broadcastLocked()
	return nil
}

// Play starts video playback on the audience display.
func (s *Session) Play() { s.setPlayback(domain.PlaybackPlaying) }

// Pause pauses video playback on the audience display.
func (s *Session) Pause() { s.setPlayback(domain.PlaybackPaused) }

// Stop stops video playback on the audience display.
func (s *Session) Stop() { s.setPlayback(domain.PlaybackStopped) }

func (s *Session) setPlayback(state domain.PlaybackState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playback = state
	s.broadcastLocked()
}

// Scores returns a copy of the cumulative ledger.
func (s *Session) Scores() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scores := make(map[string]int, len(s.scores))
	for p, v := range s.scores {
		scores[p] = v
	}
	return scores
}

// IsIdle reports whether no renderer is subscribed to the session.
func (s *Session) IsIdle() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers) == 0
}

// Snapshot returns the current full-state projection with authors visible.
func (s *Session) Snapshot() domain.ShowSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel receiving a snapshot after every mutation,
// starting with the current state. The caller must invoke the returned
// cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.ShowSnapshot, func()) {
	ch := make(chan domain.ShowSnapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) resetRuntimeLocked() {
	selections := make(map[string]domain.DisplayRow, len(s.players))
	for _, p := range s.players {
		selections[p] = domain.NoSelection
	}
	s.runtime = roundRuntime{
		answers:    make([]string, len(s.players)),
		selections: selections,
	}
}

func (s *Session) broadcastLocked() domain.ShowSnapshot {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// A slow renderer loses its stale frame instead of blocking the broadcast.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (s *Session) snapshotLocked() domain.ShowSnapshot {
	snap := domain.ShowSnapshot{
		ShowID:     s.id,
		SetUp:      len(s.players) > 0,
		RoundIndex: s.roundIndex,
		RoundCount: len(s.rounds),
		Volume:     float64(s.volume) / 100.0,
		Playback:   s.playback,
		Players:    append([]string(nil), s.players...),
		Columns:    rotated(s.players, s.roundIndex),
		Selections: make(map[string]domain.DisplayRow, len(s.runtime.selections)),
		Scores:     make(map[string]int, len(s.scores)),
		UpdatedAt:  s.now(),
	}
	if len(s.rounds) > 0 {
		snap.RoundTitle = s.rounds[s.roundIndex].Title
		snap.Video = s.rounds[s.roundIndex].Video
	}
	for p, sel := range s.runtime.selections {
		snap.Selections[p] = sel
	}
	for p, v := range s.scores {
		snap.Scores[p] = v
	}
	snap.Rows = make([]domain.RowView, len(s.runtime.order))
	for r, slotIndex := range s.runtime.order {
		slot := s.runtime.slots[slotIndex]
		snap.Rows[r] = domain.RowView{
			Author:   slot.Author,
			Text:     slot.Text,
			Revealed: s.runtime.revealed[r],
		}
	}
	return snap
}
