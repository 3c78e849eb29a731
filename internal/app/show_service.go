package app

import (
	"context"

	"blindpick-service/internal/domain"
	"blindpick-service/internal/game"
)

// SessionRepository abstracts how live show sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(showID string) *game.Session
	Get(showID string) (*game.Session, bool)
	DeleteIfIdle(showID string)
}

// PackRepository loads round packs (from cache/backing store).
type PackRepository interface {
	GetPack(ctx context.Context, packID string) (domain.Pack, error)
}

// ShowService contains the moderator-facing use cases: it forwards control
// boundary commands into the session core and hands out snapshot streams for
// the rendering boundary.
type ShowService struct {
	sessions      SessionRepository
	packs         PackRepository
	defaultVolume int
}

func NewShowService(store SessionRepository, packs PackRepository) *ShowService {
	return &ShowService{sessions: store, packs: packs, defaultVolume: game.DefaultVolume}
}

// SetDefaultVolume overrides the volume new shows start with (0-100 scale).
func (s *ShowService) SetDefaultVolume(level int) {
	if level >= 0 && level <= 100 {
		s.defaultVolume = level
	}
}

// Open makes sure a session exists for the show and returns its state.
// Hosts call this when they connect, before setup has happened.
func (s *ShowService) Open(_ context.Context, showID string) domain.ShowSnapshot {
	return s.sessions.GetOrCreate(showID).Snapshot()
}

// Setup loads the round pack and installs players into the show session,
// zeroing scores and starting at round 0. Prior state survives a failed setup.
func (s *ShowService) Setup(ctx context.Context, showID, packID string, players []string) (domain.ShowSnapshot, error) {
	pack, err := s.packs.GetPack(ctx, packID)
	if err != nil {
		return domain.ShowSnapshot{}, err
	}
	session := s.sessions.GetOrCreate(showID)
	if err := session.Setup(players, pack.Rounds); err != nil {
		return domain.ShowSnapshot{}, err
	}
	if err := session.SetVolume(s.defaultVolume); err != nil {
		return domain.ShowSnapshot{}, err
	}
	return session.Snapshot(), nil
}

// SubmitAnswers records the players' answer texts for the current round.
func (s *ShowService) SubmitAnswers(_ context.Context, showID string, answers map[string]string) (domain.ShowSnapshot, error) {
	session, err := s.session(showID)
	if err != nil {
		return domain.ShowSnapshot{}, err
	}
	if err := session.SubmitAnswers(answers); err != nil {
		return domain.ShowSnapshot{}, err
	}
	return session.Snapshot(), nil
}

// Shuffle mixes the collected answers with the truth into a fresh display order.
func (s *ShowService) Shuffle(_ context.Context, showID string) (domain.ShowSnapshot, error) {
	session, err := s.session(showID)
	if err != nil {
		return domain.ShowSnapshot{}, err
	}
	if err := session.Shuffle(); err != nil {
		return domain.ShowSnapshot{}, err
	}
	return session.Snapshot(), nil
}

// Select records a player's pick of a display row.
func (s *ShowService) Select(_ context.Context, showID, player string, row domain.DisplayRow) error {
	session, err := s.session(showID)
	if err != nil {
		return err
	}
	return session.Select(player, row)
}

// Reveal exposes a display row and returns the applied score delta.
func (s *ShowService) Reveal(_ context.Context, showID string, row domain.DisplayRow) (domain.ScoreDelta, domain.ShowSnapshot, error) {
	session, err := s.session(showID)
	if err != nil {
		return nil, domain.ShowSnapshot{}, err
	}
	delta, err := session.Reveal(row)
	if err != nil {
		return nil, domain.ShowSnapshot{}, err
	}
	return delta, session.Snapshot(), nil
}

// GotoRound jumps to a round, discarding the departed round's runtime.
func (s *ShowService) GotoRound(_ context.Context, showID string, index int) error {
	session, err := s.session(showID)
	if err != nil {
		return err
	}
	return session.GotoRound(index)
}

// NextRound advances one round, staying put on the last one.
func (s *ShowService) NextRound(_ context.Context, showID string) error {
	session, err := s.session(showID)
	if err != nil {
		return err
	}
	return session.NextRound()
}

// PrevRound steps back one round, staying put on the first one.
func (s *ShowService) PrevRound(_ context.Context, showID string) error {
	session, err := s.session(showID)
	if err != nil {
		return err
	}
	return session.PrevRound()
}

// SetVolume adjusts the audience volume on the moderator's 0-100 scale.
func (s *ShowService) SetVolume(_ context.Context, showID string, level int) error {
	session, err := s.session(showID)
	if err != nil {
		return err
	}
	return session.SetVolume(level)
}

// SetPlayback drives the audience display's video transport.
func (s *ShowService) SetPlayback(_ context.Context, showID string, state domain.PlaybackState) error {
	session, err := s.session(showID)
	if err != nil {
		return err
	}
	switch state {
	case domain.PlaybackPlaying:
		session.Play()
	case domain.PlaybackPaused:
		session.Pause()
	default:
		session.Stop()
	}
	return nil
}

// Snapshot returns the current full state of a show.
func (s *ShowService) Snapshot(_ context.Context, showID string) (domain.ShowSnapshot, error) {
	session, err := s.session(showID)
	if err != nil {
		return domain.ShowSnapshot{}, err
	}
	return session.Snapshot(), nil
}

// Subscribe returns a channel that receives a snapshot after every mutation.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *ShowService) Subscribe(_ context.Context, showID string) (<-chan domain.ShowSnapshot, func(), error) {
	session, err := s.session(showID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Leave drops the session once the last renderer has unsubscribed.
func (s *ShowService) Leave(_ context.Context, showID string) {
	s.sessions.DeleteIfIdle(showID)
}

func (s *ShowService) session(showID string) (*game.Session, error) {
	session, ok := s.sessions.Get(showID)
	if !ok {
		return nil, domain.ErrShowNotFound
	}
	return session, nil
}
