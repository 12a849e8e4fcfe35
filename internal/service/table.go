// Package service provides the orchestration layer around game tables.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"devils-dice/internal/game"
	"devils-dice/internal/game/dice"
	"devils-dice/internal/game/table"
	"devils-dice/internal/lobby"
	"devils-dice/internal/model"
	"devils-dice/internal/pkg/lock"
)

// Table service errors.
var (
	ErrTableNotFound = errors.New("table not found")
)

// DefaultLockTimeout bounds how long a call waits for a busy table.
const DefaultLockTimeout = 5 * time.Second

// MatchStore records the start and result of matches.
// *repository.MatchRepository satisfies it.
type MatchStore interface {
	Create(ctx context.Context, id uuid.UUID, players []int64, startedAt time.Time) (*model.Match, error)
	Finish(ctx context.Context, id uuid.UUID, winner int64, rolloff bool, turns int, finishedAt time.Time) (*model.Match, error)
}

// EventStore appends table events to a match's log.
// *repository.EventRepository satisfies it.
type EventStore interface {
	AppendBatch(ctx context.Context, events []*model.MatchEvent) error
}

// TableService owns the open tables. Every operation on a table runs under
// that table's lock, so tables can be driven from many goroutines.
type TableService struct {
	registry    *lobby.Registry
	locks       *lock.TableLock
	matches     MatchStore
	events      EventStore
	rules       table.Rules
	lockTimeout time.Duration
	newRoller   func() dice.Roller
	sink        game.Sink

	mu      sync.Mutex
	pending map[uuid.UUID]*game.Recorder
}

// NewTableService creates a TableService. matches and events may be nil to
// run without an archive.
func NewTableService(
	registry *lobby.Registry,
	locks *lock.TableLock,
	matches MatchStore,
	events EventStore,
	rules table.Rules,
	lockTimeout time.Duration,
) *TableService {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &TableService{
		registry:    registry,
		locks:       locks,
		matches:     matches,
		events:      events,
		rules:       rules,
		lockTimeout: lockTimeout,
		newRoller:   newCryptoSeededRoller,
		sink:        game.Discard,
		pending:     make(map[uuid.UUID]*game.Recorder),
	}
}

// SetRollerFactory replaces how new tables get their dice roller.
func (s *TableService) SetRollerFactory(f func() dice.Roller) {
	s.newRoller = f
}

// SetSink adds a sink that receives the events of every table.
func (s *TableService) SetSink(sink game.Sink) {
	if sink == nil {
		sink = game.Discard
	}
	s.sink = sink
}

// CreateTable seats players at a new table and records the match start.
// The service sink sees the setup events only once the match is recorded.
func (s *TableService) CreateTable(ctx context.Context, players []model.PlayerID) (uuid.UUID, error) {
	id := uuid.New()
	rec := game.NewRecorder()
	live := &gatedSink{next: s.sink}

	tbl, err := table.New(s.rules, players, s.newRoller(), game.MultiSink{live, rec})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create table: %w", err)
	}

	if s.matches != nil {
		ids := make([]int64, len(players))
		for i, p := range players {
			ids[i] = int64(p)
		}
		if _, err := s.matches.Create(ctx, id, ids, time.Now()); err != nil {
			return uuid.Nil, fmt.Errorf("failed to archive match: %w", err)
		}
	}

	for _, e := range rec.Events() {
		s.sink.Emit(e)
	}
	live.open = true

	s.mu.Lock()
	s.pending[id] = rec
	s.mu.Unlock()

	if err := s.registry.Register(id, tbl); err != nil {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
		return uuid.Nil, fmt.Errorf("failed to register table: %w", err)
	}
	s.flush(ctx, id)

	log.Info().
		Str("table", id.String()).
		Int("players", len(players)).
		Msg("Table created")

	return id, nil
}

// Submit applies an intent at the table and returns the committed events.
// Rejected intents return the table's error unchanged.
func (s *TableService) Submit(ctx context.Context, id uuid.UUID, actor model.PlayerID, in table.Intent) ([]game.Event, error) {
	tbl, ok := s.registry.Get(id)
	if !ok {
		return nil, ErrTableNotFound
	}

	var events []game.Event
	err := s.locks.WithLockContext(ctx, id, s.lockTimeout, func() error {
		if !s.registered(id, tbl) {
			return ErrTableNotFound
		}
		var err error
		events, err = tbl.Submit(actor, in)
		if err != nil {
			return err
		}
		s.flush(ctx, id)
		if tbl.Over() {
			s.finish(ctx, id, tbl)
		}
		return nil
	})
	if err != nil {
		log.Debug().
			Err(err).
			Str("table", id.String()).
			Int64("player", int64(actor)).
			Msg("Intent rejected")
		return nil, err
	}
	return events, nil
}

// Snapshot returns the table as seen by viewer.
func (s *TableService) Snapshot(ctx context.Context, id uuid.UUID, viewer model.PlayerID) (table.Snapshot, error) {
	tbl, ok := s.registry.Get(id)
	if !ok {
		return table.Snapshot{}, ErrTableNotFound
	}

	var snap table.Snapshot
	err := s.locks.WithLockContext(ctx, id, s.lockTimeout, func() error {
		if !s.registered(id, tbl) {
			return ErrTableNotFound
		}
		snap = tbl.Snapshot(viewer)
		return nil
	})
	return snap, err
}

// Eligible returns the players who may act at the table now.
func (s *TableService) Eligible(ctx context.Context, id uuid.UUID) ([]model.PlayerID, error) {
	tbl, ok := s.registry.Get(id)
	if !ok {
		return nil, ErrTableNotFound
	}

	var eligible []model.PlayerID
	err := s.locks.WithLockContext(ctx, id, s.lockTimeout, func() error {
		if !s.registered(id, tbl) {
			return ErrTableNotFound
		}
		eligible = tbl.Eligible()
		return nil
	})
	return eligible, err
}

// CloseTable waits for in-flight work on the table and removes it.
func (s *TableService) CloseTable(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.registry.Get(id); !ok {
		return ErrTableNotFound
	}

	err := s.locks.WithLockContext(ctx, id, s.lockTimeout, func() error {
		if !s.registry.Remove(id) {
			return ErrTableNotFound
		}
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Str("table", id.String()).Msg("Table closed")
	return nil
}

// registered reports whether tbl is still the table registered under id.
// Callers that looked the table up before a close see it gone here.
func (s *TableService) registered(id uuid.UUID, tbl *table.Table) bool {
	current, ok := s.registry.Get(id)
	return ok && current == tbl
}

// OpenTables returns the number of registered tables.
func (s *TableService) OpenTables() int {
	return s.registry.Count()
}

// flush moves the table's buffered events to the archive. Archive failures
// are logged; the table state stays authoritative.
func (s *TableService) flush(ctx context.Context, id uuid.UUID) {
	s.mu.Lock()
	rec := s.pending[id]
	s.mu.Unlock()
	if rec == nil {
		return
	}

	buffered := rec.Events()
	rec.Reset()
	if s.events == nil || len(buffered) == 0 {
		return
	}

	rows, err := toMatchEvents(id, buffered)
	if err == nil {
		err = s.events.AppendBatch(ctx, rows)
	}
	if err != nil {
		log.Error().
			Err(err).
			Str("table", id.String()).
			Int("events", len(buffered)).
			Msg("Failed to archive table events")
	}
}

func (s *TableService) finish(ctx context.Context, id uuid.UUID, tbl *table.Table) {
	winner, _ := tbl.Winner()

	log.Info().
		Str("table", id.String()).
		Int64("winner", int64(winner)).
		Bool("rolloff", tbl.WonByRolloff()).
		Int("turns", tbl.Turns()).
		Msg("Game finished")

	if s.matches == nil {
		return
	}
	if _, err := s.matches.Finish(ctx, id, int64(winner), tbl.WonByRolloff(), tbl.Turns(), time.Now()); err != nil {
		log.Error().
			Err(err).
			Str("table", id.String()).
			Msg("Failed to archive match result")
	}
}

// gatedSink drops events until open is set. Tables are published after the
// gate opens, so open needs no synchronisation of its own.
type gatedSink struct {
	next game.Sink
	open bool
}

func (g *gatedSink) Emit(e game.Event) {
	if g.open {
		g.next.Emit(e)
	}
}

func toMatchEvents(id uuid.UUID, events []game.Event) ([]*model.MatchEvent, error) {
	rows := make([]*model.MatchEvent, 0, len(events))
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("failed to encode event %d: %w", e.Seq, err)
		}
		rows = append(rows, &model.MatchEvent{
			MatchID:  id,
			Seq:      e.Seq,
			Type:     string(e.Type),
			PlayerID: int64(e.Player),
			Payload:  payload,
		})
	}
	return rows, nil
}

func newCryptoSeededRoller() dice.Roller {
	seed, err := dice.NewSeed()
	if err != nil {
		seed = time.Now().UnixNano()
	}
	return dice.NewRandRoller(seed)
}
