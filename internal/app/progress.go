package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"verbiverse-quiz/internal/domain"
)

// Progress is the quiz state of one wallet address: at most one session plus cumulative stats.
// All mutations are serialized by mu, so answers are applied in the order they arrive.
type Progress struct {
	address string
	store   ProgressStore
	now     func() time.Time

	mu          sync.RWMutex
	loaded      bool
	session     *domain.QuizSession
	stats       domain.UserStats
	navigatedAt time.Time
	subscribers map[chan domain.Snapshot]struct{}
}

// NewProgress creates the state holder for address backed by store.
func NewProgress(address string, store ProgressStore) *Progress {
	return NewProgressWithClock(address, store, time.Now)
}

// NewProgressWithClock allows deterministic timestamps in tests.
func NewProgressWithClock(address string, store ProgressStore, now func() time.Time) *Progress {
	return &Progress{
		address:     address,
		store:       store,
		now:         now,
		stats:       domain.NewUserStats(),
		subscribers: make(map[chan domain.Snapshot]struct{}),
	}
}

// Address returns the wallet address this state belongs to.
func (p *Progress) Address() string {
	return p.address
}

// Load reads persisted stats for the address once.
func (p *Progress) Load(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loadLocked(ctx)
}

func (p *Progress) loadLocked(ctx context.Context) error {
	if p.loaded {
		return nil
	}
	stats, err := p.store.LoadStats(ctx, p.address)
	if err != nil {
		return fmt.Errorf("load stats: %w", err)
	}
	if stats.LanguagePairStats == nil {
		stats.LanguagePairStats = make(map[string]domain.PairStats)
	}
	p.stats = stats
	p.loaded = true
	return nil
}

// StartQuiz begins a new session over exactly five questions. An unfinished session is
// replaced and not persisted.
func (p *Progress) StartQuiz(ctx context.Context, languagePair string, batchID int, questions []domain.Question) (*domain.QuizSession, error) {
	if len(questions) != domain.QuestionsPerBatch {
		return nil, domain.ErrInvalidQuestionCount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.loadLocked(ctx); err != nil {
		return nil, err
	}
	if p.session != nil && p.session.Status == domain.StatusInProgress {
		log.Printf("discarding unfinished session %s for %s", p.session.ID, p.address)
	}

	now := p.now()
	session := &domain.QuizSession{
		ID:           uuid.NewString(),
		LanguagePair: languagePair,
		BatchID:      batchID,
		StartTime:    now,
		Questions:    make([]domain.QuizQuestion, len(questions)),
		Status:       domain.StatusInProgress,
	}
	for i, q := range questions {
		session.Questions[i] = domain.QuizQuestion{
			ID:             strconv.Itoa(q.ID),
			Text:           q.SourceText,
			TargetLanguage: q.TargetLanguage,
		}
	}
	p.session = session
	p.navigatedAt = now

	p.broadcastLocked()
	return session.Clone(), nil
}

// UpdateAnswer stores the answer for a question. Time spent is measured from the last
// navigation and never decreases within a visit.
func (p *Progress) UpdateAnswer(index int, answer string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.requireInProgressLocked(); err != nil {
		return err
	}
	if index < 0 || index >= len(p.session.Questions) {
		return domain.ErrQuestionOutOfRange
	}

	var elapsed int64
	if !p.navigatedAt.IsZero() {
		elapsed = p.now().Sub(p.navigatedAt).Milliseconds()
	}
	q := &p.session.Questions[index]
	q.UserAnswer = answer
	if elapsed > q.TimeSpent {
		q.TimeSpent = elapsed
	}

	p.broadcastLocked()
	return nil
}

// MoveToQuestion changes the displayed question and restarts the question timer.
func (p *Progress) MoveToQuestion(index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.requireInProgressLocked(); err != nil {
		return err
	}
	if index < 0 || index >= len(p.session.Questions) {
		return domain.ErrQuestionOutOfRange
	}
	p.session.CurrentQuestionIndex = index
	p.navigatedAt = p.now()

	p.broadcastLocked()
	return nil
}

// CompleteQuiz finishes the active session with an externally computed score.
func (p *Progress) CompleteQuiz(ctx context.Context, score int) (*domain.QuizSession, error) {
	if score < 0 || score > domain.MaxScore {
		return nil, domain.ErrInvalidScore
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.requireInProgressLocked(); err != nil {
		return nil, err
	}
	return p.completeLocked(ctx, score)
}

// GradeAndComplete scores the current answers against the batch questions and completes
// the session in one step.
func (p *Progress) GradeAndComplete(ctx context.Context, questions []domain.Question) (*domain.QuizSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.requireInProgressLocked(); err != nil {
		return nil, err
	}
	score, err := ScoreBatch(questions, p.session.Answers())
	if err != nil {
		return nil, err
	}
	if err := MarkAnswers(p.session, questions); err != nil {
		return nil, err
	}
	return p.completeLocked(ctx, score)
}

// completeLocked applies the completion even when persistence fails; the error is
// returned so the caller can warn.
func (p *Progress) completeLocked(ctx context.Context, score int) (*domain.QuizSession, error) {
	now := p.now()
	p.session.EndTime = &now
	p.session.Score = &score
	p.session.Status = domain.StatusCompleted

	p.stats = ApplyCompletion(p.stats, p.session, now)
	completed := p.session.Clone()

	var errs []error
	if err := p.store.SaveStats(ctx, p.address, p.stats); err != nil {
		errs = append(errs, fmt.Errorf("save stats: %w", err))
	}
	if err := p.store.AppendHistory(ctx, p.address, *completed); err != nil {
		errs = append(errs, fmt.Errorf("append history: %w", err))
	}

	p.broadcastLocked()
	return completed, errors.Join(errs...)
}

// AbandonQuiz drops the active session. It counts towards total quizzes only and is not
// written to history.
func (p *Progress) AbandonQuiz(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.requireInProgressLocked(); err != nil {
		return err
	}
	p.session.Status = domain.StatusAbandoned
	p.session = nil
	p.navigatedAt = time.Time{}
	p.stats = ApplyAbandon(p.stats)

	err := p.store.SaveStats(ctx, p.address, p.stats)
	p.broadcastLocked()
	if err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	return nil
}

// ResetQuiz clears the session and the question timer from any state.
func (p *Progress) ResetQuiz() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = nil
	p.navigatedAt = time.Time{}
	p.broadcastLocked()
}

// Snapshot returns copies of the current session (nil when none) and stats.
func (p *Progress) Snapshot() domain.Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshotLocked()
}

// IsIdle reports whether nothing is in progress and nobody is listening.
func (p *Progress) IsIdle() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	active := p.session != nil && p.session.Status == domain.StatusInProgress
	return !active && len(p.subscribers) == 0
}

// Subscribe returns a channel receiving a snapshot after every mutation.
// The caller must invoke the returned cancel function to avoid leaks.
func (p *Progress) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	p.mu.Lock()
	p.subscribers[ch] = struct{}{}
	initial := p.snapshotLocked()
	p.mu.Unlock()

	ch <- initial

	cancel := func() {
		p.mu.Lock()
		if _, ok := p.subscribers[ch]; ok {
			delete(p.subscribers, ch)
			close(ch)
		}
		p.mu.Unlock()
	}
	return ch, cancel
}

func (p *Progress) requireInProgressLocked() error {
	if p.session == nil {
		return domain.ErrNoActiveSession
	}
	if p.session.Status != domain.StatusInProgress {
		return domain.ErrSessionNotInProgress
	}
	return nil
}

func (p *Progress) broadcastLocked() {
	snap := p.snapshotLocked()
	for ch := range p.subscribers {
		select {
		case ch <- snap:
		default:
			// drop the stale snapshot so a slow reader only sees the latest state
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (p *Progress) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{
		Address: p.address,
		Session: p.session.Clone(),
		Stats:   p.stats.Clone(),
	}
}
