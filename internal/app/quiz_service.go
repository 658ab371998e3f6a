package app

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"verbiverse-quiz/internal/domain"
)

// DefaultTotalBatches is the number of published batches when none is configured.
const DefaultTotalBatches = 10

// QuizService contains the quiz use cases for every connected wallet address.
type QuizService struct {
	sessions     SessionRepository
	batches      BatchRepository
	store        ProgressStore
	ledger       Ledger
	totalBatches int

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// NewQuizService wires the service. ledger may be nil when no contract is configured.
func NewQuizService(sessions SessionRepository, batches BatchRepository, store ProgressStore, ledger Ledger, totalBatches int) *QuizService {
	if totalBatches <= 0 {
		totalBatches = DefaultTotalBatches
	}
	return &QuizService{
		sessions:     sessions,
		batches:      batches,
		store:        store,
		ledger:       ledger,
		totalBatches: totalBatches,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// FinishResult is the outcome of completing a quiz. Ledger and persistence problems are
// reported as warnings; the local result always stands.
type FinishResult struct {
	Session       *domain.QuizSession `json:"session"`
	Stats         domain.UserStats    `json:"stats"`
	TransactionID string              `json:"transactionId,omitempty"`
	Warnings      []string            `json:"warnings,omitempty"`
}

// Begin starts a quiz on a batch picked by the ledger (or locally when it is unavailable).
func (s *QuizService) Begin(ctx context.Context, wallet WalletProvider, languagePair string) (*domain.QuizSession, error) {
	if err := CheckWallet(wallet); err != nil {
		return nil, err
	}
	return s.BeginBatch(ctx, wallet, languagePair, s.pickBatchID(ctx))
}

// BeginBatch starts a quiz on a specific batch.
func (s *QuizService) BeginBatch(ctx context.Context, wallet WalletProvider, languagePair string, batchID int) (*domain.QuizSession, error) {
	if err := CheckWallet(wallet); err != nil {
		return nil, err
	}
	if languagePair == "" {
		languagePair = domain.DefaultLanguagePair().Label
	}

	batch, err := s.batches.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	progress := s.sessions.GetOrCreate(wallet.Address())
	return progress.StartQuiz(ctx, languagePair, batch.BatchID, batch.Questions)
}

// Answer records the answer typed for a question.
func (s *QuizService) Answer(_ context.Context, address string, index int, answer string) error {
	progress, ok := s.sessions.Get(address)
	if !ok {
		return domain.ErrNoActiveSession
	}
	return progress.UpdateAnswer(index, answer)
}

// Move navigates to another question of the active session.
func (s *QuizService) Move(_ context.Context, address string, index int) error {
	progress, ok := s.sessions.Get(address)
	if !ok {
		return domain.ErrNoActiveSession
	}
	return progress.MoveToQuestion(index)
}

// Finish scores the active session locally, completes it and records it on the ledger
// on a best-effort basis.
func (s *QuizService) Finish(ctx context.Context, address string) (FinishResult, error) {
	progress, ok := s.sessions.Get(address)
	if !ok {
		return FinishResult{}, domain.ErrNoActiveSession
	}
	current := progress.Snapshot().Session
	if current == nil {
		return FinishResult{}, domain.ErrNoActiveSession
	}
	if current.Status != domain.StatusInProgress {
		return FinishResult{}, domain.ErrSessionNotInProgress
	}

	batch, err := s.batches.GetBatch(ctx, current.BatchID)
	if err != nil {
		return FinishResult{}, err
	}

	var result FinishResult
	completed, err := progress.GradeAndComplete(ctx, batch.Questions)
	if completed == nil {
		return FinishResult{}, err
	}
	if err != nil {
		log.Printf("quiz %s completed locally but not saved: %v", completed.ID, err)
		result.Warnings = append(result.Warnings, "progress not saved: "+err.Error())
	}
	result.Session = completed
	result.Stats = progress.Snapshot().Stats

	if s.ledger != nil {
		tx, err := s.submit(ctx, address, completed, batch)
		if err != nil {
			log.Printf("ledger submission for quiz %s failed: %v", completed.ID, err)
			result.Warnings = append(result.Warnings, "ledger submission failed: "+err.Error())
		} else {
			result.TransactionID = tx
		}
	}
	return result, nil
}

func (s *QuizService) submit(ctx context.Context, address string, session *domain.QuizSession, batch domain.Batch) (string, error) {
	var answers, correct [domain.QuestionsPerBatch]string
	for i := 0; i < domain.QuestionsPerBatch && i < len(session.Questions); i++ {
		answers[i] = session.Questions[i].UserAnswer
		correct[i] = batch.Questions[i].CorrectTranslation
	}
	score := 0
	if session.Score != nil {
		score = *session.Score
	}
	return s.ledger.SubmitAnswers(ctx, address, session.BatchID, answers, correct, score)
}

// Abandon gives up the active session.
func (s *QuizService) Abandon(ctx context.Context, address string) error {
	progress, ok := s.sessions.Get(address)
	if !ok {
		return domain.ErrNoActiveSession
	}
	return progress.AbandonQuiz(ctx)
}

// Reset clears any session for the address.
func (s *QuizService) Reset(_ context.Context, address string) {
	if progress, ok := s.sessions.Get(address); ok {
		progress.ResetQuiz()
	}
}

// Snapshot returns the current session and stats for the address, loading stats if needed.
func (s *QuizService) Snapshot(ctx context.Context, address string) (domain.Snapshot, error) {
	progress := s.sessions.GetOrCreate(address)
	if err := progress.Load(ctx); err != nil {
		return domain.Snapshot{}, err
	}
	return progress.Snapshot(), nil
}

// History lists locally saved completed sessions, newest first.
func (s *QuizService) History(ctx context.Context, address string) ([]domain.QuizSession, error) {
	return s.store.History(ctx, address)
}

// Batch returns a batch through the cache, with the offline fallback when no source has it.
func (s *QuizService) Batch(ctx context.Context, batchID int) (domain.Batch, error) {
	if batchID < 1 || batchID > s.totalBatches {
		return domain.Batch{}, fmt.Errorf("%w: %d", domain.ErrBatchOutOfRange, batchID)
	}
	return s.batches.GetBatch(ctx, batchID)
}

// LedgerHistory fetches the submissions recorded on the ledger for the address.
// Unknown submission IDs are skipped.
func (s *QuizService) LedgerHistory(ctx context.Context, address string) ([]domain.Submission, error) {
	if s.ledger == nil {
		return nil, domain.ErrLedgerUnavailable
	}
	ids, err := s.ledger.UserSubmissions(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("user submissions: %w", err)
	}
	submissions := make([]domain.Submission, 0, len(ids))
	for _, id := range ids {
		sub, err := s.ledger.Submission(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("submission %d: %w", id, err)
		}
		if sub != nil {
			submissions = append(submissions, *sub)
		}
	}
	return submissions, nil
}

// QuestionsRoot returns the questions root hash published on the ledger.
func (s *QuizService) QuestionsRoot(ctx context.Context) (string, error) {
	if s.ledger == nil {
		return "", domain.ErrLedgerUnavailable
	}
	return s.ledger.QuestionsRootHash(ctx)
}

// SetQuestionsRoot publishes a new questions root hash; only the contract owner may do so.
// Cached batches are dropped so the next fetch resolves against the new root.
func (s *QuizService) SetQuestionsRoot(ctx context.Context, wallet WalletProvider, hash string) (string, error) {
	if s.ledger == nil {
		return "", domain.ErrLedgerUnavailable
	}
	if err := CheckWallet(wallet); err != nil {
		return "", err
	}
	tx, err := s.ledger.SetQuestionsRootHash(ctx, wallet.Address(), hash)
	if err != nil {
		return "", err
	}
	s.batches.ClearCache(ctx)
	return tx, nil
}

// Subscribe returns a channel that receives snapshots for the address.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, address string) (<-chan domain.Snapshot, func()) {
	return s.sessions.GetOrCreate(address).Subscribe()
}

// IsActive reports whether any connection currently holds state for the address.
func (s *QuizService) IsActive(ctx context.Context, address string) (bool, error) {
	return s.sessions.IsActive(ctx, address)
}

// Leave drops the address state when nothing is in progress.
func (s *QuizService) Leave(_ context.Context, address string) {
	s.sessions.DeleteIfIdle(address)
}

func (s *QuizService) pickBatchID(ctx context.Context) int {
	if s.ledger != nil {
		id, err := s.ledger.RandomBatchID(ctx)
		if err == nil && id >= 1 && id <= s.totalBatches {
			return id
		}
		log.Printf("ledger random batch unavailable, picking locally: id=%d err=%v", id, err)
	}
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return s.rnd.Intn(s.totalBatches) + 1
}
