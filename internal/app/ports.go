package app

import (
	"context"

	"verbiverse-quiz/internal/domain"
)

// SessionRepository keeps the per-address quiz state (in-memory, Redis-marked, etc).
type SessionRepository interface {
	GetOrCreate(address string) *Progress
	Get(address string) (*Progress, bool)
	DeleteIfIdle(address string)
	// IsActive reports whether state is currently held for the address.
	IsActive(ctx context.Context, address string) (bool, error)
}

// ProgressStore persists stats and completed-session history per wallet address.
// History is newest first and never longer than domain.HistoryLimit.
type ProgressStore interface {
	LoadStats(ctx context.Context, address string) (domain.UserStats, error)
	SaveStats(ctx context.Context, address string, stats domain.UserStats) error
	AppendHistory(ctx context.Context, address string, session domain.QuizSession) error
	History(ctx context.Context, address string) ([]domain.QuizSession, error)
}

// BatchLoader fetches a batch from a backing source (IPFS mirrors, database, bundled data).
type BatchLoader interface {
	LoadBatch(ctx context.Context, batchID int) (domain.Batch, error)
}

// BatchRepository serves batches from a cache, falling back to offline data when the
// loader is unavailable.
type BatchRepository interface {
	GetBatch(ctx context.Context, batchID int) (domain.Batch, error)
	ClearCache(ctx context.Context)
}

// Ledger is the scoring contract. Every call is a fallible remote call without retries.
type Ledger interface {
	RandomBatchID(ctx context.Context) (int, error)
	SubmitAnswers(ctx context.Context, from string, batchID int, answers, correct [domain.QuestionsPerBatch]string, score int) (string, error)
	UserSubmissions(ctx context.Context, address string) ([]uint64, error)
	Submission(ctx context.Context, id uint64) (*domain.Submission, error)
	QuestionsRootHash(ctx context.Context) (string, error)
	SetQuestionsRootHash(ctx context.Context, from, hash string) (string, error)
}

// WalletProvider exposes connection state of the user's wallet.
type WalletProvider interface {
	Connect(ctx context.Context) error
	Disconnect()
	Address() string
	IsConnected() bool
	IsWrongNetwork() bool
}

// CheckWallet blocks quiz start for a disconnected wallet or one on the wrong chain.
func CheckWallet(w WalletProvider) error {
	if w == nil || !w.IsConnected() || w.Address() == "" {
		return domain.ErrWalletNotConnected
	}
	if w.IsWrongNetwork() {
		return domain.ErrWrongNetwork
	}
	return nil
}
