package domain

import "errors"

var (
	// ErrNoActiveSession is returned when an action needs a quiz in progress and there is none.
	ErrNoActiveSession = errors.New("no active quiz session")
	// ErrSessionNotInProgress is returned when a session has already been completed or abandoned.
	ErrSessionNotInProgress = errors.New("quiz session is not in progress")
	// ErrInvalidQuestionCount indicates a quiz was started without exactly QuestionsPerBatch questions.
	ErrInvalidQuestionCount = errors.New("quiz requires exactly 5 questions")
	// ErrQuestionOutOfRange indicates a question index outside the session.
	ErrQuestionOutOfRange = errors.New("question index out of range")
	// ErrInvalidScore indicates a score outside 0-100.
	ErrInvalidScore = errors.New("score must be between 0 and 100")
	// ErrLengthMismatch is returned when questions and answers differ in length.
	ErrLengthMismatch = errors.New("questions and answers length mismatch")
	// ErrBatchOutOfRange indicates a batch ID outside the published range.
	ErrBatchOutOfRange = errors.New("batch id out of range")
	// ErrBatchNotFound indicates a loader has no batch for the requested ID.
	ErrBatchNotFound = errors.New("batch not found")
	// ErrInvalidBatch indicates fetched batch data does not have the expected shape.
	ErrInvalidBatch = errors.New("invalid batch data")
	// ErrWalletNotConnected blocks quiz start until a wallet is connected.
	ErrWalletNotConnected = errors.New("wallet not connected")
	// ErrWrongNetwork blocks quiz start while the wallet is on another chain.
	ErrWrongNetwork = errors.New("wallet connected to the wrong network")
	// ErrLedgerUnavailable is returned when no ledger client is configured.
	ErrLedgerUnavailable = errors.New("ledger not configured")
	// ErrNotContractOwner is returned for owner-restricted ledger writes.
	ErrNotContractOwner = errors.New("caller is not the contract owner")
)
