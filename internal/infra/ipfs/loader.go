// Package ipfs loads question batches from IPFS through a prioritized list of HTTP gateways.
package ipfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"verbiverse-quiz/internal/domain"
)

const (
	// DefaultTimeout bounds every single gateway attempt.
	DefaultTimeout = 10 * time.Second

	maxBodySize = 1 << 20
)

// DefaultGateways are tried in this order.
var DefaultGateways = []string{
	"https://ipfs.io",
	"https://gateway.pinata.cloud",
	"https://cloudflare-ipfs.com",
	"https://dweb.link",
}

var (
	// ErrAllGatewaysFailed is returned when no gateway produced a valid document.
	ErrAllGatewaysFailed = errors.New("all IPFS gateways failed")
	// ErrNoRoot is returned when neither a configured nor a published root hash exists.
	ErrNoRoot = errors.New("no questions root hash")
)

// RootResolver supplies the questions root hash, typically the ledger.
type RootResolver interface {
	QuestionsRootHash(ctx context.Context) (string, error)
}

// Loader is an app.BatchLoader reading "<root>/batch-<id>.json" from IPFS.
type Loader struct {
	client   *http.Client
	gateways []string
	root     string
	resolver RootResolver
	timeout  time.Duration
	now      func() time.Time
}

// Option configures a Loader.
type Option func(*Loader)

// WithGateways replaces the default gateway list; order is priority.
func WithGateways(gateways ...string) Option {
	return func(l *Loader) {
		if len(gateways) > 0 {
			l.gateways = gateways
		}
	}
}

// WithRoot pins the root hash instead of asking the resolver.
func WithRoot(root string) Option {
	return func(l *Loader) { l.root = root }
}

// WithResolver sets where the root hash is looked up when none is pinned.
func WithResolver(r RootResolver) Option {
	return func(l *Loader) { l.resolver = r }
}

// WithTimeout overrides the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithClock sets the clock used for a missing createdAt.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		client:   http.DefaultClient,
		gateways: DefaultGateways,
		timeout:  DefaultTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadBatch resolves the root hash, fetches the batch file and applies defaults.
func (l *Loader) LoadBatch(ctx context.Context, batchID int) (domain.Batch, error) {
	root, err := l.rootHash(ctx)
	if err != nil {
		return domain.Batch{}, err
	}
	raw, err := l.Fetch(ctx, fmt.Sprintf("%s/batch-%d.json", root, batchID))
	if err != nil {
		return domain.Batch{}, err
	}
	return decodeBatch(raw, batchID, l.now())
}

// Fetch returns the first schema-valid document served by a gateway, trying them in
// order. Every attempt gets its own timeout.
func (l *Loader) Fetch(ctx context.Context, path string) ([]byte, error) {
	var errs []error
	for _, gateway := range l.gateways {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		url := strings.TrimRight(gateway, "/") + "/ipfs/" + path
		raw, err := l.fetchOne(ctx, url)
		if err != nil {
			log.Printf("gateway %s failed: %v", url, err)
			errs = append(errs, err)
			continue
		}
		return raw, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrAllGatewaysFailed, errors.Join(errs...))
}

func (l *Loader) fetchOne(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	if err := ValidateBatch(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (l *Loader) rootHash(ctx context.Context) (string, error) {
	if l.root != "" {
		return l.root, nil
	}
	if l.resolver == nil {
		return "", ErrNoRoot
	}
	root, err := l.resolver.QuestionsRootHash(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	if root == "" {
		return "", ErrNoRoot
	}
	return root, nil
}

type batchFile struct {
	Questions    []domain.Question `json:"questions"`
	CreatedAt    string            `json:"createdAt"`
	Difficulty   domain.Difficulty `json:"difficulty"`
	LanguagePair string            `json:"languagePair"`
}

// DecodeBatch validates a batch document and applies the same defaults as LoadBatch.
func DecodeBatch(raw []byte, batchID int) (domain.Batch, error) {
	if err := ValidateBatch(raw); err != nil {
		return domain.Batch{}, err
	}
	return decodeBatch(raw, batchID, time.Now())
}

func decodeBatch(raw []byte, batchID int, now time.Time) (domain.Batch, error) {
	var file batchFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return domain.Batch{}, fmt.Errorf("decode batch: %w", err)
	}

	batch := domain.Batch{
		BatchID:      batchID,
		Questions:    file.Questions,
		CreatedAt:    now,
		Difficulty:   file.Difficulty,
		LanguagePair: file.LanguagePair,
	}
	if t, err := time.Parse(time.RFC3339, file.CreatedAt); err == nil {
		batch.CreatedAt = t
	}
	if batch.Difficulty == "" {
		batch.Difficulty = domain.DifficultyMedium
	}
	if batch.LanguagePair == "" {
		batch.LanguagePair = domain.FallbackLanguagePair
	}
	for i := range batch.Questions {
		q := &batch.Questions[i]
		if q.ID == 0 {
			q.ID = (batchID-1)*domain.QuestionsPerBatch + i + 1
		}
		if q.Difficulty == "" {
			q.Difficulty = batch.Difficulty
		}
	}
	return batch, nil
}
