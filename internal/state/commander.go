package state

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/MarwanIssa100/SparkUp/internal/config"
	"github.com/MarwanIssa100/SparkUp/internal/logger"
	"github.com/MarwanIssa100/SparkUp/internal/model"
	"github.com/ethereum/go-ethereum/common"
)

// Writer is the write side of the SparkUp contract plus the session account.
type Writer interface {
	CreateIdea(ctx context.Context, title, description string, fundGoal *big.Int, deadline uint64) (common.Hash, error)
	FundIdea(ctx context.Context, id uint64, amount *big.Int) (common.Hash, error)
	Withdraw(ctx context.Context, id uint64) (common.Hash, error)
	CompleteIdea(ctx context.Context, id uint64) (common.Hash, error)
	Refund(ctx context.Context, id uint64) (common.Hash, error)
	WaitMined(ctx context.Context, txHash common.Hash) (bool, error)
	Account() (common.Address, bool)
}

// Fetcher re-reads a single record when a confirmed write is reconciled.
type Fetcher interface {
	FetchOne(ctx context.Context, id uint64) (model.Idea, bool, error)
}

// CommandInfo describes the one in-flight write, if any.
type CommandInfo struct {
	Op          string      `json:"op"`
	IdeaId      uint64      `json:"idea_id"`
	TxHash      common.Hash `json:"tx_hash"`
	SubmittedAt time.Time   `json:"submitted_at"`
}

type command struct {
	info     CommandInfo
	rollback func()
	ctx      context.Context
	cancel   context.CancelFunc
}

// Commander runs every mutating action through the same optimistic
// discipline: apply the local delta, submit the transaction, then either
// reconcile with the authoritative record once mined or roll the delta
// back on rejection. At most one command is pending at a time.
type Commander struct {
	store   *Store
	writer  Writer
	fetcher Fetcher
	policy  config.PolicyConfig
	now     func() time.Time

	mu      sync.Mutex
	pending *command
}

func NewCommander(store *Store, writer Writer, fetcher Fetcher, policy config.PolicyConfig) *Commander {
	return &Commander{
		store:   store,
		writer:  writer,
		fetcher: fetcher,
		policy:  policy,
		now:     time.Now,
	}
}

// Pending reports the in-flight command, if any.
func (c *Commander) Pending() (CommandInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return CommandInfo{}, false
	}
	return c.pending.info, true
}

// SubmitCreate validates the form, appends a synthetic record immediately
// and submits the createIdea transaction. The synthetic record carries
// id = current count + 1 and the session account as owner.
func (c *Commander) SubmitCreate(ctx context.Context, title, description, goalText string) (common.Hash, error) {
	if strings.TrimSpace(title) == "" {
		return common.Hash{}, &model.ValidationError{Field: "title", Reason: "required"}
	}
	if strings.TrimSpace(description) == "" {
		return common.Hash{}, &model.ValidationError{Field: "description", Reason: "required"}
	}
	if strings.TrimSpace(goalText) == "" {
		return common.Hash{}, &model.ValidationError{Field: "goal", Reason: "required"}
	}
	owner, ok := c.writer.Account()
	if !ok {
		return common.Hash{}, model.ErrNoAccount
	}
	goal, err := model.ParseEther(goalText)
	if err != nil {
		return common.Hash{}, err
	}

	deadline := uint64(c.now().Add(c.policy.CampaignDuration).Unix())
	id := c.store.NextId()
	synthetic := model.Idea{
		Id:              id,
		Title:           title,
		Description:     description,
		Owner:           owner,
		FundGoal:        goal,
		Deadline:        deadline,
		AmountCollected: new(big.Int),
		Completed:       false,
		Synthetic:       true,
	}

	return c.run(ctx, "create", id,
		func() func() {
			c.store.Append(synthetic)
			return func() { c.store.Remove(id) }
		},
		func(ctx context.Context) (common.Hash, error) {
			return c.writer.CreateIdea(ctx, title, description, goal, deadline)
		})
}

// Fund attaches the parsed amount as transaction value and bumps the local
// aggregate immediately.
func (c *Commander) Fund(ctx context.Context, id uint64, amountText string) (common.Hash, error) {
	if id == 0 {
		return common.Hash{}, &model.ValidationError{Field: "idea", Reason: "no idea selected"}
	}
	if strings.TrimSpace(amountText) == "" {
		return common.Hash{}, &model.ValidationError{Field: "amount", Reason: "required"}
	}
	if _, ok := c.store.Get(id); !ok {
		return common.Hash{}, &model.ValidationError{Field: "idea", Reason: "unknown idea"}
	}
	amount, err := model.ParseEther(amountText)
	if err != nil {
		return common.Hash{}, err
	}

	return c.run(ctx, "fund", id,
		func() func() {
			c.store.Mutate(id, func(idea *model.Idea) {
				idea.AmountCollected = new(big.Int).Add(idea.AmountCollected, amount)
			})
			return func() {
				c.store.Mutate(id, func(idea *model.Idea) {
					idea.AmountCollected = new(big.Int).Sub(idea.AmountCollected, amount)
				})
			}
		},
		func(ctx context.Context) (common.Hash, error) {
			return c.writer.FundIdea(ctx, id, amount)
		})
}

// Withdraw zeroes the local aggregate optimistically.
func (c *Commander) Withdraw(ctx context.Context, id uint64) (common.Hash, error) {
	prev, ok := c.store.Get(id)
	if !ok {
		return common.Hash{}, &model.ValidationError{Field: "idea", Reason: "unknown idea"}
	}

	return c.run(ctx, "withdraw", id,
		func() func() {
			c.store.Mutate(id, func(idea *model.Idea) {
				idea.AmountCollected = new(big.Int)
			})
			return func() {
				c.store.Mutate(id, func(idea *model.Idea) {
					idea.AmountCollected = new(big.Int).Set(prev.AmountCollected)
				})
			}
		},
		func(ctx context.Context) (common.Hash, error) {
			return c.writer.Withdraw(ctx, id)
		})
}

// Complete marks the record completed optimistically. Completion is
// one-way on chain, so the only path back is a rollback.
func (c *Commander) Complete(ctx context.Context, id uint64) (common.Hash, error) {
	if _, ok := c.store.Get(id); !ok {
		return common.Hash{}, &model.ValidationError{Field: "idea", Reason: "unknown idea"}
	}

	return c.run(ctx, "complete", id,
		func() func() {
			c.store.Mutate(id, func(idea *model.Idea) { idea.Completed = true })
			return func() {
				c.store.Mutate(id, func(idea *model.Idea) { idea.Completed = false })
			}
		},
		func(ctx context.Context) (common.Hash, error) {
			return c.writer.CompleteIdea(ctx, id)
		})
}

// Refund has no local delta: the per-contributor share lives only on
// chain, so the aggregate is left alone and reconciliation picks up the
// authoritative value once the transaction is mined.
func (c *Commander) Refund(ctx context.Context, id uint64) (common.Hash, error) {
	if _, ok := c.store.Get(id); !ok {
		return common.Hash{}, &model.ValidationError{Field: "idea", Reason: "unknown idea"}
	}

	return c.run(ctx, "refund", id,
		func() func() { return func() {} },
		func(ctx context.Context) (common.Hash, error) {
			return c.writer.Refund(ctx, id)
		})
}

// run is the shared optimistic path: apply, submit, watch in background.
// The submit ctx belongs to the caller; the watch ctx does not, since the
// transaction outlives the request.
func (c *Commander) run(ctx context.Context, op string, id uint64, apply func() func(), submit func(context.Context) (common.Hash, error)) (common.Hash, error) {
	c.mu.Lock()
	if c.pending != nil {
		c.mu.Unlock()
		return common.Hash{}, model.ErrBusy
	}

	rollback := apply()
	txHash, err := submit(ctx)
	if err != nil {
		rollback()
		c.mu.Unlock()
		return common.Hash{}, &model.WriteError{Op: op, Err: err}
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	cmd := &command{
		info: CommandInfo{
			Op:          op,
			IdeaId:      id,
			TxHash:      txHash,
			SubmittedAt: c.now(),
		},
		rollback: rollback,
		ctx:      watchCtx,
		cancel:   cancel,
	}
	c.pending = cmd
	c.mu.Unlock()

	logger.Info("Submitted %s for idea %d: %s", op, id, txHash.Hex())
	go c.watch(cmd)
	return txHash, nil
}

func (c *Commander) watch(cmd *command) {
	ok, err := c.writer.WaitMined(cmd.ctx, cmd.info.TxHash)
	if cmd.ctx.Err() != nil {
		// The stale sweep took the command over.
		return
	}

	switch {
	case err != nil:
		logger.Error("Confirmation watch for %s (idea %d) failed: %v", cmd.info.Op, cmd.info.IdeaId, err)
		c.store.MarkStale(cmd.info.IdeaId)
	case !ok:
		logger.Warn("%s for idea %d reverted, rolling back", cmd.info.Op, cmd.info.IdeaId)
		cmd.rollback()
	default:
		c.reconcile(cmd.ctx, cmd.info.IdeaId)
	}
	c.finish(cmd)
}

// reconcile supersedes the optimistic record with the authoritative one.
func (c *Commander) reconcile(ctx context.Context, id uint64) {
	idea, ok, err := c.fetcher.FetchOne(ctx, id)
	if err != nil {
		// One retry; past that the sweep will pick the record up.
		idea, ok, err = c.fetcher.FetchOne(ctx, id)
	}
	if err != nil {
		logger.Error("Reconciliation fetch for idea %d failed: %v", id, err)
		c.store.MarkStale(id)
		return
	}
	if !ok {
		logger.Warn("Idea %d confirmed but absent from contract", id)
		c.store.MarkStale(id)
		return
	}
	c.store.ReplaceAuthoritative(idea)
	logger.Debug("Reconciled idea %d", id)
}

func (c *Commander) finish(cmd *command) {
	c.mu.Lock()
	if c.pending == cmd {
		c.pending = nil
	}
	c.mu.Unlock()
	cmd.cancel()
}

// SweepStale takes over a command whose confirmation has been pending
// longer than the reconcile timeout: it retries reconciliation once and
// otherwise flags the record stale, so the snapshot never diverges
// silently. Called periodically by the task scheduler.
func (c *Commander) SweepStale(ctx context.Context) {
	c.mu.Lock()
	cmd := c.pending
	if cmd == nil || c.now().Sub(cmd.info.SubmittedAt) < c.policy.ReconcileTimeout {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.mu.Unlock()

	cmd.cancel()
	logger.Warn("Command %s for idea %d unconfirmed after %s, sweeping", cmd.info.Op, cmd.info.IdeaId, c.policy.ReconcileTimeout)

	idea, ok, err := c.fetcher.FetchOne(ctx, cmd.info.IdeaId)
	if err == nil && ok {
		c.store.ReplaceAuthoritative(idea)
		return
	}
	if err != nil {
		logger.Error("Stale sweep fetch for idea %d failed: %v", cmd.info.IdeaId, err)
	}
	c.store.MarkStale(cmd.info.IdeaId)
}
