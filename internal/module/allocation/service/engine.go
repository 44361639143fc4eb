// Package service implements the allocation engine: given a set of new
// income credits and the user's goals, it decides each goal's share,
// applies the balance updates and the consumed transaction ids in one
// database transaction, and dispatches side effects after commit.
package service

import (
	"context"
	"strings"

	"gullak/internal/apperr"
	"gullak/internal/istime"
	advisordomain "gullak/internal/module/advisor/domain"
	advisorservice "gullak/internal/module/advisor/service"
	conndomain "gullak/internal/module/connection/domain"
	connrepo "gullak/internal/module/connection/repository"
	goaldomain "gullak/internal/module/goal/domain"
	goalrepo "gullak/internal/module/goal/repository"
	goalservice "gullak/internal/module/goal/service"
	userrepo "gullak/internal/module/identify/user/repository"
	notifdomain "gullak/internal/module/notification/domain"
	notifservice "gullak/internal/module/notification/service"
	streakservice "gullak/internal/module/streak/service"
	txnrepo "gullak/internal/module/transaction/repository"
	"gullak/internal/money"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Request is one Allocate call. Connection is nil on the manual income
// path; ManualTransactionID is nil on the sync path.
type Request struct {
	UserID              uuid.UUID
	Connection          *conndomain.Connection
	ManualTransactionID *uuid.UUID
	Credits             []IncomeCredit
}

// Engine is the allocation engine's public contract.
type Engine interface {
	// Allocate distributes the credits across the user's goals. It is safe
	// to replay: already-consumed ids are dropped on entry, and ids are
	// only marked consumed in the same transaction as the balance updates.
	Allocate(ctx context.Context, req Request) (*Report, error)

	// EnsureUserGoals bootstraps and resizes goals without allocating,
	// used right after a connection is created.
	EnsureUserGoals(ctx context.Context, userID uuid.UUID) error
}

type engine struct {
	db        *gorm.DB
	goals     goalrepo.Repository
	conns     connrepo.Repository
	txns      txnrepo.Repository
	users     userrepo.Repository
	lifecycle goalservice.LifecycleController
	advisor   advisordomain.Advisor
	stats     *StatsCollector
	streaks   streakservice.Service
	emails    notifservice.EmailSender
	logger    *zap.Logger
}

func NewEngine(
	db *gorm.DB,
	goals goalrepo.Repository,
	conns connrepo.Repository,
	txns txnrepo.Repository,
	users userrepo.Repository,
	lifecycle goalservice.LifecycleController,
	advisor advisordomain.Advisor,
	stats *StatsCollector,
	streaks streakservice.Service,
	emails notifservice.EmailSender,
	logger *zap.Logger,
) Engine {
	return &engine{
		db:        db,
		goals:     goals,
		conns:     conns,
		txns:      txns,
		users:     users,
		lifecycle: lifecycle,
		advisor:   advisor,
		stats:     stats,
		streaks:   streaks,
		emails:    emails,
		logger:    logger.Named("allocation"),
	}
}

func (e *engine) EnsureUserGoals(ctx context.Context, userID uuid.UUID) error {
	fctx, err := e.stats.Collect(ctx, userID, nil)
	if err != nil {
		return err
	}
	if _, err := e.lifecycle.EnsureGoals(ctx, userID, fctx.AvgMonthlyIncome, money.Zero, fctx); err != nil {
		return err
	}
	return e.lifecycle.ResizeTargets(ctx, userID, fctx.AvgMonthlyIncome)
}

func (e *engine) Allocate(ctx context.Context, req Request) (*Report, error) {
	credits := e.dropConsumed(ctx, req)
	if len(credits) == 0 {
		e.logger.Info("nothing to allocate, all credits consumed or empty",
			zap.String("user_id", req.UserID.String()))
		return &Report{Income: money.Zero}, nil
	}

	total := money.Zero
	exclude := make(map[string]struct{}, len(credits))
	for _, cr := range credits {
		total = total.Add(cr.Amount)
		exclude[cr.ID] = struct{}{}
	}

	fctx, err := e.stats.Collect(ctx, req.UserID, exclude)
	if err != nil {
		return nil, err
	}

	// Goals must exist and carry current targets before any split is
	// proposed.
	goals, err := e.lifecycle.EnsureGoals(ctx, req.UserID, fctx.AvgMonthlyIncome, total, fctx)
	if err != nil {
		return nil, err
	}
	if len(goals) == 0 {
		// Ids stay unmarked so a later Allocate after goal creation can
		// still consume them.
		return nil, apperr.NoActiveGoals("user has no active goals")
	}

	avgForResize := fctx.AvgMonthlyIncome
	if !avgForResize.IsPositive() {
		avgForResize = total.Mul(30)
	}
	if err := e.lifecycle.ResizeTargets(ctx, req.UserID, avgForResize); err != nil {
		return nil, err
	}

	goals, err = e.goals.FindActiveByUserID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if len(goals) == 0 {
		return nil, apperr.NoActiveGoals("user has no active goals")
	}

	emergency, regular := partitionGoals(goals)
	summaries := buildSummaries(emergency, regular)
	applyEmergencyContext(&fctx, emergency)

	plan, err := e.advisor.ProposeAllocation(ctx, total, summaries, fctx)
	if err != nil {
		if !apperr.IsPolicyUnavailable(err) {
			return nil, err
		}
		e.logger.Warn("policy advisor unavailable, using formula fallback", zap.Error(err))
		plan = advisorservice.FormulaFallback(total, summaries)
	}

	applied := e.resolveShares(plan, total, emergency, regular)
	report := &Report{
		Income:    total,
		Reasoning: plan.Reasoning,
	}
	for _, cr := range credits {
		report.ConsumedIDs = append(report.ConsumedIDs, cr.ID)
	}

	if len(applied) == 0 {
		// Every goal was already at target; nothing committed, ids stay
		// unmarked.
		e.logger.Info("no goal can absorb this income, skipping allocation",
			zap.String("user_id", req.UserID.String()),
			zap.Float64("income", total.Float64()),
		)
		report.ConsumedIDs = nil
		report.Remaining = total
		return report, nil
	}

	err = e.db.Transaction(func(tx *gorm.DB) error {
		goalsTx := e.goals.WithTx(tx)
		for i := range applied {
			share := &applied[i]
			goal, err := goalsTx.FindByID(ctx, req.UserID, share.GoalID)
			if err != nil {
				return err
			}
			goal.Saved = goal.Saved.Add(share.Amount)
			if !goal.Saved.LessThan(goal.Target) {
				goal.Saved = goal.Target
				goal.IsCompleted = true
				report.CompletedGoals = append(report.CompletedGoals, *goal)
			}
			if err := goalsTx.Update(ctx, goal); err != nil {
				return err
			}
		}

		if req.Connection != nil {
			connsTx := e.conns.WithTx(tx)
			conn, err := connsTx.GetByID(ctx, req.UserID, req.Connection.ID)
			if err != nil {
				return err
			}
			for _, id := range report.ConsumedIDs {
				conn.Payload.AllocatedTransactionIDs.Add(id)
			}
			now := istime.Now()
			conn.LastSyncAt = &now
			if err := connsTx.Update(ctx, conn); err != nil {
				return err
			}
		}

		if req.ManualTransactionID != nil {
			if err := e.txns.WithTx(tx).MarkAllocated(ctx, req.UserID, *req.ManualTransactionID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.DBFailure("allocation transaction failed", err)
	}

	report.Allocations = applied
	for _, a := range applied {
		report.TotalAllocated = report.TotalAllocated.Add(a.Amount)
	}
	report.Remaining = total.Sub(report.TotalAllocated)

	e.logger.Info("income allocated",
		zap.String("user_id", req.UserID.String()),
		zap.Float64("income", total.Float64()),
		zap.Float64("allocated", report.TotalAllocated.Float64()),
		zap.Int("goals", len(applied)),
		zap.String("reasoning", report.Reasoning),
	)

	e.dispatchSideEffects(ctx, req, credits, report)
	return report, nil
}

// dropConsumed re-checks every credit against the allocated id set (and
// the manual allocation flag) before any work happens. The sync diff has
// already filtered these, but the engine owns the final word.
func (e *engine) dropConsumed(ctx context.Context, req Request) []IncomeCredit {
	out := make([]IncomeCredit, 0, len(req.Credits))

	var allocated conndomain.TransactionIDSet
	if req.Connection != nil {
		if conn, err := e.conns.GetByID(ctx, req.UserID, req.Connection.ID); err == nil {
			allocated = conn.Payload.AllocatedTransactionIDs
		}
	}
	manualDone := false
	if req.ManualTransactionID != nil {
		if txn, err := e.txns.FindByID(ctx, req.UserID, *req.ManualTransactionID); err == nil {
			manualDone = txn.Allocated
		}
	}

	for _, cr := range req.Credits {
		if !cr.Amount.IsPositive() {
			continue
		}
		if allocated != nil && allocated.Has(cr.ID) {
			e.logger.Info("skipping already-allocated transaction",
				zap.String("transaction_id", cr.ID))
			continue
		}
		if manualDone {
			continue
		}
		out = append(out, cr)
	}
	return out
}

// partitionGoals splits active goals into the canonical emergency goal
// (the oldest; duplicates are tolerated but never funded) and the regular
// goals.
func partitionGoals(goals []goaldomain.Goal) (*goaldomain.Goal, []goaldomain.Goal) {
	var emergency *goaldomain.Goal
	regular := make([]goaldomain.Goal, 0, len(goals))
	for i := range goals {
		g := goals[i]
		if g.Type == goaldomain.GoalTypeEmergency {
			if emergency == nil {
				emergency = &g
			}
			continue
		}
		regular = append(regular, g)
	}
	return emergency, regular
}

// buildSummaries renders the advisor's view: canonical emergency goal plus
// up to three regular goals, sorted most-urgent-first.
func buildSummaries(emergency *goaldomain.Goal, regular []goaldomain.Goal) []advisordomain.GoalSummary {
	now := istime.Now()

	sorted := make([]goaldomain.Goal, len(regular))
	copy(sorted, regular)
	goaldomain.SortByUrgency(sorted, now)
	if len(sorted) > 3 {
		sorted = sorted[:3]
	}

	all := make([]goaldomain.Goal, 0, len(sorted)+1)
	if emergency != nil {
		all = append(all, *emergency)
	}
	all = append(all, sorted...)

	summaries := make([]advisordomain.GoalSummary, 0, len(all))
	for i := range all {
		g := all[i]
		s := advisordomain.GoalSummary{
			ID:              g.ID.String(),
			Name:            g.Name,
			Type:            string(g.Type),
			Target:          g.Target,
			Saved:           g.Saved,
			Remaining:       g.Remaining(),
			ProgressPercent: g.ProgressPercent(),
			Deadline:        g.Deadline,
			Urgency:         string(goaldomain.ClassifyUrgency(&g, now)),
		}
		if days, ok := g.DaysToDeadline(now); ok {
			d := days
			s.DaysToDeadline = &d
		}
		summaries = append(summaries, s)
	}
	return summaries
}

func applyEmergencyContext(fctx *advisordomain.FinancialContext, emergency *goaldomain.Goal) {
	fctx.EmergencyFundStatus = "not_started"
	if emergency == nil || !emergency.Target.IsPositive() {
		return
	}
	progress := emergency.ProgressPercent()
	fctx.EmergencyFundProgress = progress
	switch {
	case progress >= 100:
		fctx.EmergencyFundStatus = "completed"
	case progress >= 50:
		fctx.EmergencyFundStatus = "halfway"
	case progress > 0:
		fctx.EmergencyFundStatus = "in_progress"
	}
}

// resolveShares turns the advisor's plan into clamped per-goal amounts:
// the emergency share goes to the canonical emergency goal, each regular
// share is matched by id (exact, then unique 8-char prefix, then
// position), every share is capped at the goal's remaining need, and the
// running total never exceeds the income.
func (e *engine) resolveShares(plan *advisordomain.AllocationPlan, total money.Amount, emergency *goaldomain.Goal, regular []goaldomain.Goal) []AppliedAllocation {
	var applied []AppliedAllocation
	budget := total

	addShare := func(g *goaldomain.Goal, amount money.Amount, percent float64) {
		if g.IsCompleted || !amount.IsPositive() || !budget.IsPositive() {
			return
		}
		if !g.Target.IsPositive() {
			e.logger.Warn("goal has zero target, skipping allocation",
				zap.String("goal", g.Name))
			return
		}
		amount = amount.Min(g.Remaining()).Min(budget)
		if !amount.IsPositive() {
			return
		}
		budget = budget.Sub(amount)
		applied = append(applied, AppliedAllocation{
			GoalID:   g.ID,
			GoalName: g.Name,
			GoalType: g.Type,
			Amount:   amount,
			Percent:  percent,
		})
	}

	if emergency != nil {
		addShare(emergency, plan.EmergencyFund.Amount, plan.EmergencyFund.Percent)
	}

	unmatched := make([]goaldomain.Goal, len(regular))
	copy(unmatched, regular)

	for _, ga := range plan.GoalAllocations {
		idx, how := matchGoal(ga.GoalID, unmatched)
		if idx < 0 {
			e.logger.Warn("advisor goal id matched nothing, share dropped",
				zap.String("goal_id", ga.GoalID))
			continue
		}
		if how != "exact" {
			e.logger.Warn("advisor goal id resolved by fallback",
				zap.String("goal_id", ga.GoalID),
				zap.String("strategy", how),
				zap.String("matched_goal", unmatched[idx].Name),
			)
		}
		g := unmatched[idx]
		unmatched = append(unmatched[:idx], unmatched[idx+1:]...)
		addShare(&g, ga.Amount, ga.Percent)
	}

	return applied
}

// matchGoal resolves an opaque advisor goal id against the remaining
// unmatched goals: exact id, then a unique 8-character prefix, then the
// first goal standing.
func matchGoal(goalID string, unmatched []goaldomain.Goal) (int, string) {
	if len(unmatched) == 0 {
		return -1, ""
	}
	for i := range unmatched {
		if unmatched[i].ID.String() == goalID {
			return i, "exact"
		}
	}
	if len(goalID) >= 8 {
		prefix := strings.ToLower(goalID[:8])
		found := -1
		for i := range unmatched {
			if strings.HasPrefix(strings.ToLower(unmatched[i].ID.String()), prefix) {
				if found >= 0 {
					found = -1
					break
				}
				found = i
			}
		}
		if found >= 0 {
			return found, "prefix"
		}
	}
	return 0, "positional"
}

// dispatchSideEffects runs the post-commit effects: savings streak, the
// allocation email, and completion reactions. None of them can fail the
// allocation.
func (e *engine) dispatchSideEffects(ctx context.Context, req Request, credits []IncomeCredit, report *Report) {
	if result, err := e.streaks.RecordSaving(ctx, req.UserID); err != nil {
		e.logger.Warn("failed to update savings streak", zap.Error(err))
	} else if result.CurrentStreak > 0 {
		e.logger.Info("savings streak updated", zap.String("message", result.Message))
	}

	user, err := e.users.FindByID(ctx, req.UserID)
	if err != nil {
		e.logger.Warn("failed to load user for allocation email", zap.Error(err))
	} else {
		email := notifdomain.IncomeAllocatedEmail{
			Email:          user.Email,
			UserName:       user.DisplayName(),
			IncomeAmount:   report.Income,
			TotalAllocated: report.TotalAllocated,
			Remaining:      report.Remaining,
		}
		for _, a := range report.Allocations {
			email.Allocations = append(email.Allocations, notifdomain.AllocationLine{
				GoalName: a.GoalName,
				GoalType: string(a.GoalType),
				Amount:   a.Amount,
				Percent:  a.Percent,
			})
		}
		for _, cr := range credits {
			email.Transactions = append(email.Transactions, notifdomain.IncomeLine{
				Amount:      cr.Amount,
				Description: cr.Description,
				Timestamp:   cr.Timestamp,
			})
		}
		if err := e.emails.SendIncomeAllocated(ctx, email); err != nil {
			e.logger.Warn("failed to send allocation email", zap.Error(err))
		}
	}

	if len(report.CompletedGoals) > 0 {
		if err := e.lifecycle.HandleCompletions(ctx, req.UserID, report.CompletedGoals, report.Income); err != nil {
			e.logger.Warn("failed to react to completed goals", zap.Error(err))
		}
	}
}
