// Package service implements the goal lifecycle controller: bootstrapping
// goals when none exist, resizing targets as income evolves, and reacting
// to goal completion.
package service

import (
	"context"
	"regexp"
	"strings"

	"gullak/internal/apperr"
	"gullak/internal/istime"
	advisordomain "gullak/internal/module/advisor/domain"
	"gullak/internal/module/goal/domain"
	"gullak/internal/module/goal/repository"
	"gullak/internal/money"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	recurringPattern = regexp.MustCompile(`emergency|vacation|monthly|savings|buffer|reserve|fund`)
	oneTimePattern   = regexp.MustCompile(`buy|purchase|phone|laptop|wedding|car|house|gift`)
)

// successorNames maps a completed one-time goal's name onto its follow-up
// goal.
var successorNames = []struct {
	keyword string
	name    string
}{
	{"phone", "Next Phone Upgrade"},
	{"laptop", "Next Laptop"},
	{"car", "Car Maintenance Fund"},
	{"wedding", "Future Savings"},
}

// LifecycleController keeps the goal set aligned with the user's income
// profile and reacts to terminal states.
type LifecycleController interface {
	// EnsureGoals creates the three bootstrap goals that are missing for
	// the user and returns the active set afterwards. avgMonthlyIncome may
	// be zero; triggerAmount is the income credit that prompted the call
	// and drives the fallback target sizing.
	EnsureGoals(ctx context.Context, userID uuid.UUID, avgMonthlyIncome, triggerAmount money.Amount, fctx advisordomain.FinancialContext) ([]domain.Goal, error)

	// ResizeTargets recomputes recommended targets and overwrites the
	// target of each active bootstrap goal (the first emergency goal,
	// "Savings Goal 1", "Savings Goal 2") whose target is zero or drifted
	// more than 20% from the recommendation. Other goals and completed
	// goals are left untouched.
	ResizeTargets(ctx context.Context, userID uuid.UUID, avgMonthlyIncome money.Amount) error

	// HandleCompletions reacts to goals whose completion flag flipped
	// during an allocation: recurring goals get a 25% higher target and
	// reopen, one-time goals spawn a successor, and a user left with zero
	// active goals gets a fresh general savings goal.
	HandleCompletions(ctx context.Context, userID uuid.UUID, completed []domain.Goal, recentIncome money.Amount) error
}

type lifecycleController struct {
	repo    repository.Repository
	advisor advisordomain.Advisor
	refine  bool
	logger  *zap.Logger
}

func NewLifecycleController(repo repository.Repository, advisor advisordomain.Advisor, refineBootstrap bool, logger *zap.Logger) LifecycleController {
	return &lifecycleController{
		repo:    repo,
		advisor: advisor,
		refine:  refineBootstrap,
		logger:  logger.Named("goal.lifecycle"),
	}
}

func (l *lifecycleController) EnsureGoals(ctx context.Context, userID uuid.UUID, avgMonthlyIncome, triggerAmount money.Amount, fctx advisordomain.FinancialContext) ([]domain.Goal, error) {
	existing, err := l.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	income := resolveMonthlyIncome(avgMonthlyIncome, triggerAmount)
	targets := baseTargets(income)

	if l.refine && l.advisor != nil {
		refined, reasoning, rerr := l.advisor.RefineBootstrapTargets(ctx, targets, fctx)
		if rerr != nil {
			l.logger.Info("target refinement unavailable, using formula targets", zap.Error(rerr))
		} else {
			targets = refined
			l.logger.Info("bootstrap targets refined", zap.String("reasoning", reasoning))
		}
	}

	now := istime.Now()
	deadline1 := now.AddDate(0, 0, 180)
	deadline2 := now.AddDate(0, 0, 120)

	plan := []domain.Goal{
		{Name: "Emergency Fund", Type: domain.GoalTypeEmergency, Target: targets.EmergencyFund},
		{Name: "Savings Goal 1", Type: domain.GoalTypeSavings, Target: targets.SavingsGoal1, Deadline: &deadline1},
		{Name: "Savings Goal 2", Type: domain.GoalTypeSavings, Target: targets.SavingsGoal2, Deadline: &deadline2},
	}

	for _, g := range plan {
		if hasGoalLike(existing, g.Type, g.Name) {
			continue
		}
		goal := g
		goal.ID = uuid.New()
		goal.UserID = userID
		goal.Saved = money.Zero
		if err := l.repo.Create(ctx, &goal); err != nil {
			return nil, err
		}
		l.logger.Info("bootstrap goal created",
			zap.String("name", goal.Name),
			zap.Float64("target", goal.Target.Float64()),
		)
		existing = append(existing, goal)
	}

	return l.repo.FindActiveByUserID(ctx, userID)
}

// hasGoalLike guards against duplicate bootstrap goals: the emergency fund
// is keyed by type, the savings goals by name.
func hasGoalLike(goals []domain.Goal, goalType domain.GoalType, name string) bool {
	for _, g := range goals {
		if goalType == domain.GoalTypeEmergency && g.Type == domain.GoalTypeEmergency {
			return true
		}
		if strings.EqualFold(g.Name, name) {
			return true
		}
	}
	return false
}

func (l *lifecycleController) ResizeTargets(ctx context.Context, userID uuid.UUID, avgMonthlyIncome money.Amount) error {
	if !avgMonthlyIncome.IsPositive() {
		return nil
	}
	goals, err := l.repo.FindActiveByUserID(ctx, userID)
	if err != nil {
		return err
	}

	targets := baseTargets(avgMonthlyIncome)

	// Only the bootstrap goals track the income-derived targets; goals the
	// user named themselves keep whatever target they chose.
	var emergencySeen bool
	for i := range goals {
		g := &goals[i]

		var recommended money.Amount
		switch {
		case g.Type == domain.GoalTypeEmergency:
			if emergencySeen {
				continue
			}
			emergencySeen = true
			recommended = targets.EmergencyFund
		case strings.EqualFold(g.Name, "Savings Goal 1"):
			recommended = targets.SavingsGoal1
		case strings.EqualFold(g.Name, "Savings Goal 2"):
			recommended = targets.SavingsGoal2
		default:
			continue
		}

		if !needsResize(g.Target, recommended) {
			continue
		}
		old := g.Target
		g.Target = recommended
		if g.Saved.GreaterThan(g.Target) {
			// Never shrink a target below what is already saved.
			g.Target = g.Saved
		}
		if err := l.repo.Update(ctx, g); err != nil {
			return err
		}
		l.logger.Info("goal target resized",
			zap.String("goal", g.Name),
			zap.Float64("from", old.Float64()),
			zap.Float64("to", g.Target.Float64()),
		)
	}
	return nil
}

func (l *lifecycleController) HandleCompletions(ctx context.Context, userID uuid.UUID, completed []domain.Goal, recentIncome money.Amount) error {
	for i := range completed {
		g := completed[i]
		name := strings.ToLower(g.Name)

		isRecurring := recurringPattern.MatchString(name) || g.Type == domain.GoalTypeEmergency
		isOneTime := oneTimePattern.MatchString(name)

		switch {
		case isRecurring && !isOneTime && recentIncome.IsPositive():
			fresh, err := l.repo.FindByID(ctx, userID, g.ID)
			if err != nil {
				if apperr.IsNotFound(err) {
					continue
				}
				return err
			}
			old := fresh.Target
			fresh.Target = fresh.Target.Mul(1.25).RoundRupee()
			fresh.IsCompleted = false
			if err := l.repo.Update(ctx, fresh); err != nil {
				return err
			}
			l.logger.Info("recurring goal reopened with a higher target",
				zap.String("goal", fresh.Name),
				zap.Float64("from", old.Float64()),
				zap.Float64("to", fresh.Target.Float64()),
			)

		case isOneTime && recentIncome.IsPositive():
			successor := &domain.Goal{
				ID:     uuid.New(),
				UserID: userID,
				Name:   successorName(name),
				Type:   domain.GoalTypeSavings,
				Target: recentIncome.Mul(0.3).RoundRupee(),
			}
			if !successor.Target.IsPositive() {
				continue
			}
			if err := l.repo.Create(ctx, successor); err != nil {
				return err
			}
			l.logger.Info("successor goal created after one-time goal completed",
				zap.String("completed", g.Name),
				zap.String("successor", successor.Name),
				zap.Float64("target", successor.Target.Float64()),
			)
		}
	}

	// A user with zero active goals and income coming in gets a generic
	// goal so future credits have somewhere to go.
	active, err := l.repo.FindActiveByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if len(active) == 0 && recentIncome.IsPositive() {
		general := &domain.Goal{
			ID:     uuid.New(),
			UserID: userID,
			Name:   "General Savings Goal",
			Type:   domain.GoalTypeSavings,
			Target: recentIncome.Mul(0.4).RoundRupee(),
		}
		if err := l.repo.Create(ctx, general); err != nil {
			return err
		}
		l.logger.Info("general savings goal created, all goals were completed",
			zap.Float64("target", general.Target.Float64()),
		)
	}
	return nil
}

func successorName(completedName string) string {
	for _, s := range successorNames {
		if strings.Contains(completedName, s.keyword) {
			return s.name
		}
	}
	return "New Savings Goal"
}
