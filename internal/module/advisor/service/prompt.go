package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gullak/internal/module/advisor/domain"
	"gullak/internal/money"
)

// allocationPromptGoal is the JSON shape each goal takes inside the prompt.
type allocationPromptGoal struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Target          float64 `json:"target"`
	Saved           float64 `json:"saved"`
	Remaining       float64 `json:"remaining"`
	ProgressPercent float64 `json:"progress_percent"`
	Deadline        *string `json:"deadline"`
	DaysToDeadline  *int    `json:"days_until_deadline"`
	Urgency         string  `json:"urgency"`
}

// buildAllocationPrompt renders the allocation-percentages prompt. Goals
// are expected pre-sorted most-urgent-first.
func buildAllocationPrompt(income money.Amount, goals []domain.GoalSummary, fctx domain.FinancialContext) string {
	promptGoals := make([]allocationPromptGoal, 0, len(goals))
	for _, g := range goals {
		var deadline *string
		if g.Deadline != nil {
			d := g.Deadline.Format(time.RFC3339)
			deadline = &d
		}
		promptGoals = append(promptGoals, allocationPromptGoal{
			ID:              g.ID,
			Name:            g.Name,
			Type:            g.Type,
			Target:          g.Target.Float64(),
			Saved:           g.Saved.Float64(),
			Remaining:       g.Remaining.Float64(),
			ProgressPercent: g.ProgressPercent,
			Deadline:        deadline,
			DaysToDeadline:  g.DaysToDeadline,
			Urgency:         g.Urgency,
		})
	}
	goalsJSON, _ := json.MarshalIndent(promptGoals, "", "  ")

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a smart financial coach for users in India. Determine the optimal allocation percentages for a new income of ₹%.0f.\n\n", income.Float64())
	fmt.Fprintf(&sb, "User's Financial Context:\n")
	fmt.Fprintf(&sb, "- Average Monthly Income: ₹%.0f\n", fctx.AvgMonthlyIncome.Float64())
	fmt.Fprintf(&sb, "- Average Monthly Expenses: ₹%.0f\n", fctx.AvgMonthlyExpenses.Float64())
	fmt.Fprintf(&sb, "- Savings Rate: %.1f%%\n", fctx.SavingsRatePercent)
	fmt.Fprintf(&sb, "- Emergency Fund Status: %s (%.1f%% complete)\n", fctx.EmergencyFundStatus, fctx.EmergencyFundProgress)
	fmt.Fprintf(&sb, "- Job Type: %s\n", fctx.JobType)
	fmt.Fprintf(&sb, "- Income Level: %s\n\n", fctx.IncomeLevel)
	fmt.Fprintf(&sb, "Active Goals (%d goals) - SORTED BY URGENCY (most urgent first):\n%s\n\n", len(promptGoals), goalsJSON)
	sb.WriteString(`IMPORTANT: Each goal shows:
- "urgency": "overdue" (past deadline), "urgent" (<30 days), "moderate" (30-90 days), "normal" (90-180 days), "low" (>180 days)
- "days_until_deadline": Number of days until deadline (negative = overdue)
- "progress_percent": How much of the goal is already saved
- "remaining": Amount still needed to reach target

ALLOCATION PRIORITY: Goals with fewer days until deadline and lower progress should receive HIGHER percentages!

Rules:
1. Total allocation to goals MUST be exactly 40% of income (leave 40% for spending and 20% for investment)
2. Emergency Fund: Allocate 10% if not completed, 0% if completed
3. Regular Goals: Distribute remaining 30% allocation based on PRIORITY ORDER:
   - Goals with "urgent" or "overdue" urgency: 20-25% each
   - Goals with "moderate" urgency: 15-20% each
   - Goals with "normal" urgency: 10-15% each
   - Goals with "low" urgency: 5-10% each
   - Among equally urgent goals prefer fewer days to deadline, then lower progress, then higher remaining amount
4. Total allocation MUST be exactly 40% - no more, no less
5. Respect each goal's remaining amount - never propose more than it still needs

Return ONLY a JSON object with this exact format:
{
  "emergency_fund_percent": 10.0,
  "goal_allocations": [
    {"goal_id": "goal-id-1", "percent": 15.0},
    {"goal_id": "goal-id-2", "percent": 15.0}
  ],
  "total_allocation_percent": 40.0,
  "spending_percent": 40.0,
  "investment_percent": 20.0,
  "reasoning": "Brief explanation of allocation strategy"
}

Important:
- All percentages must be numbers (not strings)
- total_allocation_percent (40%) + spending_percent (40%) + investment_percent (20%) must equal 100
- emergency_fund_percent + sum of goal_allocations percentages must equal total_allocation_percent (40%)
- Return ONLY the JSON object, no other text`)
	return sb.String()
}

// buildRefinementPrompt renders the bootstrap-target refinement prompt.
func buildRefinementPrompt(base domain.BootstrapTargets, fctx domain.FinancialContext) string {
	location := fctx.Location
	if location == "" {
		location = "India"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an expert financial advisor for users in %s. Refine goal targets intelligently based on comprehensive user context.\n\n", location)
	fmt.Fprintf(&sb, "BASE TARGETS (calculated from income):\n")
	fmt.Fprintf(&sb, "- Emergency Fund: ₹%.0f\n", base.EmergencyFund.Float64())
	fmt.Fprintf(&sb, "- Savings Goal 1: ₹%.0f\n", base.SavingsGoal1.Float64())
	fmt.Fprintf(&sb, "- Savings Goal 2: ₹%.0f\n\n", base.SavingsGoal2.Float64())
	fmt.Fprintf(&sb, "USER'S FINANCIAL CONTEXT:\n")
	fmt.Fprintf(&sb, "- Average Monthly Income: ₹%.0f (%s income)\n", fctx.AvgMonthlyIncome.Float64(), fctx.IncomeLevel)
	fmt.Fprintf(&sb, "- Average Monthly Expenses: ₹%.0f\n", fctx.AvgMonthlyExpenses.Float64())
	fmt.Fprintf(&sb, "- Savings Rate: %.1f%%\n", fctx.SavingsRatePercent)
	fmt.Fprintf(&sb, "- Job Type: %s\n", fctx.JobType)
	fmt.Fprintf(&sb, "- Location: %s\n\n", location)
	sb.WriteString(`REFINEMENT RULES:
1. Emergency Fund: gig workers need 6-8 months of expenses (irregular income), salaried need 3-4 months. Metro cities need 20-30% more. If saving <20%, reduce the target; if saving >40%, it can increase.
2. Savings Goals: low income (<₹30k) keeps targets realistic (1-1.5 months income), medium income (₹30k-₹75k) standard (1.5-2 months), high income (>₹75k) can set higher (2-3 months).
3. MINIMUM CONSTRAINTS (never go below): Emergency Fund ₹10,000; Savings Goal 1 ₹5,000; Savings Goal 2 ₹3,000.
4. MAXIMUM CONSTRAINTS: savings goals at most 6 months income; emergency fund at most 12 months expenses.

Return ONLY a JSON object with refined targets:
{
  "emergency_fund": 56700,
  "savings_goal_1": 36000,
  "savings_goal_2": 27000,
  "reasoning": "Brief explanation of refinements"
}

IMPORTANT:
- Return ONLY the JSON object, no other text
- All amounts must be integers (no decimals)`)
	return sb.String()
}

// extractJSON pulls the first JSON object out of a model response,
// tolerating code fences and surrounding prose.
func extractJSON(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	} else if strings.Contains(text, "```") {
		for _, part := range strings.Split(text, "```") {
			part = strings.TrimSpace(part)
			if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
				text = part
				break
			}
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
