// Package game provides the prisoner's-dilemma payoff table and the
// per-agent aggregation built on it.
package game

// Payoff constants. T > R > P > S makes defection individually tempting.
const (
	// Reward: both cooperate.
	Reward = 3.0

	// Sucker: cooperate against a defector.
	Sucker = 1.0

	// Temptation: defect against a cooperator.
	Temptation = 4.0

	// Punishment: both defect.
	Punishment = 2.0
)

// ValidTable reports whether the constants form a prisoner's dilemma.
func ValidTable() bool {
	return Temptation > Reward && Reward > Punishment && Punishment > Sucker
}
