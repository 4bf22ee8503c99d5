package app

// Scoring policy: every correct answer earns a base of 5 points, plus a speed
// bonus that starts at 5 for the first correct answer and shrinks by one per
// rank. Rank 6 and beyond earn the base only.
const (
	basePoints = 5
	maxBonus   = 5
)

// PointsForRank maps a 1-based answer rank to points earned.
func PointsForRank(rank int) int {
	if rank < 1 {
		return 0
	}
	bonus := maxBonus - (rank - 1)
	if bonus < 0 {
		bonus = 0
	}
	return basePoints + bonus
}
