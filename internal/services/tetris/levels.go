package tetris

// LevelThresholds はレベルが上がるスコアの閾値を n レベル分計算します。
// threshold[i] = first * 2^i で、各レベルは前のレベルの2倍のスコアを必要とします。
func LevelThresholds(first, n int) []int {
	thresholds := make([]int, n)
	for i := range thresholds {
		thresholds[i] = first << i
	}
	return thresholds
}
