package tetris

// LineScore は1回のロックで rows 行を消したときの得点です。
// 行数の2乗に比例します（1行=100, 2行=400, 3行=900, 4行=1600）。
func LineScore(rows int) int {
	return 100 * rows * rows
}

// ClearLines は揃った行を下から探して削除し、上の行を詰めます。
// merged は直前にマージされたブロックで、揃った行が存在し得るかの事前判定にのみ使います。
// 削除したブロックは surface から削除され、詰めたブロックには (0, 1) の移動が通知されます。
//
// Returns:
//
//	score : 今回の消去による得点 (LineScore)
//	rows  : 削除した行数
func ClearLines(grid *Grid, surface Surface, merged []Block) (score int, rows int) {
	if !touchesFullRow(grid, merged) {
		return 0, 0
	}

	// 最初の空行を下から探す。これより上の行はプレイ中に触れられることは無い。
	// 空行が無い場合はボードの一つ上を仮想の空行とし、最上段も消去対象にする。
	emptyRow := -1
	for y := grid.Height() - 1; y >= 0; y-- {
		if grid.RowEmpty(y) {
			emptyRow = y
			break
		}
	}

	y := grid.Height() - 1
	for y > emptyRow {
		if !grid.RowFull(y) {
			y--
			continue
		}
		rows++
		for _, h := range grid.RemoveRow(y) {
			surface.Remove(h)
		}
		for ay := y - 1; ay > emptyRow; ay-- {
			for _, h := range grid.shiftDown(ay) {
				surface.Move(h, Down.Vector())
			}
		}
		// 空行の境界も1つ下がる。y は据え置き（上の行が y に降りてきたので再判定する）。
		emptyRow++
	}
	return LineScore(rows), rows
}

func touchesFullRow(grid *Grid, merged []Block) bool {
	if len(merged) == 0 {
		// 手がかりが無い場合は全体を走査する
		return true
	}
	for _, b := range merged {
		if b.Coord.Y >= 0 && b.Coord.Y < grid.Height() && grid.RowFull(b.Coord.Y) {
			return true
		}
	}
	return false
}
