package game

import "blindpick-service/internal/domain"

// buildSlots derives the candidate answers for a round: one slot per player
// in canonical order, carrying that player's submitted text (possibly empty),
// plus exactly one truth slot. Slots are rebuilt from scratch on every
// shuffle, so the author set is always players plus the truth sentinel.
func buildSlots(players, answers []string, truth string) []domain.Slot {
	slots := make([]domain.Slot, 0, len(players)+1)
	for i, p := range players {
		text := ""
		if i < len(answers) {
			text = answers[i]
		}
		slots = append(slots, domain.Slot{Author: p, Text: text})
	}
	return append(slots, domain.Slot{Author: domain.TruthAuthor, Text: truth})
}

// rotated returns the players right-rotated by round mod len(players). Column
// position is purely cosmetic; selections always key on the canonical name.
func rotated(players []string, round int) []string {
	n := len(players)
	if n == 0 {
		return nil
	}
	k := round % n
	out := make([]string, 0, n)
	out = append(out, players[n-k:]...)
	return append(out, players[:n-k]...)
}
