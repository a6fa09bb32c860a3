package rooms

import "slices"

// EnsureSeatOrder reconciles SeatOrder with Players: departed ids are
// pruned, new joiners are appended in arrival order, and the start offset
// is clamped into range.
func (r *Room) EnsureSeatOrder() {
	present := make(map[string]bool, len(r.Players))
	for _, p := range r.Players {
		present[p.ID] = true
	}
	r.SeatOrder = slices.DeleteFunc(r.SeatOrder, func(id string) bool { return !present[id] })

	seated := make(map[string]bool, len(r.SeatOrder))
	for _, id := range r.SeatOrder {
		seated[id] = true
	}
	for _, p := range r.Players {
		if !seated[p.ID] {
			r.SeatOrder = append(r.SeatOrder, p.ID)
		}
	}
	r.clampOffset()
}

// RemoveSeat removes id and keeps NextStartIndex on the same logical seat.
func (r *Room) RemoveSeat(id string) {
	i := slices.Index(r.SeatOrder, id)
	if i < 0 {
		return
	}
	r.SeatOrder = slices.Delete(r.SeatOrder, i, i+1)
	if i < r.NextStartIndex {
		r.NextStartIndex--
	}
	r.clampOffset()
}

// OrderForNewGame is the seat order rotated left by the start offset.
func (r *Room) OrderForNewGame() []string {
	r.EnsureSeatOrder()
	n := len(r.SeatOrder)
	if n == 0 {
		return nil
	}
	out := make([]string, 0, n)
	out = append(out, r.SeatOrder[r.NextStartIndex:]...)
	out = append(out, r.SeatOrder[:r.NextStartIndex]...)
	return out
}

// AdvanceOffset moves the start seat forward once per completed game.
func (r *Room) AdvanceOffset() {
	if n := len(r.SeatOrder); n > 0 {
		r.NextStartIndex = (r.NextStartIndex + 1) % n
		return
	}
	r.NextStartIndex = 0
}

func (r *Room) clampOffset() {
	n := len(r.SeatOrder)
	if n == 0 {
		r.NextStartIndex = 0
		return
	}
	r.NextStartIndex = ((r.NextStartIndex % n) + n) % n
}
