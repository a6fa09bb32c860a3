package engine

import "slices"

// NewReveal creates a game in reveal mode: players look at their role one
// at a time in room order and the host resolves the outcome.
func NewReveal(order []string, word, impostorID string) *Game {
	return &Game{
		Mode:       ModeReveal,
		Word:       word,
		ImpostorID: impostorID,
		Active:     slices.Clone(order),
		Order:      slices.Clone(order),
		Stage:      StageSubmit,
	}
}

// Turn reports the current reveal pointer.
func (g *Game) Turn() TurnChanged {
	t := TurnChanged{Index: g.TurnIndex, Ready: g.TurnIndex >= len(g.Order)}
	if !t.Ready {
		t.CurrentID = g.Order[g.TurnIndex]
	}
	return t
}

// NextTurn passes the reveal pointer on. Only the player holding it may
// call it.
func (g *Game) NextTurn(id string) (Outcome, error) {
	var out Outcome
	if g.Mode != ModeReveal {
		return out, ErrWrongMode
	}
	if g.Over() || g.TurnIndex >= len(g.Order) {
		return out, ErrWrongPhase
	}
	if g.Order[g.TurnIndex] != id {
		return out, ErrNotYourTurn
	}
	g.TurnIndex++
	out.emit(g.Turn())
	return out, nil
}

func (g *Game) removeFromReveal(id string, out *Outcome) {
	i := slices.Index(g.Order, id)
	if i < 0 {
		return
	}
	g.Order = slices.Delete(g.Order, i, i+1)
	g.Active = without(g.Active, id)
	if id == g.ImpostorID {
		g.finish(out, ReasonImpostorLeft, false)
		return
	}
	if i < g.TurnIndex {
		g.TurnIndex--
	}
	out.emit(g.Turn())
}
