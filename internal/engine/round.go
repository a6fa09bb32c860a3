package engine

import (
	"maps"
	"slices"
	"strings"
	"unicode/utf8"
)

// Ready marks id as ready. Once every active player is ready the first
// round starts.
func (g *Game) Ready(id string) (Outcome, error) {
	var out Outcome
	if err := g.check(ModeRounds, StageReady); err != nil {
		return out, err
	}
	if !g.IsActive(id) {
		return out, ErrNotPlayer
	}
	g.ReadySet[id] = true
	g.checkReady(&out)
	return out, nil
}

func (g *Game) checkReady(out *Outcome) {
	ready := 0
	for _, id := range g.Active {
		if g.ReadySet[id] {
			ready++
		}
	}
	out.emit(PlayersReady{Ready: ready, Total: len(g.Active)})
	if ready == len(g.Active) && ready > 0 {
		out.emit(AllReady{})
		g.startRound(out)
	}
}

func (g *Game) startRound(out *Outcome) {
	if len(g.Active) <= 2 {
		g.finish(out, ReasonLastTwo, g.IsActive(g.ImpostorID))
		return
	}

	g.RoundNumber++
	g.Submissions = map[string]string{}
	g.Votes = map[string]string{}
	g.VoteRound = 0
	g.Eligible = nil

	order := slices.DeleteFunc(slices.Clone(g.TurnOrder), func(id string) bool { return !g.IsActive(id) })
	if len(order) == 0 {
		order = slices.Clone(g.Active)
	}
	g.TurnOrder = order
	g.Stage = StageSubmit
	g.SpeakIndex = 0

	out.emit(RoundStarted{
		Round:            g.RoundNumber,
		Order:            slices.Clone(g.TurnOrder),
		CurrentSpeakerID: g.TurnOrder[0],
		Active:           slices.Clone(g.Active),
	})
}

// Submit records the current speaker's clue and advances the turn.
func (g *Game) Submit(id, text string) (Outcome, error) {
	var out Outcome
	if err := g.check(ModeRounds, StageSubmit); err != nil {
		return out, err
	}
	if !g.IsActive(id) {
		return out, ErrNotPlayer
	}
	if g.CurrentSpeaker() != id {
		return out, ErrNotYourTurn
	}
	clue := g.normalizeClue(text)
	if clue == "" {
		return out, ErrEmptyClue
	}

	g.Submissions[id] = clue
	g.SpeakIndex++
	g.advanceSpeaker(&out)
	return out, nil
}

func (g *Game) normalizeClue(text string) string {
	clue := strings.TrimSpace(text)
	if utf8.RuneCountInString(clue) > g.MaxClueLength {
		clue = strings.TrimSpace(string([]rune(clue)[:g.MaxClueLength]))
	}
	return clue
}

func (g *Game) advanceSpeaker(out *Outcome) {
	if g.SpeakIndex >= len(g.TurnOrder) {
		g.openVoting(out, slices.Clone(g.Active))
		return
	}
	out.emit(SubmissionProgress{
		Submissions:      maps.Clone(g.Submissions),
		CurrentSpeakerID: g.TurnOrder[g.SpeakIndex],
	})
}

func (g *Game) openVoting(out *Outcome, eligible []string) {
	g.Stage = StageVote
	g.Votes = map[string]string{}
	g.VoteRound++
	g.Eligible = eligible
	out.emit(VotingStarted{
		Round:       g.RoundNumber,
		VoteRound:   g.VoteRound,
		Eligible:    slices.Clone(g.Eligible),
		Active:      slices.Clone(g.Active),
		Submissions: maps.Clone(g.Submissions),
	})
}

// Vote records voter's choice; a repeat vote replaces the previous one.
// The tally runs once every active player has voted.
func (g *Game) Vote(voter, target string) (Outcome, error) {
	var out Outcome
	if err := g.check(ModeRounds, StageVote); err != nil {
		return out, err
	}
	if !g.IsActive(voter) {
		return out, ErrEliminated
	}
	if !slices.Contains(g.Eligible, target) {
		return out, ErrInvalidTarget
	}
	g.Votes[voter] = target
	g.checkVotes(&out)
	return out, nil
}

func (g *Game) checkVotes(out *Outcome) {
	if len(g.Votes) >= len(g.Active) {
		g.tally(out)
		return
	}
	out.emit(VoteProgress{VotesCast: len(g.Votes), Total: len(g.Active)})
}

func (g *Game) tally(out *Outcome) {
	counts := map[string]int{}
	for _, target := range g.Votes {
		if slices.Contains(g.Eligible, target) {
			counts[target]++
		}
	}
	if len(counts) == 0 {
		out.emit(NoElimination{Reason: ReasonNoVotes})
		g.startRound(out)
		return
	}

	top := 0
	for _, n := range counts {
		top = max(top, n)
	}
	var leaders []string
	for _, id := range g.Eligible {
		if counts[id] == top {
			leaders = append(leaders, id)
		}
	}

	if len(leaders) > 1 {
		if g.VoteRound < 2 {
			g.openVoting(out, leaders)
			return
		}
		out.emit(NoElimination{Reason: ReasonTieTwice, Tied: leaders})
		g.startRound(out)
		return
	}

	eliminated := leaders[0]
	g.Active = without(g.Active, eliminated)
	wasImpostor := eliminated == g.ImpostorID
	out.emit(VotingResult{EliminatedID: eliminated, WasImpostor: wasImpostor, Counts: counts})

	switch {
	case wasImpostor:
		g.finish(out, ReasonImpostorCaught, false)
	case len(g.Active) <= 2:
		g.finish(out, ReasonLastTwo, g.IsActive(g.ImpostorID))
	default:
		g.Stage = StageReveal
		out.Pause = true
	}
}

// Resume leaves the reveal stage and starts the next round.
func (g *Game) Resume() (Outcome, error) {
	var out Outcome
	if err := g.check(ModeRounds, StageReveal); err != nil {
		return out, err
	}
	g.startRound(&out)
	return out, nil
}

// RemovePlayer prunes a departed player and keeps the game moving. A
// departing speaker is skipped and a departing voter shrinks the quorum.
func (g *Game) RemovePlayer(id string) Outcome {
	var out Outcome
	if g.Over() {
		return out
	}
	if g.Mode == ModeReveal {
		g.removeFromReveal(id, &out)
		return out
	}
	if !g.IsActive(id) {
		return out
	}

	wasSpeaker := g.CurrentSpeaker() == id
	g.Active = without(g.Active, id)
	if i := slices.Index(g.TurnOrder, id); i >= 0 {
		g.TurnOrder = slices.Delete(g.TurnOrder, i, i+1)
		if i < g.SpeakIndex {
			g.SpeakIndex--
		}
	}
	g.Eligible = without(g.Eligible, id)
	delete(g.ReadySet, id)
	delete(g.Submissions, id)
	delete(g.Votes, id)
	for voter, target := range g.Votes {
		if target == id {
			delete(g.Votes, voter)
		}
	}

	if id == g.ImpostorID {
		g.finish(&out, ReasonImpostorLeft, false)
		return out
	}
	if len(g.Active) <= 2 {
		g.finish(&out, ReasonLastTwo, g.IsActive(g.ImpostorID))
		return out
	}

	switch g.Stage {
	case StageReady:
		g.checkReady(&out)
	case StageSubmit:
		if wasSpeaker {
			g.advanceSpeaker(&out)
		}
	case StageVote:
		if len(g.Eligible) == 0 {
			// Every tied candidate left; vote again among everyone still in.
			g.VoteRound = 0
			g.openVoting(&out, slices.Clone(g.Active))
			break
		}
		g.checkVotes(&out)
	}
	return out
}

func (g *Game) check(mode Mode, stage Stage) error {
	if g.Mode != mode {
		return ErrWrongMode
	}
	if g.Stage != stage {
		return ErrWrongPhase
	}
	return nil
}
