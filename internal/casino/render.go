package casino

import (
	"fmt"
	"strings"

	"casino-bot/internal/game"
	"casino-bot/internal/store"
)

const buttonPrefix = "blackjack"

// ButtonID builds the custom id carried by a blackjack button.
func ButtonID(action, sessionID string) string {
	return buttonPrefix + ":" + action + ":" + sessionID
}

// ParseButtonID is the inverse of ButtonID.
func ParseButtonID(customID string) (action, sessionID string, ok bool) {
	parts := strings.SplitN(customID, ":", 3)
	if len(parts) != 3 || parts[0] != buttonPrefix {
		return "", "", false
	}
	if parts[1] != "hit" && parts[1] != "stand" {
		return "", "", false
	}
	return parts[1], parts[2], parts[2] != ""
}

func renderBalance(callerID string, acc store.Account) Reply {
	if acc.UserID == callerID {
		return Reply{Content: fmt.Sprintf("💰 Your balance: %d", acc.Balance)}
	}
	return Reply{Content: fmt.Sprintf("💰 <@%s> has %d coins.", acc.UserID, acc.Balance)}
}

func renderSlot(out SlotOutcome) Reply {
	var line string
	switch out.Result.Matches {
	case 3:
		line = fmt.Sprintf("Jackpot! You won %d.", out.Result.Payout)
	case 2:
		line = fmt.Sprintf("Two of a kind. You won %d.", out.Result.Payout)
	default:
		line = fmt.Sprintf("No match. You lost %d.", out.Bet)
	}
	return Reply{Content: fmt.Sprintf("🎰 [ %s ]\n%s Balance: %d", out.Result, line, out.Balance)}
}

func renderBaccarat(out BaccaratOutcome) Reply {
	r := out.Result
	var line string
	if r.Payout > 0 {
		line = fmt.Sprintf("You bet on %s and won %d.", r.Choice, r.Payout)
	} else {
		line = fmt.Sprintf("You bet on %s and lost %d.", r.Choice, out.Bet)
	}
	return Reply{Content: fmt.Sprintf("🀄 Player: %s (%d)\nBanker: %s (%d)\nWinner: %s. %s Balance: %d",
		game.FormatCards(r.Player), r.PlayerValue, game.FormatCards(r.Banker), r.BankerValue, r.Winner, line, out.Balance)}
}

func renderBlackjack(v BlackjackView, update bool) Reply {
	player, _ := game.HandValue(v.Player)
	var b strings.Builder
	fmt.Fprintf(&b, "🃏 Blackjack, bet %d\n", v.Bet)
	if v.Phase == game.PhaseSettled {
		dealer, _ := game.HandValue(v.Dealer)
		fmt.Fprintf(&b, "Dealer: %s (%d)\n", game.FormatCards(v.Dealer), dealer)
	} else {
		fmt.Fprintf(&b, "Dealer: %s ??\n", v.Dealer[0])
	}
	fmt.Fprintf(&b, "You: %s (%d)", game.FormatCards(v.Player), player)

	reply := Reply{Update: update}
	switch v.Outcome {
	case game.OutcomeWin:
		fmt.Fprintf(&b, "\nYou win %d! Balance: %d", v.Payout, v.Balance)
	case game.OutcomePush:
		fmt.Fprintf(&b, "\nPush, your %d is returned. Balance: %d", v.Bet, v.Balance)
	case game.OutcomeLose:
		if player > 21 {
			b.WriteString("\nBust!")
		}
		fmt.Fprintf(&b, "\nYou lose %d. Balance: %d", v.Bet, v.Balance)
	default:
		reply.Buttons = []Button{
			{ID: ButtonID("hit", v.SessionID), Label: "Hit"},
			{ID: ButtonID("stand", v.SessionID), Label: "Stand"},
		}
	}
	reply.Content = b.String()
	return reply
}

func (s *Service) renderRaceEntry(userID string, e RaceEntry) Reply {
	if e.Opened {
		return Reply{Content: fmt.Sprintf("🏇 <@%s> opened a race with %d on horse %d! Place your bets in the next %s.",
			userID, e.Bet, e.Horse, s.cfg.RaceBetWindow)}
	}
	return Reply{Content: fmt.Sprintf("🏇 <@%s> bet %d on horse %d. %d bettor(s) so far.", userID, e.Bet, e.Horse, e.Bettors)}
}

func renderRaceTrack(race *game.Race, bets []raceBet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏁 Tick %d/%d, %d bettor(s)\n```\n%s```", race.Ticks, game.RaceMaxTicks, len(bets), race.Track())
	return b.String()
}

func renderRaceResult(race *game.Race, results []raceResult) string {
	if race.Winner == 0 {
		return "⏱️ No horse finished in time. No winner this race."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 Horse %d wins!", race.Winner)
	paid := 0
	for _, r := range results {
		if r.won > 0 {
			fmt.Fprintf(&b, "\n<@%s> won %d", r.userID, r.won)
			paid++
		}
	}
	if paid == 0 {
		b.WriteString("\nNobody backed the winner.")
	}
	return b.String()
}

func renderRanking(top []store.Account) Reply {
	if len(top) == 0 {
		return Reply{Content: "Nobody has played yet."}
	}
	var b strings.Builder
	b.WriteString("🏆 Richest players")
	for i, acc := range top {
		fmt.Fprintf(&b, "\n%d. <@%s> %d", i+1, acc.UserID, acc.Balance)
	}
	return Reply{Content: b.String()}
}
