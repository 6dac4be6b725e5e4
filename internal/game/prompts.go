package game

import (
	"fmt"
	"strings"
)

// Prompts is the default PromptBuilder: it explains the contest, embeds the
// required JSON shape, and recaps the player's own history on later turns.
type Prompts struct {
	MessagingEnabled bool
}

func roleHint(name string) string {
	switch name {
	case "Vanilla":
		return "You serve as the naive baseline: adopt low-level reasoning and keep responses simple."
	case "Strategic":
		return "You serve as the strategic thinker: apply multi-step k-level reasoning when forming your guess."
	case "Agressor":
		return "You serve as the agressor: push offensive, high guesses to pressure the field."
	}
	return ""
}

// SystemPrompt explains the Keynes Beauty Contest rules and response format.
func (pr Prompts) SystemPrompt(p *Player) string {
	otherNames := p.OtherNames()
	othersBullet := "- (no opponents)"
	if len(otherNames) > 0 {
		bullets := make([]string, len(otherNames))
		for i, n := range otherNames {
			bullets[i] = "- " + n
		}
		othersBullet = strings.Join(bullets, "\n")
	}

	response := fmt.Sprintf(`You are competing in a repeated Keynes Beauty Contest.

Your name is %s.
There are %d other players:
%s

Each round every player chooses a number between 0 and 100 (decimals allowed).
After all guesses are collected, compute the average of those guesses and multiply it by 0.7.
This value is the TARGET. Players whose guesses are closest to the target earn the most points,
with points decreasing as the distance grows. The contest runs for 10 rounds or until a human ends it early.

You must always respond with a SINGLE JSON object and nothing else. The JSON must use exactly these keys:

{
  "secret strategy": "Describe your private reasoning and plan; opponents never see this.",
  "inner_thoughts": {
    "prediction": "State your prediction for the target or opponents' behaviour.",
    "why": "Concise justification for that prediction."
  },
  "guess": "Numeric guess between 0 and 100 inclusive (floats allowed).",
  "public message": "Optional short message you are willing to share publicly."
}

No additional keys or narration are permitted. Think strategically about iterated reasoning,
anticipate how others will adjust, and choose the guess that maximizes your expected score.
`, p.Name, len(otherNames), othersBullet)

	if hint := roleHint(p.Name); hint != "" {
		response += "\n" + hint + "\n"
	}
	return response
}

// UserPrompt builds the per-turn prompt: a fresh introduction on turn one,
// otherwise the full recap of the player's previous turns plus standings.
func (pr Prompts) UserPrompt(p *Player, turn int) string {
	if turn == 1 {
		return pr.firstTurn(p)
	}
	return pr.laterTurn(p, turn)
}

func describePlayers(otherNames []string) string {
	switch {
	case len(otherNames) == 1:
		return fmt.Sprintf("There is exactly 1 other player: %s.", otherNames[0])
	case len(otherNames) > 1:
		return fmt.Sprintf("The other players are %s.", strings.Join(otherNames, ", "))
	}
	return "There are no other players."
}

func (pr Prompts) instructionBlock(name string) string {
	lines := []string{
		"INSTRUCTIONS:",
		"- Output ONLY valid JSON (no commentary, no markdown).",
		"- Use exactly these keys: 'secret strategy', 'inner_thoughts', 'guess', 'public message'.",
		"- 'guess' must be a number between 0 and 100 inclusive. Decimals are allowed if justified.",
		"- 'inner_thoughts' must be an object containing a 'prediction' of what you expect the TARGET to be (or how opponents will guess) and a concise 'why'.",
	}
	if pr.MessagingEnabled {
		lines = append(lines, "- 'public message' is optional; use an empty string if you do not wish to broadcast anything.")
	} else {
		lines = append(lines, "- Public messaging is disabled this game; always use an empty string for 'public message'.")
	}
	lines = append(lines, "- Remember: the target each round is p * (average guess) with p = 0.7. Aim your guess to be closest to that target.")
	switch name {
	case "Vanilla":
		lines = append(lines, "- Vanilla focus: follow a naive, low-level strategy. Take others at face value and choose the simplest justified response.")
	case "Agressor":
		lines = append(lines, "- Agressor focus: play the most offensive strategy. Push the average upward, favour high guesses, and keep pressure on every round.")
	default:
		lines = append(lines, "- Strategic focus: employ explicit k-level reasoning. Forecast iterative adjustments and document your level-k rationale.")
	}
	return strings.Join(lines, "\n")
}

func exampleShape(guess int) string {
	return fmt.Sprintf(`Return JSON exactly in this shape (example):
{
  "secret strategy": "Outline the private reasoning steps you'll follow",
  "inner_thoughts": {
    "prediction": "I expect the target to land near 35",
    "why": "Players often converge near 0.7 times a mid-range guess; I expect mild level-k adjustments"
  },
  "guess": %d,
  "public message": "Announcing a calm rationale builds credibility."
}`, guess)
}

func (pr Prompts) firstTurn(p *Player) string {
	otherNames := p.OtherNames()
	exampleGuess := 0
	if len(otherNames) > 0 {
		exampleGuess = 35
	}
	if p.Name == "Agressor" {
		exampleGuess = 95
	}
	return fmt.Sprintf(`Your player name is %s. %s

Game: Keynes Beauty Contest. Each round every player guesses a number between 0 and 100.
After all guesses, compute the average and multiply by 0.7. Whoever is closest to that target earns more points.

You currently have a total score of %.2f.

%s

%s`, p.Name, describePlayers(otherNames), p.Score, pr.instructionBlock(p.Name), exampleShape(exampleGuess))
}

func (pr Prompts) laterTurn(p *Player, turn int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your player name is %s. %s", p.Name, describePlayers(p.OtherNames()))
	b.WriteString("\nRECENT HISTORY:\n")
	if len(p.Records) > 0 {
		for _, rec := range p.Records {
			b.WriteString(rec.Recap() + "\n")
		}
	} else {
		b.WriteString("(No previous rounds yet.)\n")
	}

	fmt.Fprintf(&b, "Current turn: %d.\nYour cumulative score: %.2f.\nOpponents hold these scores:\n", turn, p.Score)
	for _, other := range p.Others {
		fmt.Fprintf(&b, "- %s: %.2f\n", other.Name, other.Score)
	}

	b.WriteString("\nRemember: target = 0.7 * average(all guesses). Closest guess earns the biggest gain.\n\n")
	b.WriteString(pr.instructionBlock(p.Name) + "\n\n")
	b.WriteString(exampleShape(30))
	return b.String()
}
