package game

import (
	"context"
	"fmt"
)

const requiredShape = "'secret strategy', 'inner_thoughts' (with 'prediction' and 'why'), 'guess', 'public message'"

// repairResponse tries to recover a usable reply after a parse failure.
// First the originating player is asked to reformat its own output on a
// quarter of the normal token budget. Only if that call itself fails (a
// transport error, not a still-broken reply) do we fall back to asking the
// other players, one by one, to reformat the original text. The first reply
// that comes back wins; whether it parses is the caller's problem.
//
// The peer fallback deliberately shows rivals the failing player's raw
// private reasoning. That is inherited behavior, kept on purpose; see the
// design notes.
func (r *Referee) repairResponse(ctx context.Context, p *Player, original string) (string, error) {
	repairUser := fmt.Sprintf(`
Your previous response could not be parsed as valid JSON for this Keynes Beauty Contest turn.
Here is what you returned:

%s

Return ONLY one JSON object with exactly these keys: %s.
- 'guess' must be a number between 0 and 100.
- 'inner_thoughts' must contain 'prediction' and 'why'.
Do NOT add explanatory text before or after the JSON object.
`, original, requiredShape)

	repaired, err := p.LLM.Send(ctx, r.prompts.SystemPrompt(p), repairUser, MaxMoveTokens/4)
	if err == nil {
		return repaired, nil
	}
	firstErr := err

	helperPrompt := fmt.Sprintf(`
Another player produced an output that could not be parsed as JSON.
Please reformat the following text into a single valid JSON object with the keys:
%s.

%s

Return ONLY the JSON object.
`, requiredShape, original)

	for _, helper := range r.players {
		if helper.Name == p.Name {
			continue
		}
		repaired, err := helper.LLM.Send(ctx, r.prompts.SystemPrompt(helper), helperPrompt, MaxMoveTokens/4)
		if err == nil {
			return repaired, nil
		}
	}
	return "", fmt.Errorf("game: repair exhausted for %s: %w", p.Name, firstErr)
}
