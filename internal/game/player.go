package game

import "context"

// MaxMoveTokens is the per-move completion budget. Repair calls get a quarter
// of this.
const MaxMoveTokens = 600

// Sender is the model capability a player needs: send two prompts, get free
// text back. No contract on the output format.
type Sender interface {
	Send(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
	ModelName() string
	Temperature() float64
}

// PromptBuilder produces the prompts for a player's turn. The core depends on
// the signature only, never on wording.
type PromptBuilder interface {
	SystemPrompt(p *Player) string
	UserPrompt(p *Player, turn int) string
}

// Player is one competitor: an identity, a model handle, and the cumulative
// state the game mutates every turn. Players are created at game start and
// only flagged dead or winner at game end, never removed.
type Player struct {
	Name       string
	LLM        Sender
	Others     []*Player
	Score      float64
	PriorScore float64
	Series     []float64
	Records    []*TurnRecord
	IsDead     bool
	IsWinner   bool
}

// NewPlayer creates a player with a zeroed score series.
func NewPlayer(name string, llm Sender) *Player {
	return &Player{
		Name:   name,
		LLM:    llm,
		Series: []float64{0},
	}
}

// OtherNames returns the opponent names in their current order.
func (p *Player) OtherNames() []string {
	names := make([]string, len(p.Others))
	for i, o := range p.Others {
		names[i] = o.Name
	}
	return names
}

// Kill marks this player as dead.
func (p *Player) Kill() { p.IsDead = true }
