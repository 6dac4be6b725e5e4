package game

import (
	"strings"
	"testing"
)

func threeLinkedPlayers() []*Player {
	players := []*Player{
		newTestPlayer("Vanilla", reply{text: validMove(50)}),
		newTestPlayer("Strategic", reply{text: validMove(33)}),
		newTestPlayer("Agressor", reply{text: validMove(90)}),
	}
	linkOpponents(players)
	return players
}

func TestSystemPromptIdentity(t *testing.T) {
	players := threeLinkedPlayers()
	pr := Prompts{MessagingEnabled: true}

	sys := pr.SystemPrompt(players[0])
	for _, want := range []string{
		"Your name is Vanilla",
		"2 other players",
		"- Strategic",
		"- Agressor",
		"secret strategy",
		"inner_thoughts",
		"public message",
		"multiply it by 0.7",
	} {
		if !strings.Contains(sys, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}

func TestSystemPromptRoleHints(t *testing.T) {
	players := threeLinkedPlayers()
	pr := Prompts{MessagingEnabled: true}

	tests := []struct {
		player *Player
		hint   string
	}{
		{players[0], "naive baseline"},
		{players[1], "strategic thinker"},
		{players[2], "agressor"},
	}
	for _, tt := range tests {
		if !strings.Contains(pr.SystemPrompt(tt.player), tt.hint) {
			t.Errorf("%s: system prompt missing role hint %q", tt.player.Name, tt.hint)
		}
	}

	// Unknown names get no hint block beyond the shared rules.
	outsider := newTestPlayer("Wildcard", reply{text: validMove(1)})
	if strings.Contains(pr.SystemPrompt(outsider), "You serve as") {
		t.Error("unknown player must not receive a role hint")
	}
}

func TestFirstTurnExampleGuess(t *testing.T) {
	players := threeLinkedPlayers()
	pr := Prompts{MessagingEnabled: true}

	if !strings.Contains(pr.UserPrompt(players[0], 1), `"guess": 35`) {
		t.Error("default first-turn example guess should be 35")
	}
	if !strings.Contains(pr.UserPrompt(players[2], 1), `"guess": 95`) {
		t.Error("agressor first-turn example guess should be 95")
	}
}

func TestLaterTurnRecapsHistory(t *testing.T) {
	players := threeLinkedPlayers()
	p := players[0]
	rec := newRecord(p.Name, 1)
	rec.attachMove(Move{Strategy: "sneak low", Guess: 25})
	target, post := 28.0, 97.0
	rec.TargetValue = &target
	rec.PostScore = &post
	p.Records = append(p.Records, rec)
	p.Score = 97
	players[1].Score = 80

	pr := Prompts{MessagingEnabled: true}
	user := pr.UserPrompt(p, 2)
	for _, want := range []string{
		"Recap of Turn 1",
		"sneak low",
		"Current turn: 2.",
		"Your cumulative score: 97.00",
		"- Strategic: 80.00",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("later-turn prompt missing %q", want)
		}
	}
}

func TestMessagingDisabledInstruction(t *testing.T) {
	players := threeLinkedPlayers()
	pr := Prompts{MessagingEnabled: false}
	user := pr.UserPrompt(players[0], 1)
	if !strings.Contains(user, "Public messaging is disabled") {
		t.Error("disabled messaging must be spelled out in the instructions")
	}

	enabled := Prompts{MessagingEnabled: true}
	if strings.Contains(enabled.UserPrompt(players[0], 1), "Public messaging is disabled") {
		t.Error("enabled messaging must not carry the disabled instruction")
	}
}
