package rules

import (
	"github.com/brensch/gridsearch/game"
	"github.com/brensch/gridsearch/search"
)

// DungeonConfig selects which coins must be collected and whether the player
// must finish on the exit.
type DungeonConfig struct {
	// Required is the set of coin indices the player must pick up. Coins
	// outside the set are left on the board and ignored.
	Required game.Coins
	// CollectOnly ends the episode as soon as the last required coin is
	// taken, wherever the player stands.
	CollectOnly bool
}

// DefaultDungeonConfig requires every coin and finishing on the exit.
func DefaultDungeonConfig(l *game.Layout) DungeonConfig {
	return DungeonConfig{Required: l.AllCoins()}
}

// DungeonProblem is the coin collection problem: pick up every required coin,
// then walk to the exit.
type DungeonProblem struct {
	layout *game.Layout
	config DungeonConfig
	cache  *search.Cache
}

func NewDungeonProblem(l *game.Layout) *DungeonProblem {
	return NewDungeonProblemWithConfig(l, DefaultDungeonConfig(l))
}

func NewDungeonProblemWithConfig(l *game.Layout, config DungeonConfig) *DungeonProblem {
	// Coins that do not exist in the layout cannot be collected.
	config.Required &= l.AllCoins()
	return &DungeonProblem{layout: l, config: config, cache: search.NewCache()}
}

func (d *DungeonProblem) Layout() *game.Layout  { return d.layout }
func (d *DungeonProblem) Config() DungeonConfig { return d.config }
func (d *DungeonProblem) Cache() *search.Cache  { return d.cache }

// InitialState places the player on the start tile. A required coin lying
// under the start is collected immediately.
func (d *DungeonProblem) InitialState() game.DungeonState {
	return d.collect(game.DungeonState{Player: d.layout.Start, Remaining: d.config.Required})
}

func (d *DungeonProblem) IsGoal(s game.DungeonState) bool {
	if !s.Remaining.Empty() {
		return false
	}
	return d.config.CollectOnly || s.Player == d.layout.Exit
}

func (d *DungeonProblem) Actions(s game.DungeonState) []game.Direction {
	return LegalMoves(d.layout, s.Player)
}

func (d *DungeonProblem) Successor(s game.DungeonState, move game.Direction) game.DungeonState {
	next := game.DungeonState{Player: NextPoint(d.layout, s.Player, move), Remaining: s.Remaining}
	return d.collect(next)
}

func (d *DungeonProblem) Cost(_, _ game.DungeonState) float64 { return StepCost }

func (d *DungeonProblem) collect(s game.DungeonState) game.DungeonState {
	if i, ok := d.layout.CoinIndex(s.Player); ok && s.Remaining.Has(i) {
		s.Remaining = s.Remaining.Without(i)
	}
	return s
}

var _ search.Problem[game.DungeonState, game.Direction] = (*DungeonProblem)(nil)
