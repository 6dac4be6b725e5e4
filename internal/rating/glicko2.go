// Package rating implements the Glicko-2 skill rating used by the cross-game
// leaderboard. Each finished game is treated as one rating period; ranks are
// mapped to pairwise win/loss/tie scores.
package rating

import "math"

const (
	scale      = 173.7178 // rating scale between r <-> mu
	defaultR   = 1500.0
	defaultRD  = 350.0
	defaultVol = 0.06
	epsilon    = 1e-6
)

// DefaultTau bounds volatility change per period. 0.5 is the paper's typical
// value.
const DefaultTau = 0.5

// Rating holds public "1500-scale" values, not the internal mu/phi.
type Rating struct {
	R          float64
	RD         float64
	Volatility float64
	Games      int
}

// New returns a fresh rating at the standard defaults.
func New() *Rating {
	return &Rating{R: defaultR, RD: defaultRD, Volatility: defaultVol}
}

// Snapshot returns a copy, used for start-of-period opponent values.
func (r *Rating) Snapshot() Rating { return *r }

// Conservative is the single leaderboard number: rating minus three rating
// deviations, so uncertain ratings rank low until proven.
func (r *Rating) Conservative() float64 { return r.R - 3*r.RD }

// Outcome is one opponent faced during a rating period, with S in [0,1]:
// 1 win, 0 loss, 0.5 tie.
type Outcome struct {
	Opp Rating
	S   float64
}

func toMuPhi(r, rd float64) (mu, phi float64)   { return (r - defaultR) / scale, rd / scale }
func fromMuPhi(mu, phi float64) (r, rd float64) { return mu*scale + defaultR, phi * scale }

func g(phi float64) float64 {
	return 1.0 / math.Sqrt(1.0+3.0*phi*phi/(math.Pi*math.Pi))
}

func e(mu, muj, phij float64) float64 {
	return 1.0 / (1.0 + math.Exp(-g(phij)*(mu-muj)))
}

// Age applies the no-games step for a period: RD grows with volatility while
// the rating stays put.
func (r *Rating) Age() {
	mu, phi := toMuPhi(r.R, r.RD)
	phiStar := math.Sqrt(phi*phi + r.Volatility*r.Volatility)
	r.R, r.RD = fromMuPhi(mu, phiStar)
	r.Games++
}

// Update applies the canonical Glicko-2 rating-period update against all
// opponents faced in the period. Opponent values must be start-of-period
// snapshots.
func (r *Rating) Update(results []Outcome, tau float64) {
	if len(results) == 0 {
		r.Age()
		return
	}

	mu, phi := toMuPhi(r.R, r.RD)

	var vInv, deltaSum float64
	for _, res := range results {
		muJ, phiJ := toMuPhi(res.Opp.R, res.Opp.RD)
		gJ := g(phiJ)
		eJ := e(mu, muJ, phiJ)
		vInv += gJ * gJ * eJ * (1 - eJ)
		deltaSum += gJ * (res.S - eJ)
	}
	v := 1.0 / vInv
	delta := v * deltaSum

	sigmaPrime := r.solveVolatility(phi, v, delta, tau)

	phiStar := math.Sqrt(phi*phi + sigmaPrime*sigmaPrime)
	phiPrime := 1.0 / math.Sqrt(1.0/(phiStar*phiStar)+1.0/v)
	muPrime := mu + phiPrime*phiPrime*deltaSum

	r.R, r.RD = fromMuPhi(muPrime, phiPrime)
	r.Volatility = sigmaPrime
	r.Games++
}

// solveVolatility is the iterative procedure from the Glicko-2 paper
// (Illinois variant of regula falsi).
func (r *Rating) solveVolatility(phi, v, delta, tau float64) float64 {
	a := math.Log(r.Volatility * r.Volatility)
	f := func(x float64) float64 {
		ex := math.Exp(x)
		num := ex * (delta*delta - phi*phi - v - ex)
		den := 2.0 * (phi*phi + v + ex) * (phi*phi + v + ex)
		return num/den - (x-a)/(tau*tau)
	}

	A := a
	var B float64
	if delta*delta > phi*phi+v {
		B = math.Log(delta*delta - phi*phi - v)
	} else {
		k := 1.0
		for f(a-k*tau) < 0 {
			k++
		}
		B = a - k*tau
	}

	fA, fB := f(A), f(B)
	for math.Abs(B-A) > epsilon {
		C := A + (A-B)*fA/(fB-fA)
		fC := f(C)
		if fC*fB <= 0 {
			A, fA = B, fB
		} else {
			fA /= 2
		}
		B, fB = C, fC
	}
	return math.Exp(A / 2)
}
