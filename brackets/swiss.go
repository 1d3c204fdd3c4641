package brackets

import "context"

// defaultSearchBudget caps the number of backtracking steps for a single round.
const defaultSearchBudget = 200000

// SwissGenerator pairs rounds after the first by current standings.
type SwissGenerator struct {
	budget int
}

func NewSwissGenerator() PairingGenerator {
	return &SwissGenerator{budget: defaultSearchBudget}
}

func (g *SwissGenerator) GetName() string {
	return "Swiss"
}

// GeneratePairings expects params.Competitors in standings order, best first.
//
// With an odd field the bye goes to the lowest ranked competitor among those with the fewest
// byes. The rest are paired top-down, each competitor taking the nearest ranked opponent they
// have not met yet; dead ends are resolved by backtracking. When no rematch-free pairing exists
// the search is repeated allowing 1, 2, ... rematches, so the round repeats as few pairings as
// possible. Plain rank order is used only if the search budget runs out.
func (g *SwissGenerator) GeneratePairings(ctx context.Context, params GeneratePairingsParams) ([]Pairing, error) {
	field := params.Competitors
	if len(field) < 2 {
		return nil, ErrNotEnoughCompetitors
	}

	s := &swissSearch{ctx: ctx, field: field, budget: g.budget}

	skips := []int{-1}
	if len(field)%2 == 1 {
		skips = byeCandidates(field)
	}

	for allowed := 0; allowed <= len(field)/2; allowed++ {
		for _, skip := range skips {
			if pairs, ok := s.solve(skip, allowed); ok {
				if skip >= 0 {
					pairs = append(pairs, newBye(field[skip].UserID))
				}
				return pairs, nil
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if s.budget <= 0 {
				return rankOrder(field, skips[0]), nil
			}
		}
	}
	// Unreachable: with every pair allowed as a rematch a pairing always exists.
	return rankOrder(field, skips[0]), nil
}

// byeCandidates lists indexes of competitors with the fewest byes, lowest ranked first.
func byeCandidates(field []Competitor) []int {
	fewest := field[0].Byes
	for _, c := range field[1:] {
		fewest = min(fewest, c.Byes)
	}
	var out []int
	for i := len(field) - 1; i >= 0; i-- {
		if field[i].Byes == fewest {
			out = append(out, i)
		}
	}
	return out
}

func rankOrder(field []Competitor, skip int) []Pairing {
	ids := make([]int, 0, len(field))
	for i, c := range field {
		if i != skip {
			ids = append(ids, c.UserID)
		}
	}
	pairs := pairSequential(ids)
	if skip >= 0 {
		pairs = append(pairs, newBye(field[skip].UserID))
	}
	return pairs
}

type swissSearch struct {
	ctx       context.Context
	field     []Competitor
	budget    int
	used      []bool
	pairs     []Pairing
	rematches int
	allowed   int
}

// solve looks for a pairing of everyone but skip with at most allowed rematches.
func (s *swissSearch) solve(skip, allowed int) ([]Pairing, bool) {
	s.used = make([]bool, len(s.field))
	s.pairs = s.pairs[:0]
	s.rematches = 0
	s.allowed = allowed
	if skip >= 0 {
		s.used[skip] = true
	}
	if !s.extend() {
		return nil, false
	}
	out := make([]Pairing, len(s.pairs))
	copy(out, s.pairs)
	return out, true
}

func (s *swissSearch) extend() bool {
	top := -1
	for i, u := range s.used {
		if !u {
			top = i
			break
		}
	}
	if top < 0 {
		return true
	}

	s.used[top] = true
	for j := top + 1; j < len(s.field); j++ {
		if s.used[j] {
			continue
		}
		rematch := s.field[top].HasPlayed(s.field[j].UserID)
		if rematch && s.rematches >= s.allowed {
			continue
		}
		s.budget--
		if s.budget <= 0 || s.ctx.Err() != nil {
			break
		}
		s.used[j] = true
		if rematch {
			s.rematches++
		}
		s.pairs = append(s.pairs, newPair(s.field[top].UserID, s.field[j].UserID))
		if s.extend() {
			return true
		}
		s.pairs = s.pairs[:len(s.pairs)-1]
		if rematch {
			s.rematches--
		}
		s.used[j] = false
	}
	s.used[top] = false
	return false
}
