package service

import (
	"math/rand"
	"sort"

	"github.com/expertpanel/draw-service/internal/apperrors"
	"github.com/expertpanel/draw-service/internal/domain"
)

// Picker produces an ordered, method-specific selection from a candidate
// pool.
type Picker interface {
	Pick(candidates []domain.Expert, totalNeeded int, method string) ([]domain.Expert, error)
}

// Selector implements the supported draw methods on an explicit random
// source, so selections are reproducible under a seeded source in tests.
type Selector struct {
	rnd *rand.Rand
}

func NewSelector(rnd *rand.Rand) *Selector {
	return &Selector{rnd: rnd}
}

// Pick returns exactly totalNeeded distinct experts in selection order.
// The caller guarantees len(candidates) >= totalNeeded.
func (s *Selector) Pick(candidates []domain.Expert, totalNeeded int, method string) ([]domain.Expert, error) {
	switch method {
	case domain.DrawMethodRandom:
		return s.pickRandom(candidates, totalNeeded), nil
	case domain.DrawMethodLottery:
		return s.pickLottery(candidates, totalNeeded), nil
	default:
		return nil, &apperrors.UnsupportedDrawMethodError{Method: method}
	}
}

// pickRandom samples without replacement by shuffling a prefix in place on
// a copy of the pool.
func (s *Selector) pickRandom(candidates []domain.Expert, totalNeeded int) []domain.Expert {
	pool := make([]domain.Expert, len(candidates))
	copy(pool, candidates)

	picked := make([]domain.Expert, totalNeeded)
	for i := 0; i < totalNeeded; i++ {
		idx := s.rnd.Intn(len(pool)-i) + i
		pool[i], pool[idx] = pool[idx], pool[i]
		picked[i] = pool[i]
	}

	return picked
}

// pickLottery assigns every candidate an independent uniform ticket,
// stable-sorts ascending and takes the prefix. Behaviorally equivalent to
// uniform sampling, but each pick is re-derivable from its ticket value.
func (s *Selector) pickLottery(candidates []domain.Expert, totalNeeded int) []domain.Expert {
	type ticket struct {
		value  float64
		expert domain.Expert
	}

	tickets := make([]ticket, len(candidates))
	for i, candidate := range candidates {
		tickets[i] = ticket{value: s.rnd.Float64(), expert: candidate}
	}

	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].value < tickets[j].value
	})

	picked := make([]domain.Expert, totalNeeded)
	for i := 0; i < totalNeeded; i++ {
		picked[i] = tickets[i].expert
	}

	return picked
}
