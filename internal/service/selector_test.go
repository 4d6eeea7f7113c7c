package service

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/expertpanel/draw-service/internal/apperrors"
	"github.com/expertpanel/draw-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeExperts(n int) []domain.Expert {
	experts := make([]domain.Expert, n)
	for i := range experts {
		experts[i] = domain.Expert{
			ID:   int64(i + 1),
			Name: fmt.Sprintf("expert-%d", i+1),
		}
	}
	return experts
}

func TestSelector_Pick(t *testing.T) {
	testCases := []struct {
		name          string
		poolSize      int
		totalNeeded   int
		method        string
		expectedError error
	}{
		{
			name:        "random takes requested count",
			poolSize:    10,
			totalNeeded: 4,
			method:      domain.DrawMethodRandom,
		},
		{
			name:        "random takes whole pool",
			poolSize:    5,
			totalNeeded: 5,
			method:      domain.DrawMethodRandom,
		},
		{
			name:        "lottery takes requested count",
			poolSize:    10,
			totalNeeded: 4,
			method:      domain.DrawMethodLottery,
		},
		{
			name:        "lottery takes whole pool",
			poolSize:    3,
			totalNeeded: 3,
			method:      domain.DrawMethodLottery,
		},
		{
			name:          "unsupported method",
			poolSize:      10,
			totalNeeded:   2,
			method:        "weighted",
			expectedError: apperrors.ErrValidation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			selector := NewSelector(rand.New(rand.NewSource(42)))
			pool := makeExperts(tc.poolSize)

			picked, err := selector.Pick(pool, tc.totalNeeded, tc.method)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
			require.Len(t, picked, tc.totalNeeded)

			seen := make(map[int64]struct{}, len(picked))
			for _, expert := range picked {
				_, duplicate := seen[expert.ID]
				assert.False(t, duplicate, "expert %d picked twice", expert.ID)
				seen[expert.ID] = struct{}{}
			}
		})
	}
}

func TestSelector_Pick_DeterministicUnderSeed(t *testing.T) {
	pool := makeExperts(20)

	for _, method := range []string{domain.DrawMethodRandom, domain.DrawMethodLottery} {
		t.Run(method, func(t *testing.T) {
			first, err := NewSelector(rand.New(rand.NewSource(7))).Pick(pool, 6, method)
			require.NoError(t, err)

			second, err := NewSelector(rand.New(rand.NewSource(7))).Pick(pool, 6, method)
			require.NoError(t, err)

			assert.Equal(t, first, second)
		})
	}
}

func TestSelector_Pick_DoesNotMutatePool(t *testing.T) {
	pool := makeExperts(10)
	original := make([]domain.Expert, len(pool))
	copy(original, pool)

	_, err := NewSelector(rand.New(rand.NewSource(1))).Pick(pool, 5, domain.DrawMethodRandom)
	require.NoError(t, err)

	assert.Equal(t, original, pool)
}

func TestSelector_Pick_UnsupportedMethodNamesIt(t *testing.T) {
	_, err := NewSelector(rand.New(rand.NewSource(1))).Pick(makeExperts(3), 1, "coin flip")

	var methodErr *apperrors.UnsupportedDrawMethodError
	require.ErrorAs(t, err, &methodErr)
	assert.Equal(t, "coin flip", methodErr.Method)
}
