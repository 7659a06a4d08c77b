package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosine_Identity(t *testing.T) {
	a := []float32{0.1, 0.5, 0.3, 0.8}

	sim, err := Cosine(a, a)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-9)
}

func TestCosine_ZeroVector(t *testing.T) {
	a := []float32{0.1, 0.5, 0.3}
	zero := []float32{0, 0, 0}

	sim, err := Cosine(a, zero)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sim)

	sim, err = Cosine(zero, zero)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sim)
}

func TestCosine_EmptyVector(t *testing.T) {
	sim, err := Cosine(nil, []float32{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 0.0, sim)

	sim, err = Cosine([]float32{1, 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sim)
}

func TestCosine_Commutative(t *testing.T) {
	a := []float32{0.2, 0.9, 0.4}
	b := []float32{0.7, 0.1, 0.6}

	ab, err := Cosine(a, b)
	require.NoError(t, err)
	ba, err := Cosine(b, a)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
}

func TestCosine_DimensionMismatch(t *testing.T) {
	_, err := Cosine([]float32{1, 2, 3}, []float32{1, 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestCosine_Orthogonal(t *testing.T) {
	sim, err := Cosine([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sim, 1e-9)
}

func TestCosine_ClampsNegative(t *testing.T) {
	// 相反方向的向量余弦为-1，收敛到0
	sim, err := Cosine([]float32{1, 0}, []float32{-1, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, sim)
}

func TestFindBestMatch_EmptyCandidates(t *testing.T) {
	_, ok, err := FindBestMatch([]float32{1, 0}, nil, 0.85)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindBestMatch_BelowThreshold(t *testing.T) {
	candidates := []Candidate{
		{ID: 1, Vector: []float32{0, 1}},
	}

	// 正交向量相似度0，低于阈值
	_, ok, err := FindBestMatch([]float32{1, 0}, candidates, 0.85)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindBestMatch_SingleWinner(t *testing.T) {
	query := []float32{1, 0}
	candidates := []Candidate{
		{ID: 1, Vector: []float32{0.9, 0.4358899}}, // 相似度约0.9
		{ID: 2, Vector: []float32{0.5, 0.8660254}}, // 相似度约0.5
	}

	id, ok, err := FindBestMatch(query, candidates, 0.85)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint(1), id)
}

func TestFindBestMatch_FirstSeenWinsTies(t *testing.T) {
	query := []float32{1, 0}
	candidates := []Candidate{
		{ID: 3, Vector: []float32{1, 0}},
		{ID: 7, Vector: []float32{1, 0}},
	}

	id, ok, err := FindBestMatch(query, candidates, 0.85)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint(3), id)
}

func TestFindBestMatch_SkipsCandidatesWithoutVector(t *testing.T) {
	query := []float32{1, 0}
	candidates := []Candidate{
		{ID: 1, Vector: nil},
		{ID: 2, Vector: []float32{0, 0}},
		{ID: 3, Vector: []float32{1, 0}},
	}

	id, ok, err := FindBestMatch(query, candidates, 0.85)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint(3), id)
}

func TestFindBestMatch_SentinelQueryNeverMatches(t *testing.T) {
	candidates := []Candidate{
		{ID: 1, Vector: []float32{1, 0}},
	}

	// 零向量查询在任何阈值下都不应命中
	_, ok, err := FindBestMatch([]float32{0, 0}, candidates, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindBestMatch_DimensionMismatchFailsLoudly(t *testing.T) {
	candidates := []Candidate{
		{ID: 1, Vector: []float32{1, 0, 0}},
	}

	_, _, err := FindBestMatch([]float32{1, 0}, candidates, 0.85)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
