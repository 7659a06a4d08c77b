package similarity

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch 向量维度不一致
// 维度不一致意味着混用了不同的嵌入模型，必须显式报错而不是截断对齐
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Candidate 参与相似度匹配的候选项
type Candidate struct {
	ID     uint
	Vector []float32
}

// Cosine 计算两个向量的余弦相似度，结果收敛到[0,1]
// 空向量或零向量（嵌入服务不可用时的哨兵值）相似度恒为0，不会产生除零错误
func Cosine(a, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, nil
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		normA += va * va
		normB += vb * vb
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0, nil
	}
	if sim > 1 {
		return 1, nil
	}
	return sim, nil
}

// FindBestMatch 在候选集中线性扫描最相似的ID
// 调用方需保证候选按ID升序排列，严格大于比较使平分时先扫描到的胜出，结果可复现
// 零向量查询直接返回未命中，保证哨兵向量在任何阈值下都不匹配
// 复杂度O(n·d)，不建索引是设计决定
func FindBestMatch(query []float32, candidates []Candidate, threshold float64) (uint, bool, error) {
	if isZero(query) {
		return 0, false, nil
	}

	var (
		bestID         uint
		bestSimilarity float64
		found          bool
	)
	for _, c := range candidates {
		if len(c.Vector) == 0 || isZero(c.Vector) {
			continue
		}
		sim, err := Cosine(query, c.Vector)
		if err != nil {
			return 0, false, err
		}
		if sim > bestSimilarity {
			bestSimilarity = sim
			bestID = c.ID
			found = true
		}
	}

	if found && bestSimilarity >= threshold {
		return bestID, true, nil
	}
	return 0, false, nil
}

func isZero(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
