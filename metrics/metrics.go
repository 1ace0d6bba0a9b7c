// Package metrics 提供离线评估用的排序指标（NDCG@k、Precision@k、Recall@k 等）。
// 所有指标接受推荐列表和 ground truth，k 为推荐截断长度。
package metrics

import "math"

// NDCG 计算 nDCG@k。
//
//	DCG@k  = sum(1 / log2(i + 2))，i 取推荐列表前 k 里命中的名次
//	nDCG@k = DCG@k / IDCG@k
func NDCG[T comparable](ranked, groundTruth []T, recommendSize int) float64 {
	truth := toSet(groundTruth)

	k := min(len(ranked), recommendSize)
	var dcg float64
	for i := 0; i < k; i++ {
		if _, ok := truth[ranked[i]]; ok {
			dcg += 1.0 / math.Log2(float64(i)+2)
		}
	}

	idealK := min(len(groundTruth), recommendSize)
	var idealDCG float64
	for i := 0; i < idealK; i++ {
		idealDCG += 1.0 / math.Log2(float64(i)+2)
	}

	if idealDCG == 0 {
		return 0.0
	}
	return dcg / idealDCG
}

// Precision 计算 Precision@k = 命中数 / k。
// ground truth 为空时约定：推荐也为空记 1，否则记 0。
func Precision[T comparable](ranked, groundTruth []T, recommendSize int) float64 {
	if len(groundTruth) == 0 {
		if len(ranked) == 0 {
			return 1.0
		}
		return 0.0
	}
	k := min(len(ranked), recommendSize)
	if k == 0 {
		return 0.0
	}
	return float64(truePositives(ranked, groundTruth, recommendSize)) / float64(k)
}

// Recall 计算 Recall@k = 命中数 / |ground truth|。
func Recall[T comparable](ranked, groundTruth []T, recommendSize int) float64 {
	if len(groundTruth) == 0 {
		if len(ranked) == 0 {
			return 1.0
		}
		return 0.0
	}
	return float64(truePositives(ranked, groundTruth, recommendSize)) / float64(len(groundTruth))
}

// HitRate 计算 Hit@k：前 k 个推荐至少命中一个则为 1，否则为 0。
func HitRate[T comparable](ranked, groundTruth []T, recommendSize int) float64 {
	if truePositives(ranked, groundTruth, recommendSize) > 0 {
		return 1.0
	}
	return 0.0
}

// ReciprocalRank 计算 RR@k：第一个命中名次 i（从 0 起）的 1/(i+1)，无命中为 0。
func ReciprocalRank[T comparable](ranked, groundTruth []T, recommendSize int) float64 {
	truth := toSet(groundTruth)
	k := min(len(ranked), recommendSize)
	for i := 0; i < k; i++ {
		if _, ok := truth[ranked[i]]; ok {
			return 1.0 / float64(i+1)
		}
	}
	return 0.0
}

// AveragePrecision 计算 AP@k：命中名次上的 precision 之和除以命中数。
// ground truth 为空时约定同 Precision。
func AveragePrecision[T comparable](ranked, groundTruth []T, recommendSize int) float64 {
	if len(groundTruth) == 0 {
		if len(ranked) == 0 {
			return 1.0
		}
		return 0.0
	}
	truth := toSet(groundTruth)
	k := min(len(ranked), recommendSize)

	var hits int
	var sum float64
	for i := 0; i < k; i++ {
		if _, ok := truth[ranked[i]]; ok {
			hits++
			sum += float64(hits) / float64(i+1)
		}
	}
	if hits == 0 {
		return 0.0
	}
	return sum / float64(hits)
}

// F1Score 计算 F1@k：Precision@k 与 Recall@k 的调和平均。
func F1Score[T comparable](ranked, groundTruth []T, recommendSize int) float64 {
	if len(groundTruth) == 0 && len(ranked) == 0 {
		return 1.0
	}
	prec := Precision(ranked, groundTruth, recommendSize)
	rec := Recall(ranked, groundTruth, recommendSize)
	if prec+rec == 0 {
		return 0.0
	}
	return 2 * prec * rec / (prec + rec)
}

// MRR 计算多查询的 Mean Reciprocal Rank。
func MRR[T comparable](rankedLists, groundTruths [][]T, recommendSize int) float64 {
	if len(rankedLists) == 0 {
		return 0.0
	}
	var sum float64
	for i, ranked := range rankedLists {
		var truth []T
		if i < len(groundTruths) {
			truth = groundTruths[i]
		}
		sum += ReciprocalRank(ranked, truth, recommendSize)
	}
	return sum / float64(len(rankedLists))
}

// truePositives 统计前 k 个推荐里的命中数。
func truePositives[T comparable](ranked, groundTruth []T, recommendSize int) int {
	truth := toSet(groundTruth)
	k := min(len(ranked), recommendSize)
	var tp int
	for i := 0; i < k; i++ {
		if _, ok := truth[ranked[i]]; ok {
			tp++
		}
	}
	return tp
}

func toSet[T comparable](items []T) map[T]struct{} {
	out := make(map[T]struct{}, len(items))
	for _, it := range items {
		out[it] = struct{}{}
	}
	return out
}
