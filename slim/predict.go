package slim

import (
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/slimrec/core"
	"github.com/rushteam/slimrec/ftrl"
)

// parallelThreshold 小于该规模的归约直接串行，避免 goroutine 开销反超收益
const parallelThreshold = 64

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	return n
}

// PredictRating 预测用户对物品的评分。
// 未知用户/物品键返回中性分 0——未知实体是正常结果，不是错误。
func (m *SlimMSE) PredictRating(user, item core.Key) float64 {
	userID, ok := m.userIDs.GetID(user)
	if !ok {
		return 0.0
	}
	itemID, ok := m.itemIDs.GetID(item)
	if !ok {
		return 0.0
	}
	return m.predictByID(userID, itemID, true)
}

// predictByID 计算加权和预测：sum over 用户完整历史 ui != item 的 w(ui, item) * rating(ui)。
// bypass 为 true 且用户历史恰好只有被查询物品时，直接返回原始（衰减后）评分，
// 防止冷对的零权重掩盖真实观测值。
func (m *SlimMSE) predictByID(userID, itemID int32, bypass bool) float64 {
	userItems := m.interactions.GetUserItems(userID, 0)

	if bypass && len(userItems) == 1 && userItems[0] == itemID {
		return m.interactions.GetUserItemRating(userID, itemID, 0.0)
	}

	weights := m.opt.GetWeights()
	return m.weightedSum(weights, userID, itemID, userItems)
}

// weightedSum 在权重快照上做并行归约求和。
// 快照在整个计算期间只读，各 worker 写入互不相交的局部累加槽，无需加锁。
func (m *SlimMSE) weightedSum(weights ftrl.Weights, userID, itemID int32, userItems []int32) float64 {
	sumChunk := func(chunk []int32) float64 {
		var sum float64
		for _, ui := range chunk {
			if ui == itemID {
				continue
			}
			w := weights.Get(ftrl.Pair{Src: ui, Dst: itemID})
			if w == 0 {
				continue
			}
			sum += w * m.interactions.GetUserItemRating(userID, ui, 0.0)
		}
		return sum
	}

	if len(userItems) < parallelThreshold || m.workers <= 1 {
		return sumChunk(userItems)
	}

	workers := m.workers
	partial := make([]float64, workers)
	chunk := (len(userItems) + workers - 1) / workers

	var eg errgroup.Group
	for w := 0; w < workers; w++ {
		lo := w * chunk
		if lo >= len(userItems) {
			break
		}
		hi := lo + chunk
		if hi > len(userItems) {
			hi = len(userItems)
		}
		slot := w
		eg.Go(func() error {
			partial[slot] = sumChunk(userItems[lo:hi])
			return nil
		})
	}
	_ = eg.Wait()

	var total float64
	for _, p := range partial {
		total += p
	}
	return total
}

// Recommend 返回用户的 Top-K 推荐物品键。未知用户返回空结果。
func (m *SlimMSE) Recommend(user core.Key, topK int, filterInteracted bool) []core.Key {
	scored := m.RecommendScored(user, topK, filterInteracted)
	out := make([]core.Key, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.Key)
	}
	return out
}

// RecommendScored 与 Recommend 相同，但返回带分数的条目（供过滤/观测使用）。
//
// 候选集：filterInteracted 为 true 时是未交互物品全集，否则是（衰减后）评分
// 非负的物品。候选打分用完整历史的加权和（不做单物品 bypass），按分数降序
// 稳定排序，非有限值比较按相等处理。
func (m *SlimMSE) RecommendScored(user core.Key, topK int, filterInteracted bool) []core.ScoredItem {
	userID, ok := m.userIDs.GetID(user)
	if !ok {
		return nil
	}

	var candidates []int32
	if filterInteracted {
		candidates = m.interactions.GetAllNonInteractedItems(userID)
	} else {
		candidates = m.interactions.GetAllNonNegativeItems(userID)
	}
	if len(candidates) == 0 {
		return nil
	}

	userItems := m.interactions.GetUserItems(userID, 0)
	weights := m.opt.GetWeights()
	scores := m.scoreCandidates(weights, userID, candidates, userItems)

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return greaterScore(scores[order[a]], scores[order[b]])
	})

	if topK > len(order) {
		topK = len(order)
	}
	out := make([]core.ScoredItem, 0, topK)
	for _, idx := range order[:topK] {
		key, err := m.itemIDs.Get(candidates[idx])
		if err != nil {
			continue
		}
		out = append(out, core.ScoredItem{Key: key, Score: scores[idx]})
	}
	return out
}

// scoreCandidates 并行给每个候选物品打分，写入互不相交的下标，无共享可变状态。
func (m *SlimMSE) scoreCandidates(weights ftrl.Weights, userID int32, candidates, userItems []int32) []float64 {
	scores := make([]float64, len(candidates))

	scoreRange := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			scores[i] = m.weightedSumSerial(weights, userID, candidates[i], userItems)
		}
	}

	if len(candidates) < parallelThreshold || m.workers <= 1 {
		scoreRange(0, len(candidates))
		return scores
	}

	workers := m.workers
	chunk := (len(candidates) + workers - 1) / workers
	var eg errgroup.Group
	for w := 0; w < workers; w++ {
		lo := w * chunk
		if lo >= len(candidates) {
			break
		}
		hi := lo + chunk
		if hi > len(candidates) {
			hi = len(candidates)
		}
		eg.Go(func() error {
			scoreRange(lo, hi)
			return nil
		})
	}
	_ = eg.Wait()
	return scores
}

// weightedSumSerial 是 weightedSum 的串行版本，供已经按候选并行化的外层使用。
func (m *SlimMSE) weightedSumSerial(weights ftrl.Weights, userID, itemID int32, userItems []int32) float64 {
	var sum float64
	for _, ui := range userItems {
		if ui == itemID {
			continue
		}
		w := weights.Get(ftrl.Pair{Src: ui, Dst: itemID})
		if w == 0 {
			continue
		}
		sum += w * m.interactions.GetUserItemRating(userID, ui, 0.0)
	}
	return sum
}

// SimilarItems 对每个查询物品独立（并行）求 Top-K 相似物品。
//
// 相似度读取 w(candidate, query)——与预测同一方向约定；从未共现的候选默认
// 负无穷，天然排在最后。未解析的查询键对应空列表。filterQueryItems 为 true
// 时结果不含查询物品自身。
func (m *SlimMSE) SimilarItems(queries []core.Key, topK int, filterQueryItems bool) [][]core.Key {
	targets := m.interactions.GetAllItemIDs()
	weights := m.opt.GetWeights()

	out := make([][]core.Key, len(queries))

	var eg errgroup.Group
	eg.SetLimit(m.workers)
	for qi, q := range queries {
		qi, q := qi, q
		eg.Go(func() error {
			queryID, ok := m.itemIDs.GetID(q)
			if !ok {
				out[qi] = []core.Key{}
				return nil
			}

			type scored struct {
				itemID int32
				score  float64
			}
			items := make([]scored, 0, len(targets))
			for _, target := range targets {
				if filterQueryItems && target == queryID {
					continue
				}
				score, known := weights[ftrl.Pair{Src: target, Dst: queryID}]
				if !known {
					score = math.Inf(-1)
				}
				items = append(items, scored{itemID: target, score: score})
			}
			sort.SliceStable(items, func(a, b int) bool {
				return greaterScore(items[a].score, items[b].score)
			})

			k := topK
			if k > len(items) {
				k = len(items)
			}
			keys := make([]core.Key, 0, k)
			for _, s := range items[:k] {
				key, err := m.itemIDs.Get(s.itemID)
				if err != nil {
					continue
				}
				keys = append(keys, key)
			}
			out[qi] = keys
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

// greaterScore 是降序比较器：NaN 参与的比较视为相等（返回 false），
// 配合稳定排序保持原有顺序。
func greaterScore(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	return a > b
}
