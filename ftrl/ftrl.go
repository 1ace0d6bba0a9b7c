// Package ftrl 实现 FTRL-Proximal 在线优化器，维护稀疏的物品-物品权重矩阵。
//
// 每个坐标是一个有序物品对 (i, j)，i != j，语义为"物品 i 对预测物品 j 的贡献"。
// (i, j) 和 (j, i) 是两个独立坐标，方向不可交换。
package ftrl

import (
	"math"

	"github.com/vmihailenco/msgpack/v5"
)

// Pair 是有序物品对坐标：Src 是历史物品，Dst 是被预测物品。
type Pair struct {
	Src int32
	Dst int32
}

// entry 是单坐标的 FTRL-Proximal 状态：当前权重 w、累计梯度平方 n、累计调整梯度 z。
type entry struct {
	w float64
	n float64
	z float64
}

// Weights 是只读的权重快照：坐标 -> 权重，不含内部累计量。
// 所有读路径（预测/推荐/相似）只访问快照，避免与累计量产生竞争。
type Weights map[Pair]float64

// Get 返回坐标权重，缺失条目贡献 0（冷对）。
func (w Weights) Get(p Pair) float64 {
	return w[p]
}

// FTRL 是 FTRL-Proximal 优化器。
//
// 自适应步长：更新越频繁的坐标步长收缩越快，低频坐标保持较大步长——
// 隐式反馈下物品对的更新频率分布极度倾斜，这正是需要的性质。
// L1 软阈值使大量权重精确为 0（稀疏性），L2 做幅度收缩。
type FTRL struct {
	Alpha   float64 // 学习率系数
	Beta    float64 // 学习率平滑项
	Lambda1 float64 // L1 正则强度
	Lambda2 float64 // L2 正则强度

	entries map[Pair]*entry
}

// New 创建优化器。坐标在首次梯度更新时惰性创建，创建后不淘汰。
func New(alpha, beta, lambda1, lambda2 float64) *FTRL {
	return &FTRL{
		Alpha:   alpha,
		Beta:    beta,
		Lambda1: lambda1,
		Lambda2: lambda2,
		entries: make(map[Pair]*entry),
	}
}

// UpdateGradients 对坐标 key 应用一次梯度 grad 的 FTRL-Proximal 更新：
//
//	sigma = (sqrt(n + grad^2) - sqrt(n)) / alpha
//	z    += grad - sigma*w
//	n    += grad^2
//	w     = 0                                            若 |z| <= lambda1
//	w     = -(z - sign(z)*lambda1) /
//	        ((beta + sqrt(n)) / alpha + lambda2)         否则
//
// 非有限梯度（NaN/Inf）必须由调用方在入口处拒绝，这里不做自保护。
func (f *FTRL) UpdateGradients(key Pair, grad float64) {
	e, ok := f.entries[key]
	if !ok {
		e = &entry{}
		f.entries[key] = e
	}

	sigma := (math.Sqrt(e.n+grad*grad) - math.Sqrt(e.n)) / f.Alpha
	e.z += grad - sigma*e.w
	e.n += grad * grad

	if math.Abs(e.z) <= f.Lambda1 {
		e.w = 0
	} else {
		sign := 1.0
		if e.z < 0 {
			sign = -1.0
		}
		e.w = -(e.z - sign*f.Lambda1) / ((f.Beta+math.Sqrt(e.n))/f.Alpha + f.Lambda2)
	}
}

// Weight 返回单个坐标的当前权重，缺失条目为 0。
func (f *FTRL) Weight(key Pair) float64 {
	if e, ok := f.entries[key]; ok {
		return e.w
	}
	return 0
}

// Contains 判断坐标是否已被创建（用于稀疏性检查）。
func (f *FTRL) Contains(key Pair) bool {
	_, ok := f.entries[key]
	return ok
}

// Len 返回已创建的坐标数。
func (f *FTRL) Len() int { return len(f.entries) }

// GetWeights 返回权重快照（坐标 -> w），省略内部累计量。
// 快照是一次性拷贝，读路径在整个计算期间持有它，不再触碰优化器状态。
func (f *FTRL) GetWeights() Weights {
	out := make(Weights, len(f.entries))
	for p, e := range f.entries {
		out[p] = e.w
	}
	return out
}

// coordState 是单坐标的持久化形态（有序对 + 三个标量，字段标签化）。
type coordState struct {
	Src int32   `msgpack:"i"`
	Dst int32   `msgpack:"j"`
	W   float64 `msgpack:"w"`
	N   float64 `msgpack:"n"`
	Z   float64 `msgpack:"z"`
}

// ftrlState 是优化器的持久化形态。
type ftrlState struct {
	Alpha   float64      `msgpack:"alpha"`
	Beta    float64      `msgpack:"beta"`
	Lambda1 float64      `msgpack:"lambda1"`
	Lambda2 float64      `msgpack:"lambda2"`
	Coords  []coordState `msgpack:"coords"`
}

var (
	_ msgpack.CustomEncoder = (*FTRL)(nil)
	_ msgpack.CustomDecoder = (*FTRL)(nil)
)

// EncodeMsgpack 实现 msgpack.CustomEncoder。
func (f *FTRL) EncodeMsgpack(enc *msgpack.Encoder) error {
	st := ftrlState{
		Alpha:   f.Alpha,
		Beta:    f.Beta,
		Lambda1: f.Lambda1,
		Lambda2: f.Lambda2,
		Coords:  make([]coordState, 0, len(f.entries)),
	}
	for p, e := range f.entries {
		st.Coords = append(st.Coords, coordState{Src: p.Src, Dst: p.Dst, W: e.w, N: e.n, Z: e.z})
	}
	return enc.Encode(st)
}

// DecodeMsgpack 实现 msgpack.CustomDecoder。
func (f *FTRL) DecodeMsgpack(dec *msgpack.Decoder) error {
	var st ftrlState
	if err := dec.Decode(&st); err != nil {
		return err
	}
	f.Alpha = st.Alpha
	f.Beta = st.Beta
	f.Lambda1 = st.Lambda1
	f.Lambda2 = st.Lambda2
	f.entries = make(map[Pair]*entry, len(st.Coords))
	for _, c := range st.Coords {
		f.entries[Pair{Src: c.Src, Dst: c.Dst}] = &entry{w: c.W, n: c.N, z: c.Z}
	}
	return nil
}
