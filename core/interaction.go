package core

// Interaction 是一条原始交互事件：外部键形式的 (用户, 物品, 时间戳, 评分)。
// 时间戳是 Unix 秒（float64，允许亚秒精度）；评分是实数，入库时会被裁剪到配置区间。
type Interaction struct {
	User      Key
	Item      Key
	Timestamp float64
	Rating    float64
}
