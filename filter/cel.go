// Package filter 提供基于 CEL (Common Expression Language) 的推荐结果过滤。
// 表达式在构造时编译一次，之后可以对任意批量的打分结果复用。
package filter

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/slimrec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// getCELEnv 获取或创建 CEL 环境，定义可用变量。
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("key", cel.StringType),
			cel.Variable("score", cel.DoubleType),
			cel.Variable("rank", cel.IntType),
		)
	})
	return celEnv, celEnvErr
}

// CELFilter 按 CEL 布尔表达式过滤打分后的推荐结果。
//
// 表达式变量：
//   - key   物品外部键的字符串形式
//   - score 预测分数
//   - rank  条目在结果中的名次（从 0 起）
//
// 示例：
//   - `score > 0.5`                 → 只保留高分结果
//   - `rank < 10 || score > 1.0`    → 头部名次之外要求更高分数
//   - `!key.startsWith("promo_")`   → 剔除运营位物品
type CELFilter struct {
	prg cel.Program
}

// NewCELFilter 编译表达式并创建过滤器。表达式必须返回布尔值。
func NewCELFilter(expr string) (*CELFilter, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("filter: cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("filter: compile error: %v", issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("filter: expression must return boolean, got %v", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("filter: program error: %v", err)
	}
	return &CELFilter{prg: prg}, nil
}

// Apply 返回满足表达式的条目（保持原有顺序）。
// 单条求值失败按不通过处理，不中断其余条目。
func (f *CELFilter) Apply(items []core.ScoredItem) []core.ScoredItem {
	out := make([]core.ScoredItem, 0, len(items))
	for i, it := range items {
		ok, err := f.eval(it, i)
		if err != nil || !ok {
			continue
		}
		out = append(out, it)
	}
	return out
}

func (f *CELFilter) eval(item core.ScoredItem, rank int) (bool, error) {
	val, _, err := f.prg.Eval(map[string]any{
		"key":   item.Key.String(),
		"score": item.Score,
		"rank":  rank,
	})
	if err != nil {
		return false, err
	}
	result, ok := val.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter: expression must return boolean, got %T", val.Value())
	}
	return result, nil
}
