package filter

import (
	"testing"

	"github.com/rushteam/slimrec/core"
)

func scored(key string, score float64) core.ScoredItem {
	return core.ScoredItem{Key: core.StringKey(key), Score: score}
}

// TestCELFilter_Score 测试按分数过滤且保持顺序
func TestCELFilter_Score(t *testing.T) {
	f, err := NewCELFilter("score > 0.5")
	if err != nil {
		t.Fatalf("编译失败: %v", err)
	}

	items := []core.ScoredItem{
		scored("a", 0.9),
		scored("b", 0.3),
		scored("c", 0.7),
		scored("d", 0.5),
	}
	got := f.Apply(items)
	if len(got) != 2 || got[0].Key.Str != "a" || got[1].Key.Str != "c" {
		t.Errorf("期望保留 [a c]，实际 %v", got)
	}
}

// TestCELFilter_RankAndKey 测试 rank 和 key 变量
func TestCELFilter_RankAndKey(t *testing.T) {
	f, err := NewCELFilter(`rank < 2 && !key.startsWith("promo_")`)
	if err != nil {
		t.Fatalf("编译失败: %v", err)
	}

	items := []core.ScoredItem{
		scored("movie_1", 1.0),
		scored("promo_2", 0.9),
		scored("movie_3", 0.8), // rank=2 被名次条件过滤
	}
	got := f.Apply(items)
	if len(got) != 1 || got[0].Key.Str != "movie_1" {
		t.Errorf("期望只保留 movie_1，实际 %v", got)
	}
}

// TestCELFilter_IntKey 测试整数键的字符串形式
func TestCELFilter_IntKey(t *testing.T) {
	f, err := NewCELFilter(`key == "42"`)
	if err != nil {
		t.Fatalf("编译失败: %v", err)
	}

	items := []core.ScoredItem{
		{Key: core.IntKey(42), Score: 1.0},
		{Key: core.IntKey(7), Score: 1.0},
	}
	if got := f.Apply(items); len(got) != 1 || got[0].Key.Int != 42 {
		t.Errorf("期望匹配整数键 42，实际 %v", got)
	}
}

// TestNewCELFilter_Errors 测试编译期错误
func TestNewCELFilter_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"语法错误", "score >"},
		{"未定义变量", "price > 100"},
		{"非布尔返回", "score + 1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCELFilter(tt.expr); err == nil {
				t.Errorf("表达式 %q 应编译失败", tt.expr)
			}
		})
	}
}

// TestCELFilter_EmptyInput 测试空输入返回空结果
func TestCELFilter_EmptyInput(t *testing.T) {
	f, err := NewCELFilter("score > 0.0")
	if err != nil {
		t.Fatalf("编译失败: %v", err)
	}
	if got := f.Apply(nil); len(got) != 0 {
		t.Errorf("空输入期望空结果，实际 %v", got)
	}
}
