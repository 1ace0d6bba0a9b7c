// Package config 提供模型配置的加载（YAML/JSON）与默认值补全。
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/slimrec/pkg/logs"
	"github.com/rushteam/slimrec/slim"
)

// ModelConfig 是模型的文件配置结构（支持 YAML/JSON）。
// 零值字段在 Complete 中回退到默认超参数。
type ModelConfig struct {
	Alpha       float64 `yaml:"alpha" json:"alpha"`
	Beta        float64 `yaml:"beta" json:"beta"`
	Lambda1     float64 `yaml:"lambda1" json:"lambda1"`
	Lambda2     float64 `yaml:"lambda2" json:"lambda2"`
	MinValue    float64 `yaml:"min_value" json:"min_value"`
	MaxValue    float64 `yaml:"max_value" json:"max_value"`
	DecayInDays float64 `yaml:"decay_in_days" json:"decay_in_days"`
	LogLevel    string  `yaml:"log_level" json:"log_level"` // debug/info/warn/error，空为默认
}

// LoadFromYAML 从 YAML 文件加载模型配置。
func LoadFromYAML(path string) (*ModelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg ModelConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	return &cfg, nil
}

// LoadFromJSON 从 JSON 文件加载模型配置。
func LoadFromJSON(path string) (*ModelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg ModelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	return &cfg, nil
}

// Complete 把零值字段补全为默认超参数，返回可直接用于 slim.New 的配置。
// 注意：MinValue/MaxValue 同时为 0 时视为未配置，整体回退默认评分区间。
//
// 局限：零值即"未配置"，因此配置文件无法显式表达 lambda1/lambda2 = 0（关闭正则）。
// 需要关闭正则时直接构造 slim.Config，或配置一个极小值（如 1e-12），显式非零值原样保留。
func (c *ModelConfig) Complete() slim.Config {
	def := slim.DefaultConfig()
	out := slim.Config{
		Alpha:       c.Alpha,
		Beta:        c.Beta,
		Lambda1:     c.Lambda1,
		Lambda2:     c.Lambda2,
		MinValue:    c.MinValue,
		MaxValue:    c.MaxValue,
		DecayInDays: c.DecayInDays,
	}
	if out.Alpha == 0 {
		out.Alpha = def.Alpha
	}
	if out.Beta == 0 {
		out.Beta = def.Beta
	}
	if out.Lambda1 == 0 {
		out.Lambda1 = def.Lambda1
	}
	if out.Lambda2 == 0 {
		out.Lambda2 = def.Lambda2
	}
	if out.MinValue == 0 && out.MaxValue == 0 {
		out.MinValue = def.MinValue
		out.MaxValue = def.MaxValue
	}
	return out
}

// Build 按配置构建模型。配置了日志级别时顺带完成进程级日志初始化。
func (c *ModelConfig) Build(opts ...slim.Option) (*slim.SlimMSE, error) {
	if c.LogLevel != "" {
		logs.InitWithLevel(c.LogLevel)
	}
	return slim.New(c.Complete(), opts...)
}
