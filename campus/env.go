package campus

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/ShinyNito/campushire/core"
)

// EnvConfig 环境变量配置
type EnvConfig struct {
	BaseURL    string        `env:"CAMPUS_BASE_URL,required,notEmpty"`
	Timeout    time.Duration `env:"CAMPUS_TIMEOUT"      envDefault:"15s"`
	CacheTTL   time.Duration `env:"CAMPUS_CACHE_TTL"    envDefault:"5m"`
	PolicyFile string        `env:"CAMPUS_CACHE_POLICY"`
}

// ParseEnv 读取 CAMPUS_* 环境变量
func ParseEnv() (EnvConfig, error) {
	return ParseEnvWith(nil)
}

// ParseEnvWith 读取环境变量，overrides 中的非空值优先（如命令行参数）
func ParseEnvWith(overrides map[string]string) (EnvConfig, error) {
	environ := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			environ[k] = v
		}
	}
	for k, v := range overrides {
		if v != "" {
			environ[k] = v
		}
	}

	var cfg EnvConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Config 转换为客户端配置，PolicyFile 非空时加载缓存策略
func (e EnvConfig) Config() (Config, error) {
	if e.CacheTTL <= 0 {
		return Config{}, fmt.Errorf("cache ttl must be positive")
	}

	cfg := Config{
		BaseURL:  e.BaseURL,
		Timeout:  e.Timeout,
		CacheTTL: e.CacheTTL,
	}
	if e.PolicyFile != "" {
		policy, err := core.LoadCachePolicyFile(e.PolicyFile)
		if err != nil {
			return Config{}, err
		}
		cfg.CachePolicy = policy
	}
	return cfg, nil
}

// ConfigFromEnv 从环境变量构造客户端配置
func ConfigFromEnv() (Config, error) {
	e, err := ParseEnv()
	if err != nil {
		return Config{}, err
	}
	return e.Config()
}
