package core

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CacheRule 按路径前缀配置的缓存规则
type CacheRule struct {
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
	Tags     []string      `yaml:"tags"`
	Disabled bool          `yaml:"disabled"`
}

// CachePolicy 路由级缓存策略，前缀最长的规则生效
//
// 示例:
//
//	rules:
//	  - prefix: /jobs
//	    ttl: 2m
//	    tags: [job]
//	  - prefix: /resumes/exists
//	    disabled: true
type CachePolicy struct {
	Rules []CacheRule `yaml:"rules"`
}

// LoadCachePolicy 从 YAML 读取缓存策略
func LoadCachePolicy(r io.Reader) (*CachePolicy, error) {
	var policy CachePolicy
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&policy); err != nil {
		if err == io.EOF {
			return &policy, nil
		}
		return nil, fmt.Errorf("decode cache policy: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &policy, nil
}

// LoadCachePolicyFile 从文件读取缓存策略
func LoadCachePolicyFile(path string) (*CachePolicy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cache policy: %w", err)
	}
	defer f.Close()

	return LoadCachePolicy(f)
}

// Validate 校验规则
func (p *CachePolicy) Validate() error {
	seen := make(map[string]struct{}, len(p.Rules))
	for i, rule := range p.Rules {
		if strings.TrimSpace(rule.Prefix) == "" {
			return fmt.Errorf("cache rule %d: prefix is required", i)
		}
		if rule.TTL < 0 {
			return fmt.Errorf("cache rule %q: ttl must not be negative", rule.Prefix)
		}
		if _, dup := seen[rule.Prefix]; dup {
			return fmt.Errorf("cache rule %q: duplicate prefix", rule.Prefix)
		}
		seen[rule.Prefix] = struct{}{}
	}
	return nil
}

// Match 返回匹配 path 的最长前缀规则
func (p *CachePolicy) Match(path string) (CacheRule, bool) {
	if p == nil {
		return CacheRule{}, false
	}
	var (
		best  CacheRule
		found bool
	)
	for _, rule := range p.Rules {
		if !strings.HasPrefix(path, rule.Prefix) {
			continue
		}
		if !found || len(rule.Prefix) > len(best.Prefix) {
			best = rule
			found = true
		}
	}
	return best, found
}
