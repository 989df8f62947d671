package server

import (
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"
)

// --- 请求限流 ---

// RateLimiter 按 IP 的滑动计数限流，超过每秒上限会被临时封禁
type RateLimiter struct {
	mu           sync.Mutex
	maxPerSecond int
	maxPerMinute int
	banDuration  time.Duration
	clients      map[string]*clientRate
	now          func() time.Time
}

type clientRate struct {
	secondStart time.Time
	secondCount int
	minuteStart time.Time
	minuteCount int
	bannedUntil time.Time
}

// NewRateLimiter 创建限流器
func NewRateLimiter(maxPerSecond, maxPerMinute int, banDuration time.Duration) *RateLimiter {
	return &RateLimiter{
		maxPerSecond: maxPerSecond,
		maxPerMinute: maxPerMinute,
		banDuration:  banDuration,
		clients:      make(map[string]*clientRate),
		now:          time.Now,
	}
}

// Allow 记录一次请求并返回是否放行
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	c, ok := rl.clients[ip]
	if !ok {
		c = &clientRate{secondStart: now, minuteStart: now}
		rl.clients[ip] = c
	}

	if now.Before(c.bannedUntil) {
		return false
	}

	if now.Sub(c.secondStart) >= time.Second {
		c.secondStart, c.secondCount = now, 0
	}
	if now.Sub(c.minuteStart) >= time.Minute {
		c.minuteStart, c.minuteCount = now, 0
	}

	c.secondCount++
	c.minuteCount++

	if c.secondCount > rl.maxPerSecond {
		c.bannedUntil = now.Add(rl.banDuration)
		return false
	}
	return c.minuteCount <= rl.maxPerMinute
}

// IsBanned IP 是否处于封禁期
func (rl *RateLimiter) IsBanned(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[ip]
	return ok && rl.now().Before(c.bannedUntil)
}

// Cleanup 清理一分钟内没有请求且未被封禁的记录，返回清理数量
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for ip, c := range rl.clients {
		if now.Sub(c.minuteStart) >= time.Minute && !now.Before(c.bannedUntil) {
			delete(rl.clients, ip)
			removed++
		}
	}
	return removed
}

// --- 来源校验 ---

// OriginChecker websocket 来源校验，白名单为空或包含 "*" 时允许所有来源
type OriginChecker struct {
	allowed []string
}

// NewOriginChecker 创建来源校验器
func NewOriginChecker(allowed []string) *OriginChecker {
	return &OriginChecker{allowed: slices.Clone(allowed)}
}

// Check 校验请求来源，没有 Origin 头的非浏览器客户端直接放行
func (oc *OriginChecker) Check(r *http.Request) bool {
	if len(oc.allowed) == 0 || slices.Contains(oc.allowed, "*") {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return slices.Contains(oc.allowed, origin)
}

// GetClientIP 获取客户端真实 IP，依次检查 X-Forwarded-For、X-Real-IP 与连接地址
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xrip := strings.TrimSpace(r.Header.Get("X-Real-IP")); xrip != "" {
		return xrip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
