package pincode

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost bcrypt 默认成本因子
// PIN 只有 4-6 位数字，离线暴力破解空间很小，成本因子不能低于 10
const DefaultCost = 10

const (
	MinLength = 4
	MaxLength = 6
)

var ErrInvalidPin = errors.New("PIN 码必须是 4-6 位数字")

// ValidFormat 校验 PIN 码格式（4-6 位纯数字）
func ValidFormat(pin string) bool {
	if len(pin) < MinLength || len(pin) > MaxLength {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Hash 生成带随机盐的单向哈希
// 同一个 PIN 每次哈希结果都不同，但都能通过 Verify 校验
// cost <= 0 时使用 DefaultCost
func Hash(pin string, cost int) (string, error) {
	if !ValidFormat(pin) {
		return "", ErrInvalidPin
	}
	if cost <= 0 {
		cost = DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		// 哈希失败（如熵源耗尽）属于致命错误，调用方必须中止当前操作
		return "", fmt.Errorf("生成 PIN 哈希失败: %w", err)
	}
	return string(hash), nil
}

// Verify 校验 PIN 码
// 哈希格式非法时返回 false 而不是报错，bcrypt 自带常数时间比较
func Verify(pin, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
