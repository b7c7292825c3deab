package pincode

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// 测试里统一用最低成本因子，默认的 10 会让用例跑几秒
const testCost = bcrypt.MinCost

func TestValidFormat(t *testing.T) {
	valid := []string{"0000", "1234", "12345", "999999"}
	for _, pin := range valid {
		if !ValidFormat(pin) {
			t.Errorf("ValidFormat(%q) = false, want true", pin)
		}
	}

	invalid := []string{"", "123", "1234567", "12a4", "12.4", "一二三四", " 1234"}
	for _, pin := range invalid {
		if ValidFormat(pin) {
			t.Errorf("ValidFormat(%q) = true, want false", pin)
		}
	}
}

func TestHashVerify_RoundTrip(t *testing.T) {
	for _, pin := range []string{"1234", "000000", "98765"} {
		hash, err := Hash(pin, testCost)
		if err != nil {
			t.Fatalf("Hash(%q) failed: %v", pin, err)
		}
		if !Verify(pin, hash) {
			t.Errorf("Verify(%q, hash) = false, want true", pin)
		}
	}
}

func TestHash_SaltedPerCall(t *testing.T) {
	first, err := Hash("1234", testCost)
	if err != nil {
		t.Fatalf("Hash() failed: %v", err)
	}
	second, err := Hash("1234", testCost)
	if err != nil {
		t.Fatalf("Hash() failed: %v", err)
	}

	// 随机盐：两次哈希结果不同，但都能通过校验
	if first == second {
		t.Error("两次哈希结果相同，盐没有生效")
	}
	if !Verify("1234", first) || !Verify("1234", second) {
		t.Error("加盐后的哈希校验失败")
	}
}

func TestVerify_WrongPin(t *testing.T) {
	hash, err := Hash("1234", testCost)
	if err != nil {
		t.Fatalf("Hash() failed: %v", err)
	}
	for _, wrong := range []string{"4321", "12345", "0000"} {
		if Verify(wrong, hash) {
			t.Errorf("Verify(%q) = true, want false", wrong)
		}
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	// 哈希格式非法时返回 false，不 panic 不报错
	for _, hash := range []string{"", "not-a-bcrypt-hash", "$2a$xx$broken"} {
		if Verify("1234", hash) {
			t.Errorf("Verify(pin, %q) = true, want false", hash)
		}
	}
}

func TestHash_RejectsInvalidPin(t *testing.T) {
	for _, pin := range []string{"", "123", "abcdef"} {
		_, err := Hash(pin, testCost)
		if !errors.Is(err, ErrInvalidPin) {
			t.Errorf("Hash(%q) err = %v, want ErrInvalidPin", pin, err)
		}
	}
}

func TestHash_DefaultCost(t *testing.T) {
	hash, err := Hash("1234", 0)
	if err != nil {
		t.Fatalf("Hash() failed: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("Cost() failed: %v", err)
	}
	if cost != DefaultCost {
		t.Errorf("cost = %d, want %d", cost, DefaultCost)
	}
}
