package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	voucherCodePattern   = regexp.MustCompile(`^VCH-\d{8}-[A-Z0-9]{5}$`)
	lotteryNumberPattern = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}$`)
)

// CodeGenerator produces voucher codes and lottery numbers. Neither output is
// unique by itself; callers check codes against the store.
type CodeGenerator interface {
	VoucherCode(now time.Time) (string, error)
	LotteryNumber() (string, error)
}

// RandomCodeGenerator draws from crypto/rand
type RandomCodeGenerator struct{}

// NewCodeGenerator returns the production generator
func NewCodeGenerator() *RandomCodeGenerator {
	return &RandomCodeGenerator{}
}

// VoucherCode returns VCH-YYYYMMDD-XXXXX using the calendar date of now.
func (RandomCodeGenerator) VoucherCode(now time.Time) (string, error) {
	return GenerateVoucherCode(now)
}

// LotteryNumber returns three 4-digit groups, each in 1000-9999.
func (RandomCodeGenerator) LotteryNumber() (string, error) {
	return GenerateLotteryNumber()
}

// GenerateVoucherCode returns VCH- + now as YYYYMMDD + 5 random uppercase alphanumerics.
func GenerateVoucherCode(now time.Time) (string, error) {
	suffix, err := GenerateRandomString(5)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("VCH-%s-%s", now.Format("20060102"), suffix), nil
}

// GenerateLotteryNumber returns e.g. 4821-1093-7710.
func GenerateLotteryNumber() (string, error) {
	groups := make([]string, 3)
	for i := range groups {
		n, err := rand.Int(rand.Reader, big.NewInt(9000))
		if err != nil {
			return "", err
		}
		groups[i] = fmt.Sprintf("%04d", n.Int64()+1000)
	}
	return strings.Join(groups, "-"), nil
}

// GenerateRandomString generates a random string of the specified length
// over A-Z0-9 without modulo bias.
func GenerateRandomString(length int) (string, error) {
	limit := big.NewInt(int64(len(codeAlphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b), nil
}

// IsVoucherCode reports whether s has the printed voucher code format.
func IsVoucherCode(s string) bool {
	return voucherCodePattern.MatchString(s)
}

// IsLotteryNumber reports whether s has the printed lottery number format.
func IsLotteryNumber(s string) bool {
	return lotteryNumberPattern.MatchString(s)
}

// NormalizeVoucherCode trims and upper-cases a code typed at the till.
func NormalizeVoucherCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
