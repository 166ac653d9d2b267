package testutil

import (
	"fmt"
	"sync"
	"time"

	"github.com/ArowuTest/retail-loyalty-backend/internal/utils"
)

var (
	_ utils.CodeGenerator = (*SequenceCodeGenerator)(nil)
	_ utils.CodeGenerator = (*ScriptedCodeGenerator)(nil)
)

// SequenceCodeGenerator hands out predictable, distinct codes:
// VCH-YYYYMMDD-00001, VCH-YYYYMMDD-00002, ...
type SequenceCodeGenerator struct {
	mu      sync.Mutex
	voucher int
	lottery int
}

func (g *SequenceCodeGenerator) VoucherCode(now time.Time) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.voucher++
	return fmt.Sprintf("VCH-%s-%05d", now.Format("20060102"), g.voucher), nil
}

func (g *SequenceCodeGenerator) LotteryNumber() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lottery++
	return fmt.Sprintf("1000-1000-%04d", 1000+g.lottery), nil
}

// ScriptedCodeGenerator returns the given voucher codes in order and then
// repeats the last one forever. Used to force collisions.
type ScriptedCodeGenerator struct {
	mu    sync.Mutex
	Codes []string
	Calls int
}

func NewScriptedCodeGenerator(codes ...string) *ScriptedCodeGenerator {
	return &ScriptedCodeGenerator{Codes: codes}
}

func (g *ScriptedCodeGenerator) VoucherCode(time.Time) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.Calls
	if i >= len(g.Codes) {
		i = len(g.Codes) - 1
	}
	g.Calls++
	return g.Codes[i], nil
}

func (g *ScriptedCodeGenerator) LotteryNumber() (string, error) {
	return utils.GenerateLotteryNumber()
}
