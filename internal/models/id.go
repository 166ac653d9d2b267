package models

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// ID prefixes, one per aggregate.
const (
	IDPrefixMember      = "mbr"
	IDPrefixRule        = "rule"
	IDPrefixEvent       = "evt"
	IDPrefixTransaction = "txn"
	IDPrefixVoucher     = "vch"
	IDPrefixVoucherLog  = "vlog"
	IDPrefixDraw        = "draw"
	IDPrefixPrize       = "prz"
	IDPrefixWinner      = "win"
)

// GenerateID returns a ULID with the given prefix, e.g. vch_01HX...
func GenerateID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, ulid.Make().String())
}
