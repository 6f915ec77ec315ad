package manager

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"aleosdk/account"
	"aleosdk/record"
)

// ErrUnknownTransferKind reports a transfer kind name outside the four
// supported variants.
var ErrUnknownTransferKind = errors.New("unknown transfer kind")

// TransferKind selects one of the four credits transfer functions. The
// enum is closed; anything else fails ParseTransferKind.
type TransferKind int

const (
	TransferPrivate TransferKind = iota
	TransferPublic
	TransferPrivateToPublic
	TransferPublicToPrivate
)

// ParseTransferKind maps a variant name to its kind. The leading
// "transfer_" is optional.
func ParseTransferKind(s string) (TransferKind, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "transfer_") {
	case "private":
		return TransferPrivate, nil
	case "public":
		return TransferPublic, nil
	case "private_to_public", "privatetopublic":
		return TransferPrivateToPublic, nil
	case "public_to_private", "publictoprivate":
		return TransferPublicToPrivate, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTransferKind, s)
	}
}

func (k TransferKind) String() string {
	switch k {
	case TransferPrivate:
		return "private"
	case TransferPublic:
		return "public"
	case TransferPrivateToPublic:
		return "private_to_public"
	case TransferPublicToPrivate:
		return "public_to_private"
	default:
		return fmt.Sprintf("TransferKind(%d)", int(k))
	}
}

// Function returns the credits.aleo function the kind invokes.
func (k TransferKind) Function() string {
	return "transfer_" + k.String()
}

// RecordFunded reports whether the kind spends from a private record.
func (k TransferKind) RecordFunded() bool {
	return k == TransferPrivate || k == TransferPrivateToPublic
}

// Microcredits converts a decimal credit amount to microcredits,
// rounding to the nearest whole microcredit.
func Microcredits(credits float64) (uint64, error) {
	if math.IsNaN(credits) || math.IsInf(credits, 0) || credits < 0 {
		return 0, fmt.Errorf("invalid credit amount %v", credits)
	}
	micro := math.Round(credits * 1_000_000)
	if micro > math.MaxUint64 {
		return 0, fmt.Errorf("credit amount %v exceeds the representable range", credits)
	}
	return uint64(micro), nil
}

// buildTransferInputs produces the positional input list for a transfer.
// Record-funded kinds lead with the funding record and require the
// amount to fit its balance; the others draw from the public balance.
func buildTransferInputs(kind TransferKind, recipient *account.Address, amountMicro uint64, funding *record.Plaintext) ([]string, error) {
	amount := fmt.Sprintf("%du64", amountMicro)
	if !kind.RecordFunded() {
		return []string{recipient.String(), amount}, nil
	}
	if funding == nil {
		return nil, fmt.Errorf("amount record must be provided for %s transfers", kind)
	}
	if amountMicro > funding.Microcredits {
		return nil, fmt.Errorf("amount %d exceeds record balance %d", amountMicro, funding.Microcredits)
	}
	return []string{funding.String(), recipient.String(), amount}, nil
}
