package chain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrGateway is the family sentinel every chain error unwraps to.
var ErrGateway = errors.New("chain gateway error")

// ErrNotFound is returned by the indexer when a resource does not exist.
var ErrNotFound = errors.New("chain resource not found")

// InsufficientBalanceError means the selected inputs cannot cover the
// outputs plus fee. Shortfall is zero when the builder did not report it.
type InsufficientBalanceError struct {
	Shortfall int64
	Message   string
}

func (e *InsufficientBalanceError) Error() string {
	if e.Shortfall > 0 {
		return fmt.Sprintf("insufficient balance: short by %d lovelace", e.Shortfall)
	}
	return "insufficient balance"
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrGateway }

// MissingUtxoError means a referenced input no longer exists.
type MissingUtxoError struct {
	TxHash      string
	OutputIndex int
}

func (e *MissingUtxoError) Error() string {
	if e.TxHash == "" {
		return "referenced utxo does not exist"
	}
	return fmt.Sprintf("referenced utxo %s#%d does not exist", e.TxHash, e.OutputIndex)
}

func (e *MissingUtxoError) Unwrap() error { return ErrGateway }

// ScriptValidationError means an on-chain script rejected the transaction.
type ScriptValidationError struct {
	Detail string
}

func (e *ScriptValidationError) Error() string {
	return "vault script validation failed: " + e.Detail
}

func (e *ScriptValidationError) Unwrap() error { return ErrGateway }

// TxSizeExceededError means the serialized transaction is over the protocol limit.
type TxSizeExceededError struct {
	Max    int64
	Actual int64
}

func (e *TxSizeExceededError) Error() string {
	return fmt.Sprintf("transaction size %d exceeds maximum %d", e.Actual, e.Max)
}

func (e *TxSizeExceededError) Unwrap() error { return ErrGateway }

// FeeTooSmallError is a submission rejection for an underpaid fee.
type FeeTooSmallError struct {
	Required int64
	Supplied int64
}

func (e *FeeTooSmallError) Error() string {
	return fmt.Sprintf("fee too small: required %d, supplied %d", e.Required, e.Supplied)
}

func (e *FeeTooSmallError) Unwrap() error { return ErrGateway }

// UtxoSpentError is a submission rejection for an input spent since build time.
type UtxoSpentError struct {
	TxHash      string
	OutputIndex int
}

func (e *UtxoSpentError) Error() string {
	if e.TxHash == "" {
		return "input already spent"
	}
	return fmt.Sprintf("input %s#%d already spent", e.TxHash, e.OutputIndex)
}

func (e *UtxoSpentError) Unwrap() error { return ErrGateway }

// ValueNotConservedError is a submission rejection where consumed and
// produced lovelace differ.
type ValueNotConservedError struct {
	Consumed int64
	Produced int64
}

func (e *ValueNotConservedError) Error() string {
	return fmt.Sprintf("value not conserved: consumed %d, produced %d", e.Consumed, e.Produced)
}

func (e *ValueNotConservedError) Unwrap() error { return ErrGateway }

// ValidityIntervalError is a submission rejection for a transaction outside
// its validity interval. Zero bounds mean the bound was not set.
type ValidityIntervalError struct {
	InvalidBefore    int64
	InvalidHereafter int64
	CurrentSlot      int64
}

func (e *ValidityIntervalError) Error() string {
	return fmt.Sprintf("slot %d outside validity interval [%d, %d)", e.CurrentSlot, e.InvalidBefore, e.InvalidHereafter)
}

func (e *ValidityIntervalError) Unwrap() error { return ErrGateway }

// GatewayError is the fallback for anything the translators do not recognize,
// including transport failures (StatusCode 0).
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.StatusCode == 0 {
		return "chain gateway unreachable: " + e.Message
	}
	return fmt.Sprintf("chain gateway returned %d: %s", e.StatusCode, e.Message)
}

func (e *GatewayError) Unwrap() error { return ErrGateway }

var (
	shortfallRe     = regexp.MustCompile(`(?i)(?:shortfall|short by|missing)\D{0,20}(\d+)`)
	utxoRefRe       = regexp.MustCompile(`([0-9a-f]{64})#(\d+)`)
	safeHashRefRe   = regexp.MustCompile(`SafeHash \\?"([0-9a-f]{64})\\?"[})\s]*\(TxIx (\d+)\)`)
	maxSizeRe       = regexp.MustCompile(`MaxTxSizeUTxO\D+(\d+)\D+(\d+)`)
	sizeWordsRe     = regexp.MustCompile(`(?i)size\D+(\d+)\D+(?:max(?:imum)?|limit)\D+(\d+)`)
	coinRe          = regexp.MustCompile(`Coin (\d+)`)
	suppliedRe      = regexp.MustCompile(`mismatchSupplied = (?:\w+ \()?Coin (\d+)`)
	expectedRe      = regexp.MustCompile(`mismatchExpected = (?:\w+ \()?Coin (\d+)`)
	invalidBeforeRe = regexp.MustCompile(`invalidBefore = SJust \(SlotNo (\d+)\)`)
	hereafterRe     = regexp.MustCompile(`invalidHereafter = SJust \(SlotNo (\d+)\)`)
	slotRe          = regexp.MustCompile(`SlotNo (\d+)`)
)

type matcher struct {
	keys      []string
	translate func(msg string) error
}

func (m matcher) matches(msg string) bool {
	lower := strings.ToLower(msg)
	for _, k := range m.keys {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

var (
	insufficientBalance = matcher{
		keys: []string{"UTxOBalanceInsufficient", "InsufficientBalance", "Insufficient balance", "BalanceInsufficient", "not enough funds"},
		translate: func(msg string) error {
			return &InsufficientBalanceError{Shortfall: firstInt(shortfallRe, msg), Message: msg}
		},
	}
	missingUtxo = matcher{
		keys: []string{"MissingUtxo", "UnknownUTxO", "BadInputsUTxO", "unknown input", "utxo not found", "UTxO not found"},
		translate: func(msg string) error {
			hash, idx := parseRef(msg)
			return &MissingUtxoError{TxHash: hash, OutputIndex: idx}
		},
	}
	scriptFailure = matcher{
		keys: []string{"VaultValidationFailed", "ValidationTagMismatch", "PlutusFailure", "ScriptFailure", "script failure", "The machine terminated because of an error"},
		translate: func(msg string) error {
			return &ScriptValidationError{Detail: msg}
		},
	}
	txSize = matcher{
		keys: []string{"MaxTxSizeUTxO", "transaction size", "tx too large"},
		translate: func(msg string) error {
			if m := maxSizeRe.FindStringSubmatch(msg); m != nil {
				// The ledger reports (actual) (max).
				return &TxSizeExceededError{Actual: atoi(m[1]), Max: atoi(m[2])}
			}
			if m := sizeWordsRe.FindStringSubmatch(msg); m != nil {
				return &TxSizeExceededError{Actual: atoi(m[1]), Max: atoi(m[2])}
			}
			return &TxSizeExceededError{}
		},
	}
	feeTooSmall = matcher{
		keys: []string{"FeeTooSmallUTxO", "fee too small"},
		translate: func(msg string) error {
			if s := suppliedRe.FindStringSubmatch(msg); s != nil {
				return &FeeTooSmallError{Required: firstInt(expectedRe, msg), Supplied: atoi(s[1])}
			}
			coins := allInts(coinRe, msg)
			e := &FeeTooSmallError{}
			if len(coins) > 0 {
				e.Required = coins[0]
			}
			if len(coins) > 1 {
				e.Supplied = coins[1]
			}
			return e
		},
	}
	utxoSpent = matcher{
		keys: []string{"BadInputsUTxO", "already spent", "AlreadySpent"},
		translate: func(msg string) error {
			hash, idx := parseRef(msg)
			return &UtxoSpentError{TxHash: hash, OutputIndex: idx}
		},
	}
	valueNotConserved = matcher{
		keys: []string{"ValueNotConservedUTxO", "value not conserved"},
		translate: func(msg string) error {
			if s := suppliedRe.FindStringSubmatch(msg); s != nil {
				return &ValueNotConservedError{Consumed: atoi(s[1]), Produced: firstInt(expectedRe, msg)}
			}
			coins := allInts(coinRe, msg)
			e := &ValueNotConservedError{}
			if len(coins) > 0 {
				e.Consumed = coins[0]
			}
			if len(coins) > 1 {
				e.Produced = coins[1]
			}
			return e
		},
	}
	validityInterval = matcher{
		keys: []string{"OutsideValidityIntervalUTxO", "validity interval"},
		translate: func(msg string) error {
			e := &ValidityIntervalError{
				InvalidBefore:    firstInt(invalidBeforeRe, msg),
				InvalidHereafter: firstInt(hereafterRe, msg),
			}
			if slots := allInts(slotRe, msg); len(slots) > 0 {
				e.CurrentSlot = slots[len(slots)-1]
			}
			return e
		},
	}
)

// Build-time errors come from coin selection and script evaluation.
var buildMatchers = []matcher{insufficientBalance, missingUtxo, scriptFailure, txSize}

// Submit-time errors are ledger rule failures. Order matters: the ledger
// often reports several failures at once and the most actionable wins.
var submitMatchers = []matcher{utxoSpent, missingUtxo, feeTooSmall, valueNotConserved, validityInterval, txSize, scriptFailure, insufficientBalance}

// TranslateBuildError maps a builder failure message onto a typed error.
// Unrecognized messages become *GatewayError.
func TranslateBuildError(statusCode int, message string) error {
	return translate(buildMatchers, statusCode, message)
}

// TranslateSubmitError maps a submission failure message onto a typed error.
// Unrecognized messages become *GatewayError.
func TranslateSubmitError(statusCode int, message string) error {
	return translate(submitMatchers, statusCode, message)
}

func translate(matchers []matcher, statusCode int, message string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &GatewayError{StatusCode: statusCode, Message: message}
		}
	}()
	for _, m := range matchers {
		if m.matches(message) {
			return m.translate(message)
		}
	}
	return &GatewayError{StatusCode: statusCode, Message: message}
}

func parseRef(msg string) (string, int) {
	if m := utxoRefRe.FindStringSubmatch(msg); m != nil {
		return m[1], int(atoi(m[2]))
	}
	if m := safeHashRefRe.FindStringSubmatch(msg); m != nil {
		return m[1], int(atoi(m[2]))
	}
	return "", 0
}

func firstInt(re *regexp.Regexp, msg string) int64 {
	if m := re.FindStringSubmatch(msg); m != nil {
		return atoi(m[1])
	}
	return 0
}

func allInts(re *regexp.Regexp, msg string) []int64 {
	var out []int64
	for _, m := range re.FindAllStringSubmatch(msg, -1) {
		out = append(out, atoi(m[1]))
	}
	return out
}

func atoi(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
