package clob

import "errors"

// Error kinds from §7. InvalidInput and UnknownMarket are surfaced to
// the caller with no state change; DuplicateTxId is dropped silently
// with a warning log by the IngressRouter; PublishFailed is logged and
// swallowed inside MatchingEngine.publish; Fatal aborts the process in
// cmd/clobd, never inside the core.
var (
	ErrUnknownMarket = errors.New("clob: unknown market")
	ErrMarketExists  = errors.New("clob: market already exists")
	ErrDuplicateTxID = errors.New("clob: duplicate tx_id, dropped")
)
