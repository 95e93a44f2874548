package solbc

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"

	"github.com/rovshanmuradov/birthpad/internal/blockchain"
)

// AnchorError represents an error from Anchor framework
type AnchorError struct {
	Code int    `json:"code"`
	Name string `json:"name"`
	Msg  string `json:"msg"`
}

// SimulationFailure is a readable summary of a failed simulation or a
// preflight rejection.
type SimulationFailure struct {
	Err    string       `json:"err"`
	Anchor *AnchorError `json:"anchor,omitempty"`
	Logs   []string     `json:"-"`
}

func (f SimulationFailure) Error() string {
	if f.Anchor != nil {
		return fmt.Sprintf("simulation failed: %s (%d): %s", f.Anchor.Name, f.Anchor.Code, f.Anchor.Msg)
	}
	return "simulation failed: " + f.Err
}

// DescribeSimulation converts a failed simulation into an error. It returns
// nil for a successful one.
func DescribeSimulation(res *blockchain.SimulationResult) error {
	if !res.Failed() {
		return nil
	}
	f := SimulationFailure{Err: compactJSON(res.Err), Logs: res.Logs}
	if a, ok := AnchorErrorFromLogs(res.Logs); ok {
		f.Anchor = &a
	}
	return f
}

// DescribeRPCError extracts simulation details from a preflight rejection.
// Other errors are returned unchanged.
func DescribeRPCError(err error) error {
	rpcErr, ok := err.(*jsonrpc.RPCError)
	if !ok || !strings.Contains(rpcErr.Message, "Transaction simulation failed") {
		return err
	}
	f := SimulationFailure{Err: rpcErr.Message}
	if data, ok := rpcErr.Data.(map[string]interface{}); ok {
		if logs, ok := data["logs"].([]interface{}); ok {
			for _, l := range logs {
				if s, ok := l.(string); ok {
					f.Logs = append(f.Logs, s)
				}
			}
		}
		if e, ok := data["err"]; ok && e != nil {
			f.Err = compactJSON(e)
		}
	}
	if a, ok := AnchorErrorFromLogs(f.Logs); ok {
		f.Anchor = &a
	}
	return f
}

// AnchorErrorFromLogs finds the first Anchor error line, e.g.
// "Program log: AnchorError occurred. Error Code: ExceededSlippage. Error Number: 6003. Error Message: Exceeds desired slippage limit."
func AnchorErrorFromLogs(logs []string) (AnchorError, bool) {
	for _, line := range logs {
		if !strings.Contains(line, "AnchorError") {
			continue
		}
		var res AnchorError
		res.Name = segment(line, "Error Code:")
		if n, err := strconv.Atoi(segment(line, "Error Number:")); err == nil {
			res.Code = n
		}
		res.Msg = segment(line, "Error Message:")
		if res.Name != "" || res.Code != 0 {
			return res, true
		}
	}
	return AnchorError{}, false
}

// segment returns the text after marker up to the next ". ".
func segment(line, marker string) string {
	i := strings.Index(line, marker)
	if i < 0 {
		return ""
	}
	rest := strings.TrimSpace(line[i+len(marker):])
	if j := strings.Index(rest, ". "); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSuffix(rest, ".")
}

func compactJSON(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
