package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// latestRoundData() selector.
	selLatestRoundData = "0xfeaf968c"
	// decimals() selector.
	selDecimals = "0x313ce567"
)

// AggregatorClient reads a Chainlink-style aggregator contract over JSON-RPC.
// The answer is fetched fresh on every LatestRate call; nothing is cached.
type AggregatorClient struct {
	url      string
	contract common.Address
	client   *http.Client
}

// NewAggregatorClient creates a client for the aggregator at contract,
// reachable through the JSON-RPC endpoint at url.
func NewAggregatorClient(url string, contract common.Address) *AggregatorClient {
	return &AggregatorClient{
		url:      url,
		contract: contract,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// LatestRate implements RateFeed. It calls decimals() and latestRoundData()
// and returns the current answer.
func (c *AggregatorClient) LatestRate() (*big.Int, uint8, error) {
	decHex, err := c.ethCall(selDecimals)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching decimals: %w", err)
	}
	dec, ok := new(big.Int).SetString(strings.TrimPrefix(decHex, "0x"), 16)
	if !ok || !dec.IsUint64() || dec.Uint64() > 76 {
		return nil, 0, fmt.Errorf("%w: bad decimals %q", ErrInvalidRate, decHex)
	}

	roundHex, err := c.ethCall(selLatestRoundData)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching round data: %w", err)
	}
	answer, err := parseAnswer(roundHex)
	if err != nil {
		return nil, 0, err
	}
	return answer, uint8(dec.Uint64()), nil
}

// parseAnswer extracts the int256 answer (second return word) from the raw
// latestRoundData() response.
func parseAnswer(hexStr string) (*big.Int, error) {
	raw := strings.TrimPrefix(hexStr, "0x")
	// roundId, answer, startedAt, updatedAt, answeredInRound: five 32-byte words.
	if len(raw) < 5*64 {
		return nil, fmt.Errorf("%w: short round data %q", ErrUnavailable, hexStr)
	}
	word := raw[64:128]
	answer, ok := new(big.Int).SetString(word, 16)
	if !ok {
		return nil, fmt.Errorf("%w: bad answer word %q", ErrUnavailable, word)
	}
	// Negative int256 (high bit set) or zero answers are unusable as rates.
	if answer.BitLen() >= 256 || answer.Sign() <= 0 {
		return nil, ErrInvalidRate
	}
	return answer, nil
}

// --- JSON-RPC plumbing ---

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *AggregatorClient) ethCall(calldata string) (string, error) {
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "eth_call",
		Params: []interface{}{
			map[string]string{
				"to":   c.contract.Hex(),
				"data": calldata,
			},
			"latest",
		},
		ID: 1,
	})
	if err != nil {
		return "", err
	}

	resp, err := c.client.Post(c.url, "application/json", strings.NewReader(string(reqBody)))
	if err != nil {
		return "", fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if rpcResp.Error != nil {
		return "", fmt.Errorf("RPC error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	var result string
	if err := json.Unmarshal(rpcResp.Result, &result); err != nil {
		return "", fmt.Errorf("parsing result: %w", err)
	}
	return result, nil
}
