package kodi

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// rpcRequest is a JSON-RPC 2.0 call sent through the ?request= query parameter
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("kodi json-rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse[T any] struct {
	Result *T        `json:"result"`
	Error  *rpcError `json:"error"`
}

type itemParams struct {
	PlayerID   int      `json:"playerid"`
	Properties []string `json:"properties"`
}

var (
	infoProperties   = []string{"title", "season", "episode", "showtitle", "tvshowid", "label"}
	lengthProperties = []string{"time", "totaltime", "speed"}
)

func newRequest(method string, params any) rpcRequest {
	return rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params}
}

// requestURL encodes req as a GET URL on the /jsonrpc endpoint of baseURL.
func requestURL(baseURL string, req rpcRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode %s request: %w", req.Method, err)
	}
	return baseURL + "/jsonrpc?request=" + url.QueryEscape(string(body)), nil
}
