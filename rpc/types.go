package rpc

// RPCRequest is a JSON-RPC request. Params[0] carries the method's param
// object.
type RPCRequest struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
	ID     interface{}   `json:"id"`
}

type RPCResponse struct {
	Result interface{} `json:"result,omitempty"`
	Error  *RPCError   `json:"error,omitempty"`
	ID     interface{} `json:"id"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// Error codes. The generic ones follow JSON-RPC 2.0, the rest bitcoind.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternal       = -32603
	CodeWalletMissing  = -18
	CodeNotFound       = -5
	CodeVerifyRejected = -26
)

// TransactionDTO is the JSON form of a transaction.
type TransactionDTO struct {
	Inputs  []TxOutDTO `json:"inputs"`
	Outputs []TxOutDTO `json:"outputs"`
}

// TxOutDTO is used for outputs and for the output an input spends. Value
// must be a JSON string holding a decimal uint64, numbers are rejected.
type TxOutDTO struct {
	Value       string `json:"value"`
	SpendingKey string `json:"spending_key"` // uncompressed, hex
}

// Param objects, decoded from params[0].

type txParams struct {
	Tx   TransactionDTO `json:"tx"`
	Sigs []string       `json:"sigs"`
}

type digestParams struct {
	Digest    string `json:"digest"`
	PrivKey   string `json:"privkey"`
	Signature string `json:"signature"`
	PubKey    string `json:"pubkey"`
}

type txidParams struct {
	TxID string `json:"txid"`
}

// Results.

type SerializeResult struct {
	Hex  string `json:"hex"`
	Size int    `json:"size"`
}

type DigestResult struct {
	Digest  string `json:"digest"`
	Display string `json:"display"`
}

type KeyResult struct {
	PubKey  string `json:"pubkey"`
	Address string `json:"address"`
}

type SignatureResult struct {
	Signature string `json:"signature"`
}

type VerifyResult struct {
	Accepted bool  `json:"accepted"`
	Unsigned []int `json:"unsigned,omitempty"`
}

type SignTxResult struct {
	Sigs     []string `json:"sigs"`
	Signed   int      `json:"signed"`
	Complete bool     `json:"complete"`
}

type SubmitResult struct {
	TxID string `json:"txid"`
}

type SignedTxResult struct {
	TxID string         `json:"txid"`
	Tx   TransactionDTO `json:"tx"`
	Sigs []string       `json:"sigs"`
}

type ListResult struct {
	TxIDs []string `json:"txids"`
	Count uint64   `json:"count"`
}
