package rpc

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mitchellh/mapstructure"

	"utxosig/blockchain"
	"utxosig/database"
	"utxosig/utils"
	"utxosig/wallet"
)

type handlerFunc func(s *Server, params []interface{}) (interface{}, error)

var rpcHandlers = map[string]handlerFunc{
	"ping":             handlePing,
	"serialize":        handleSerialize,
	"digest":           handleDigest,
	"derivepubkey":     handleDerivePubKey,
	"signdigest":       handleSignDigest,
	"verifydigest":     handleVerifyDigest,
	"verifytx":         handleVerifyTx,
	"signtx":           handleSignTx,
	"submittx":         handleSubmitTx,
	"gettx":            handleGetTx,
	"listtxs":          handleListTxs,
	"deletetx":         handleDeleteTx,
	"cleartxs":         handleClearTxs,
	"getwalletaddress": handleGetWalletAddress,
}

// Server answers JSON-RPC requests. Wallet and Store are optional; methods that need them
// fail with CodeWalletMissing or CodeInternal when they're nil.
type Server struct {
	Wallet *wallet.Wallet
	Store  *database.TxStore

	httpServer *http.Server
}

func NewServer(w *wallet.Wallet, store *database.TxStore) *Server {
	return &Server{
		Wallet: w,
		Store:  store,
	}
}

// Start serves on addr in the background. It returns once the listener is bound.
func (s *Server) Start(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/rpc", s)
	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Infof("RPC server listening on %s", l.Addr())

	go func() {
		err := s.httpServer.Serve(l)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("RPC server stopped: %v", err)
		}
	}()

	return nil
}

// Stop shuts the HTTP server down, waiting for in-flight requests until ctx
// expires.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	log.Info("RPC server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP decodes one request and dispatches it by method name.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	var req RPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, nil, &RPCError{
			Code:    CodeParseError,
			Message: "invalid json",
		})
		return
	}

	handler, ok := rpcHandlers[req.Method]
	if !ok {
		s.writeError(w, req.ID, &RPCError{
			Code:    CodeMethodNotFound,
			Message: fmt.Sprintf("unknown method %q", req.Method),
		})
		return
	}

	log.Debugf("RPC %s", req.Method)

	result, err := handler(s, req.Params)
	if err != nil {
		log.Debugf("RPC %s failed: %v", req.Method, err)
		s.writeError(w, req.ID, toRPCError(err))
		return
	}

	s.writeResult(w, req.ID, result)
}

func (s *Server) writeResult(w http.ResponseWriter, id, result interface{}) {
	s.write(w, RPCResponse{Result: result, ID: id})
}

func (s *Server) writeError(w http.ResponseWriter, id interface{},
	rpcErr *RPCError) {

	s.write(w, RPCResponse{Error: rpcErr, ID: id})
}

func (s *Server) write(w http.ResponseWriter, resp RPCResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Errorf("Unable to write RPC response: %v", err)
	}
}

// invalidParams marks an error as the caller's fault.
func invalidParams(format string, args ...interface{}) error {
	return &RPCError{
		Code:    CodeInvalidParams,
		Message: fmt.Sprintf(format, args...),
	}
}

func toRPCError(err error) *RPCError {
	var rpcErr *RPCError
	switch {
	case errors.As(err, &rpcErr):
		return rpcErr

	case blockchain.IsMalformedInput(err),
		errors.Is(err, blockchain.ErrMalformedTx),
		errors.Is(err, wallet.ErrNoOwnedInputs):

		return &RPCError{Code: CodeInvalidParams, Message: err.Error()}

	case errors.Is(err, database.ErrNotFound):
		return &RPCError{Code: CodeNotFound, Message: err.Error()}

	case errors.Is(err, database.ErrUnverified):
		return &RPCError{Code: CodeVerifyRejected, Message: err.Error()}

	default:
		return &RPCError{Code: CodeInternal, Message: err.Error()}
	}
}

// decodeParams decodes params[0] into out using the json field names. Types
// must match exactly: a JSON number has already lost precision as a float64
// by the time it would be converted into a value string.
func decodeParams(params []interface{}, out interface{}) error {
	if len(params) != 1 {
		return invalidParams("expected 1 param object, got %d",
			len(params))
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params[0]); err != nil {
		return invalidParams("bad params: %v", err)
	}
	return nil
}

func decodeHex(field, s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, invalidParams("%s: invalid hex: %v", field, err)
	}
	return b, nil
}

func decodeTx(params []interface{}) (*blockchain.SignedTx, error) {
	var p txParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	stx, err := signedTxFromParams(p)
	if err != nil {
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) || blockchain.IsMalformedInput(err) {
			return nil, err
		}
		return nil, invalidParams("%v", err)
	}
	return stx, nil
}

func handlePing(_ *Server, _ []interface{}) (interface{}, error) {
	return "pong", nil
}

func handleSerialize(_ *Server, params []interface{}) (interface{}, error) {
	stx, err := decodeTx(params)
	if err != nil {
		return nil, err
	}

	raw := stx.Tx.Serialize()
	return SerializeResult{
		Hex:  hex.EncodeToString(raw),
		Size: len(raw),
	}, nil
}

func handleDigest(_ *Server, params []interface{}) (interface{}, error) {
	stx, err := decodeTx(params)
	if err != nil {
		return nil, err
	}

	d := stx.Tx.Digest()
	return DigestResult{
		Digest:  utils.FormatDigest(&d),
		Display: utils.HexUpper(d[:]),
	}, nil
}

func handleDerivePubKey(_ *Server, params []interface{}) (interface{}, error) {
	var p digestParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	priv, err := decodeHex("privkey", p.PrivKey)
	if err != nil {
		return nil, err
	}

	pub, err := blockchain.PubKeyFromPrivKey(priv)
	if err != nil {
		return nil, err
	}

	return KeyResult{
		PubKey:  pub.String(),
		Address: wallet.PubKeyToAddress(pub),
	}, nil
}

func handleSignDigest(_ *Server, params []interface{}) (interface{}, error) {
	var p digestParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	digest, err := decodeHex("digest", p.Digest)
	if err != nil {
		return nil, err
	}
	priv, err := decodeHex("privkey", p.PrivKey)
	if err != nil {
		return nil, err
	}

	sig, err := blockchain.SignDigest(digest, priv)
	if err != nil {
		return nil, err
	}

	return SignatureResult{Signature: hex.EncodeToString(sig)}, nil
}

func handleVerifyDigest(_ *Server, params []interface{}) (interface{}, error) {
	var p digestParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	digest, err := decodeHex("digest", p.Digest)
	if err != nil {
		return nil, err
	}
	sig, err := decodeHex("signature", p.Signature)
	if err != nil {
		return nil, err
	}
	pub, err := decodeHex("pubkey", p.PubKey)
	if err != nil {
		return nil, err
	}

	ok, err := blockchain.VerifyDigest(digest, sig, pub)
	if err != nil {
		return nil, err
	}

	return VerifyResult{Accepted: ok}, nil
}

func handleVerifyTx(_ *Server, params []interface{}) (interface{}, error) {
	stx, err := decodeTx(params)
	if err != nil {
		return nil, err
	}

	ok, err := stx.Verify()
	if err != nil {
		return nil, err
	}

	return VerifyResult{Accepted: ok, Unsigned: stx.Unsigned()}, nil
}

func handleSignTx(s *Server, params []interface{}) (interface{}, error) {
	if s.Wallet == nil {
		return nil, &RPCError{
			Code:    CodeWalletMissing,
			Message: "wallet not loaded",
		}
	}

	stx, err := decodeTx(params)
	if err != nil {
		return nil, err
	}

	n, err := s.Wallet.SignTransaction(stx)
	if err != nil {
		return nil, err
	}

	return SignTxResult{
		Sigs:     sigsToHex(stx.Sigs),
		Signed:   n,
		Complete: len(stx.Unsigned()) == 0,
	}, nil
}

func handleSubmitTx(s *Server, params []interface{}) (interface{}, error) {
	if s.Store == nil {
		return nil, errors.New("transaction store not available")
	}

	stx, err := decodeTx(params)
	if err != nil {
		return nil, err
	}

	txid, err := s.Store.PutSignedTx(stx)
	if err != nil {
		return nil, err
	}

	return SubmitResult{TxID: txid}, nil
}

func handleGetTx(s *Server, params []interface{}) (interface{}, error) {
	if s.Store == nil {
		return nil, errors.New("transaction store not available")
	}

	var p txidParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	stx, err := s.Store.GetSignedTx(p.TxID)
	if err != nil {
		return nil, err
	}

	return SignedTxResult{
		TxID: p.TxID,
		Tx:   TxToDTO(stx.Tx),
		Sigs: sigsToHex(stx.Sigs),
	}, nil
}

func handleListTxs(s *Server, _ []interface{}) (interface{}, error) {
	if s.Store == nil {
		return nil, errors.New("transaction store not available")
	}

	ids, err := s.Store.ListTxIDs()
	if err != nil {
		return nil, err
	}
	n, err := s.Store.Count()
	if err != nil {
		return nil, err
	}

	return ListResult{TxIDs: ids, Count: n}, nil
}

func handleDeleteTx(s *Server, params []interface{}) (interface{}, error) {
	if s.Store == nil {
		return nil, errors.New("transaction store not available")
	}

	var p txidParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	if err := s.Store.Delete(p.TxID); err != nil {
		return nil, err
	}

	log.Infof("Deleted archived tx %s", p.TxID)

	return SubmitResult{TxID: p.TxID}, nil
}

func handleClearTxs(s *Server, _ []interface{}) (interface{}, error) {
	if s.Store == nil {
		return nil, errors.New("transaction store not available")
	}

	if err := s.Store.Clear(); err != nil {
		return nil, err
	}

	return ListResult{TxIDs: []string{}}, nil
}

func handleGetWalletAddress(s *Server, _ []interface{}) (interface{}, error) {
	if s.Wallet == nil {
		return nil, &RPCError{
			Code:    CodeWalletMissing,
			Message: "wallet not loaded",
		}
	}

	return KeyResult{
		PubKey:  s.Wallet.PublicKey.String(),
		Address: s.Wallet.Address,
	}, nil
}
