package httpserver

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/and161185/shopguard/internal/chain"
	"github.com/and161185/shopguard/internal/ethkey"
)

const (
	msgListenerCreated = "Event Listener Created"
	msgNotMinted       = "Wallet did not mint the NFT"
	msgInternal        = "Internal error"
)

type keySubmission struct {
	PrivateKey string `json:"privateKey"`
}

type walletRequest struct {
	WalletAddress string `json:"walletAddress"`
}

// handleSubmitKey answers 200 only for the wallet's private key. A body that
// does not decode counts as an empty submission.
func (s *Server) handleSubmitKey(w http.ResponseWriter, r *http.Request) {
	var req keySubmission
	_ = decodeJSON(r, &req)

	v, err := s.web3.SubmitKey(r.Context(), req.PrivateKey)
	if err != nil {
		s.log.Error("submit key", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: msgInternal})
		return
	}
	if v != ethkey.PrivateKey {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: v.Message()})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: v.Message()})
}

func (s *Server) handleNFTUnlocked(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"status": s.web3.NFTUnlocked(r.Context())})
}

func (s *Server) handleNFTMintListen(w http.ResponseWriter, _ *http.Request) {
	s.web3.ListenMints()
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: msgListenerCreated})
}

func (s *Server) handleWalletNFTVerify(w http.ResponseWriter, r *http.Request) {
	var req walletRequest
	_ = decodeJSON(r, &req)

	if !s.web3.VerifyWallet(r.Context(), req.WalletAddress) {
		writeJSON(w, http.StatusOK, envelope{Success: false, Message: msgNotMinted})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: ethkey.MsgSolved})
}

// handleWalletExploitAddress accepts whatever address it is given.
func (s *Server) handleWalletExploitAddress(w http.ResponseWriter, r *http.Request) {
	var req walletRequest
	_ = decodeJSON(r, &req)

	s.web3.WatchExploitAddress(req.WalletAddress)
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: msgListenerCreated})
}

type eventRequest struct {
	Kind    string `json:"kind"`
	Address string `json:"address"`
	TxHash  string `json:"txHash"`
}

func (s *Server) handlePublishEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	n, err := s.web3.Publish(r.Context(), chain.Event{Kind: chain.Kind(req.Kind), Address: req.Address, TxHash: req.TxHash})
	if err != nil {
		if errors.Is(err, chain.ErrUnknownKind) {
			writeError(w, http.StatusBadRequest, "unknown_kind")
			return
		}
		s.log.Error("publish event", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"delivered": n})
}
