package service

import (
	"context"
	"strings"
	"sync"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/shopguard/internal/chain"
	"github.com/and161185/shopguard/internal/challenge"
	"github.com/and161185/shopguard/internal/ethkey"
	"github.com/and161185/shopguard/internal/metrics"
	"github.com/and161185/shopguard/internal/model"
	"github.com/and161185/shopguard/internal/repository"
)

// Web3Service defines the wallet and NFT challenge operations.
type Web3Service interface {
	// SubmitKey classifies key material; the configured private key solves the unlock challenge.
	SubmitKey(ctx context.Context, key string) (ethkey.Verdict, error)
	// NFTUnlocked reports the unlock challenge flag.
	NFTUnlocked(ctx context.Context) bool
	// ListenMints registers the mint listener; later calls reuse it.
	ListenMints() uuid.UUID
	// VerifyWallet reports whether address minted the NFT and solves the mint challenge if so.
	VerifyWallet(ctx context.Context, address string) bool
	// WatchExploitAddress registers an exploit listener for address without validating it.
	WatchExploitAddress(address string) uuid.UUID
	// Publish feeds a chain event to the registered listeners.
	Publish(ctx context.Context, ev chain.Event) (int, error)
}

// Tracker is the challenge flag store used by Web3ServiceImpl.
type Tracker interface {
	IsSolved(ctx context.Context, key string) (bool, error)
	Solve(ctx context.Context, key string) (bool, error)
}

type Web3ServiceImpl struct {
	classifier *ethkey.Classifier
	tracker    Tracker
	hub        *chain.Hub
	mints      repository.MintRepository
	m          *metrics.Metrics
	log        *zap.Logger

	mintOnce     sync.Once
	mintListener uuid.UUID
}

// NewWeb3Service constructs Web3Service. m may be nil.
func NewWeb3Service(wallet ethkey.Wallet, tracker Tracker, hub *chain.Hub, mints repository.MintRepository, m *metrics.Metrics, log *zap.Logger) *Web3ServiceImpl {
	return &Web3ServiceImpl{
		classifier: ethkey.NewClassifier(wallet),
		tracker:    tracker,
		hub:        hub,
		mints:      mints,
		m:          m,
		log:        log,
	}
}

// SubmitKey returns the verdict; an error means the flag could not be persisted.
func (s *Web3ServiceImpl) SubmitKey(ctx context.Context, key string) (ethkey.Verdict, error) {
	v := s.classifier.Classify(key)
	s.m.ObserveKeySubmission(v.String())
	if v != ethkey.PrivateKey {
		return v, nil
	}
	if _, err := s.tracker.Solve(ctx, challenge.NFTUnlock); err != nil {
		return v, err
	}
	return v, nil
}

// NFTUnlocked reads the flag; a storage failure reads as not solved.
func (s *Web3ServiceImpl) NFTUnlocked(ctx context.Context) bool {
	solved, err := s.tracker.IsSolved(ctx, challenge.NFTUnlock)
	if err != nil {
		s.log.Warn("read challenge flag", zap.String("challenge", challenge.NFTUnlock), zap.Error(err))
		return false
	}
	return solved
}

// ListenMints records every future mint in the mint repository.
func (s *Web3ServiceImpl) ListenMints() uuid.UUID {
	s.mintOnce.Do(func() {
		s.mintListener = s.hub.Listen(chain.KindMint, "", func(ctx context.Context, ev chain.Event) error {
			return s.mints.RecordMint(ctx, model.Mint{Address: ev.Address, TxHash: ev.TxHash, MintedAt: ev.At})
		})
	})
	return s.mintListener
}

// VerifyWallet never fails: missing, unknown or unverifiable addresses are false.
func (s *Web3ServiceImpl) VerifyWallet(ctx context.Context, address string) bool {
	address = strings.TrimSpace(address)
	if address == "" {
		return false
	}
	minted, err := s.mints.HasMinted(ctx, address)
	if err != nil {
		s.log.Warn("mint lookup", zap.Error(err))
		return false
	}
	if !minted {
		return false
	}
	if _, err := s.tracker.Solve(ctx, challenge.NFTMint); err != nil {
		s.log.Error("solve challenge", zap.String("challenge", challenge.NFTMint), zap.Error(err))
		return false
	}
	return true
}

// WatchExploitAddress accepts any address, including malformed ones and the
// contract's own address.
func (s *Web3ServiceImpl) WatchExploitAddress(address string) uuid.UUID {
	return s.hub.Listen(chain.KindExploit, address, func(ctx context.Context, _ chain.Event) error {
		_, err := s.tracker.Solve(ctx, challenge.WalletDrain)
		return err
	})
}

// Publish forwards ev to the hub.
func (s *Web3ServiceImpl) Publish(ctx context.Context, ev chain.Event) (int, error) {
	return s.hub.Publish(ctx, ev)
}
