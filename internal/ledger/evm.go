package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/casechain-api/internal/reputation"
	"github.com/noah-isme/casechain-api/pkg/ai"
)

const (
	defaultTxTimeout       = 2 * time.Minute
	defaultReadConcurrency = 8
)

// EVMConfig configures the contract backed ledger.
type EVMConfig struct {
	RPCURL          string
	ContractAddress string
	SignerKey       string
	TxTimeout       time.Duration
	ReadConcurrency int
	Logger          zerolog.Logger
}

// Backend is the chain access EVMLedger needs. *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// EVMLedger anchors submissions and reputation in the case registry contract.
// A single service key signs every transaction.
type EVMLedger struct {
	backend         Backend
	contract        *bind.BoundContract
	contractAddress common.Address
	contractABI     abi.ABI
	signer          *bind.TransactOpts
	txTimeout       time.Duration
	readConcurrency int
	logger          zerolog.Logger

	// mu keeps nonce assignment and submission atomic for the shared signer.
	mu sync.Mutex
}

// NewEVMLedger dials the RPC endpoint and prepares the signer.
func NewEVMLedger(ctx context.Context, cfg EVMConfig) (*EVMLedger, error) {
	if cfg.RPCURL == "" {
		return nil, errors.New("ledger rpc url is required")
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid ledger contract address %q", cfg.ContractAddress)
	}
	if cfg.SignerKey == "" {
		return nil, errors.New("ledger signer key is required")
	}
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.SignerKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid ledger signer key: %w", err)
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect to ledger rpc: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("get chain id: %w", err)
	}

	signer, err := bind.NewKeyedTransactorWithChainID(privateKey, chainID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create transactor: %w", err)
	}

	l, err := newEVMLedger(client, signer, cfg)
	if err != nil {
		client.Close()
		return nil, err
	}
	return l, nil
}

func newEVMLedger(backend Backend, signer *bind.TransactOpts, cfg EVMConfig) (*EVMLedger, error) {
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid ledger contract address %q", cfg.ContractAddress)
	}

	contractABI, err := parseRegistryABI()
	if err != nil {
		return nil, fmt.Errorf("parse registry abi: %w", err)
	}

	if cfg.TxTimeout <= 0 {
		cfg.TxTimeout = defaultTxTimeout
	}
	if cfg.ReadConcurrency <= 0 {
		cfg.ReadConcurrency = defaultReadConcurrency
	}

	address := common.HexToAddress(cfg.ContractAddress)
	logger := cfg.Logger.With().Str("component", "evm_ledger").Logger()
	logger.Info().
		Str("signer", signer.From.Hex()).
		Str("contract", address.Hex()).
		Msg("ledger signer configured")

	return &EVMLedger{
		backend:         backend,
		contract:        bind.NewBoundContract(address, contractABI, backend, backend, backend),
		contractAddress: address,
		contractABI:     contractABI,
		signer:          signer,
		txTimeout:       cfg.TxTimeout,
		readConcurrency: cfg.ReadConcurrency,
		logger:          logger,
	}, nil
}

// CheckDeployed verifies contract code exists at the configured address.
func (l *EVMLedger) CheckDeployed(ctx context.Context) error {
	code, err := l.backend.CodeAt(ctx, l.contractAddress, nil)
	if err != nil {
		return fmt.Errorf("get contract code: %w", err)
	}
	if len(code) == 0 {
		return fmt.Errorf("registry contract not deployed at %s", l.contractAddress.Hex())
	}
	return nil
}

// Close releases the RPC connection.
func (l *EVMLedger) Close() {
	if closer, ok := l.backend.(interface{ Close() }); ok {
		closer.Close()
	}
}

func (l *EVMLedger) Anchor(ctx context.Context, req AnchorRequest) (AnchorReceipt, error) {
	author, err := parseAuthor(req.Author)
	if err != nil {
		return AnchorReceipt{}, err
	}

	receipt, err := l.transact(ctx, "submitSubmission",
		req.CaseID,
		author,
		uint8(req.Scores.Clarity),
		uint8(req.Scores.Plausibility),
		uint8(req.Scores.Consistency),
		uint8(req.Scores.Relevance),
		req.IsSafe,
		req.Flag,
		req.Theory,
		req.Summary,
		req.Rank,
		uint64(req.Timestamp),
	)
	if err != nil {
		return AnchorReceipt{}, err
	}

	id, err := findIndexedID(l.contractABI, "SubmissionSubmitted", receipt)
	if err != nil {
		return AnchorReceipt{}, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	return AnchorReceipt{ID: id, TxDigest: receipt.TxHash.Hex()}, nil
}

func (l *EVMLedger) Mint(ctx context.Context, req MintRequest) (MintReceipt, error) {
	recipient, err := parseAuthor(req.Author)
	if err != nil {
		return MintReceipt{}, err
	}

	receipt, err := l.transact(ctx, "mintNFT",
		recipient,
		req.CaseID,
		uint8(req.Score),
		req.Summary,
		req.Rank,
		uint64(req.Timestamp),
	)
	if err != nil {
		return MintReceipt{}, err
	}

	if tokenID, err := findIndexedID(l.contractABI, "NFTMinted", receipt); err == nil {
		l.logger.Info().Uint64("token_id", tokenID).Str("tx", receipt.TxHash.Hex()).Msg("reward token minted")
	}
	return MintReceipt{TxDigest: receipt.TxHash.Hex()}, nil
}

func (l *EVMLedger) FetchByID(ctx context.Context, id uint64) (Record, error) {
	count, err := l.count(ctx)
	if err != nil {
		return Record{}, err
	}
	if id >= count {
		return Record{}, ErrNotFound
	}
	return l.fetch(ctx, id)
}

// FetchAll reads every anchored record in id order. Reads run in parallel with
// a bounded number of in-flight calls.
func (l *EVMLedger) FetchAll(ctx context.Context) ([]Record, error) {
	count, err := l.count(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]Record, count)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(l.readConcurrency)
	for id := uint64(0); id < count; id++ {
		id := id
		group.Go(func() error {
			record, err := l.fetch(groupCtx, id)
			if err != nil {
				return err
			}
			records[id] = record
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func (l *EVMLedger) count(ctx context.Context) (uint64, error) {
	var out []interface{}
	if err := l.contract.Call(&bind.CallOpts{Context: ctx}, &out, "submissionsCount"); err != nil {
		return 0, fmt.Errorf("read submissions count: %w", err)
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("unexpected submissionsCount output length %d", len(out))
	}
	value, ok := out[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("unexpected submissionsCount output type %T", out[0])
	}
	return value.Uint64(), nil
}

func (l *EVMLedger) fetch(ctx context.Context, id uint64) (Record, error) {
	var out []interface{}
	if err := l.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getSubmission", new(big.Int).SetUint64(id)); err != nil {
		return Record{}, fmt.Errorf("read submission %d: %w", id, err)
	}
	return decodeRecord(id, out)
}

// Provision creates the on-chain reputation account when it is missing.
func (l *EVMLedger) Provision(ctx context.Context, wallet string) error {
	user, err := parseAuthor(wallet)
	if err != nil {
		return err
	}

	exists, err := l.hasReputation(ctx, user)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = l.transact(ctx, "createUserReputation", user)
	return err
}

func (l *EVMLedger) Apply(ctx context.Context, wallet string, points int, nftMinted bool) error {
	if points <= 0 {
		return reputation.ErrInvalidPoints
	}
	user, err := parseAuthor(wallet)
	if err != nil {
		return err
	}

	exists, err := l.hasReputation(ctx, user)
	if err != nil {
		return err
	}
	if !exists {
		return reputation.ErrAccountNotFound
	}

	_, err = l.transact(ctx, "updateReputation", user, uint64(points), nftMinted)
	return err
}

func (l *EVMLedger) Stats(ctx context.Context, wallet string) (reputation.Account, error) {
	user, err := parseAuthor(wallet)
	if err != nil {
		return reputation.Account{}, err
	}

	exists, err := l.hasReputation(ctx, user)
	if err != nil {
		return reputation.Account{}, err
	}
	if !exists {
		return reputation.Account{}, reputation.ErrAccountNotFound
	}

	var out []interface{}
	if err := l.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getUserStats", user); err != nil {
		return reputation.Account{}, fmt.Errorf("read user stats: %w", err)
	}
	return decodeStats(wallet, out)
}

func (l *EVMLedger) hasReputation(ctx context.Context, user common.Address) (bool, error) {
	var out []interface{}
	if err := l.contract.Call(&bind.CallOpts{Context: ctx}, &out, "hasReputation", user); err != nil {
		return false, fmt.Errorf("read reputation presence: %w", err)
	}
	if len(out) != 1 {
		return false, fmt.Errorf("unexpected hasReputation output length %d", len(out))
	}
	exists, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected hasReputation output type %T", out[0])
	}
	return exists, nil
}

func (l *EVMLedger) transact(ctx context.Context, method string, args ...interface{}) (*types.Receipt, error) {
	l.mu.Lock()
	opts := *l.signer
	opts.Context = ctx
	tx, err := l.contract.Transact(&opts, method, args...)
	l.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTransactionFailed, method, err)
	}

	l.logger.Debug().Str("method", method).Str("tx", tx.Hash().Hex()).Msg("transaction sent")

	waitCtx, cancel := context.WithTimeout(ctx, l.txTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, l.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: wait for %s: %v", ErrTransactionFailed, method, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: %s reverted in %s", ErrTransactionFailed, method, tx.Hash().Hex())
	}
	return receipt, nil
}

func parseAuthor(author string) (common.Address, error) {
	if !common.IsHexAddress(author) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAuthor, author)
	}
	return common.HexToAddress(author), nil
}

// findIndexedID returns the first indexed uint256 topic of the named event.
func findIndexedID(contractABI abi.ABI, event string, receipt *types.Receipt) (uint64, error) {
	definition, ok := contractABI.Events[event]
	if !ok {
		return 0, fmt.Errorf("event %s not in abi", event)
	}

	for _, vLog := range receipt.Logs {
		if len(vLog.Topics) >= 2 && vLog.Topics[0] == definition.ID {
			return new(big.Int).SetBytes(vLog.Topics[1].Bytes()).Uint64(), nil
		}
	}
	return 0, fmt.Errorf("%s event not found in receipt", event)
}

func decodeRecord(id uint64, out []interface{}) (Record, error) {
	if len(out) != 12 {
		return Record{}, fmt.Errorf("unexpected getSubmission output length %d", len(out))
	}

	var (
		record = Record{ID: id}
		ok     bool
		scores [4]uint8
		stamp  uint64
	)
	if record.CaseID, ok = out[0].(uint64); !ok {
		return Record{}, fmt.Errorf("unexpected case id type %T", out[0])
	}
	author, ok := out[1].(common.Address)
	if !ok {
		return Record{}, fmt.Errorf("unexpected author type %T", out[1])
	}
	record.Author = author.Hex()
	for i := range scores {
		if scores[i], ok = out[2+i].(uint8); !ok {
			return Record{}, fmt.Errorf("unexpected score type %T", out[2+i])
		}
	}
	record.Scores = ai.SynopsisScores{
		Clarity:      int(scores[0]),
		Plausibility: int(scores[1]),
		Consistency:  int(scores[2]),
		Relevance:    int(scores[3]),
	}
	if record.IsSafe, ok = out[6].(bool); !ok {
		return Record{}, fmt.Errorf("unexpected is_safe type %T", out[6])
	}

	texts := make([]string, 4)
	for i := range texts {
		if texts[i], ok = out[7+i].(string); !ok {
			return Record{}, fmt.Errorf("unexpected text field type %T", out[7+i])
		}
	}
	record.Flag, record.Theory, record.Summary, record.Rank = texts[0], texts[1], texts[2], texts[3]

	if stamp, ok = out[11].(uint64); !ok {
		return Record{}, fmt.Errorf("unexpected timestamp type %T", out[11])
	}
	record.Timestamp = int64(stamp)
	return record, nil
}

func decodeStats(wallet string, out []interface{}) (reputation.Account, error) {
	if len(out) != 3 {
		return reputation.Account{}, fmt.Errorf("unexpected getUserStats output length %d", len(out))
	}
	values := make([]uint64, 3)
	for i := range values {
		value, ok := out[i].(uint64)
		if !ok {
			return reputation.Account{}, fmt.Errorf("unexpected stats field type %T", out[i])
		}
		values[i] = value
	}
	return reputation.Account{
		Wallet:              wallet,
		ReputationPoints:    int64(values[0]),
		NFTCount:            int64(values[1]),
		SubmissionsAccepted: int64(values[2]),
	}, nil
}
