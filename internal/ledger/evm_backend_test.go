package ledger

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/casechain-api/internal/reputation"
	"github.com/noah-isme/casechain-api/pkg/ai"
)

const testContract = "0x00000000000000000000000000000000000000c0"

type sentTx struct {
	method string
	nonce  uint64
	args   []interface{}
}

// chainStub answers the registry contract in memory. Every sent transaction is
// mined immediately.
type chainStub struct {
	t   *testing.T
	abi abi.ABI

	mu         sync.Mutex
	nonce      uint64
	sent       []sentTx
	receipts   map[common.Hash]*types.Receipt
	records    [][]interface{}
	accounts   map[common.Address][3]uint64
	revert     map[string]bool
	omitEvents bool
}

func newChainStub(t *testing.T) *chainStub {
	t.Helper()
	contractABI, err := parseRegistryABI()
	require.NoError(t, err)
	return &chainStub{
		t:        t,
		abi:      contractABI,
		receipts: make(map[common.Hash]*types.Receipt),
		accounts: make(map[common.Address][3]uint64),
		revert:   make(map[string]bool),
	}
}

func (s *chainStub) decode(data []byte) (*abi.Method, []interface{}) {
	method, err := s.abi.MethodById(data[:4])
	require.NoError(s.t, err)
	args, err := method.Inputs.Unpack(data[4:])
	require.NoError(s.t, err)
	return method, args
}

func (s *chainStub) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (s *chainStub) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return []byte{0x60}, nil
}

func (s *chainStub) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	method, args := s.decode(call.Data)
	switch method.Name {
	case "hasReputation":
		_, ok := s.accounts[args[0].(common.Address)]
		return method.Outputs.Pack(ok)
	case "getUserStats":
		stats := s.accounts[args[0].(common.Address)]
		return method.Outputs.Pack(stats[0], stats[1], stats[2])
	case "submissionsCount":
		return method.Outputs.Pack(big.NewInt(int64(len(s.records))))
	case "getSubmission":
		return method.Outputs.Pack(s.records[args[0].(*big.Int).Uint64()]...)
	}
	return nil, errors.New("unexpected call " + method.Name)
}

func (s *chainStub) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(1)}, nil
}

func (s *chainStub) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nonce, nil
}

func (s *chainStub) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (s *chainStub) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (s *chainStub) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	return 200_000, nil
}

func (s *chainStub) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	method, args := s.decode(tx.Data())
	s.sent = append(s.sent, sentTx{method: method.Name, nonce: tx.Nonce(), args: args})
	s.nonce++

	receipt := &types.Receipt{TxHash: tx.Hash(), Status: types.ReceiptStatusSuccessful}
	if s.revert[method.Name] {
		receipt.Status = types.ReceiptStatusFailed
		s.receipts[tx.Hash()] = receipt
		return nil
	}

	switch method.Name {
	case "submitSubmission":
		id := int64(len(s.records))
		s.records = append(s.records, args)
		if !s.omitEvents {
			receipt.Logs = append(receipt.Logs, &types.Log{Topics: []common.Hash{
				s.abi.Events["SubmissionSubmitted"].ID,
				common.BigToHash(big.NewInt(id)),
				common.BytesToHash(args[1].(common.Address).Bytes()),
			}})
		}
	case "createUserReputation":
		s.accounts[args[0].(common.Address)] = [3]uint64{}
	case "updateReputation":
		user := args[0].(common.Address)
		stats := s.accounts[user]
		stats[0] += args[1].(uint64)
		if args[2].(bool) {
			stats[1]++
		}
		stats[2]++
		s.accounts[user] = stats
	}
	s.receipts[tx.Hash()] = receipt
	return nil
}

func (s *chainStub) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if receipt, ok := s.receipts[txHash]; ok {
		return receipt, nil
	}
	return nil, ethereum.NotFound
}

func (s *chainStub) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (s *chainStub) SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	return nil, errors.New("subscriptions not supported")
}

func (s *chainStub) methods() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.sent))
	for _, tx := range s.sent {
		names = append(names, tx.method)
	}
	return names
}

func newStubLedger(t *testing.T, chain *chainStub) *EVMLedger {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(1337))
	require.NoError(t, err)

	l, err := newEVMLedger(chain, signer, EVMConfig{ContractAddress: testContract, Logger: zerolog.Nop()})
	require.NoError(t, err)
	return l
}

func anchorRequest(author string) AnchorRequest {
	return AnchorRequest{
		CaseID:    4,
		Author:    author,
		Scores:    ai.SynopsisScores{Clarity: 9, Plausibility: 8, Consistency: 8, Relevance: 9},
		IsSafe:    true,
		Theory:    "Witness said a<b",
		Summary:   "Solid",
		Rank:      "Silver",
		Timestamp: 1700000000,
	}
}

const testAuthor = "0x00000000000000000000000000000000000000aa"

func TestEVMAnchorReadsSubmissionIDFromEvent(t *testing.T) {
	chain := newChainStub(t)
	l := newStubLedger(t, chain)
	ctx := context.Background()

	require.NoError(t, l.CheckDeployed(ctx))

	first, err := l.Anchor(ctx, anchorRequest(testAuthor))
	require.NoError(t, err)
	second, err := l.Anchor(ctx, anchorRequest(testAuthor))
	require.NoError(t, err)

	require.Equal(t, uint64(0), first.ID)
	require.Equal(t, uint64(1), second.ID)
	require.NotEmpty(t, first.TxDigest)
	require.NotEqual(t, first.TxDigest, second.TxDigest)

	record, err := l.FetchByID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Witness said a<b", record.Theory)
	require.Equal(t, common.HexToAddress(testAuthor).Hex(), record.Author)
	require.Equal(t, 34, record.Scores.Total())

	_, err = l.FetchByID(ctx, 2)
	require.True(t, errors.Is(err, ErrNotFound))

	records, err := l.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, uint64(1), records[1].ID)
}

func TestEVMAnchorRevertedReceiptFails(t *testing.T) {
	chain := newChainStub(t)
	chain.revert["submitSubmission"] = true
	l := newStubLedger(t, chain)

	_, err := l.Anchor(context.Background(), anchorRequest(testAuthor))
	require.True(t, errors.Is(err, ErrTransactionFailed))
	require.ErrorContains(t, err, "reverted")
}

func TestEVMAnchorWithoutSubmissionEventFails(t *testing.T) {
	chain := newChainStub(t)
	chain.omitEvents = true
	l := newStubLedger(t, chain)

	_, err := l.Anchor(context.Background(), anchorRequest(testAuthor))
	require.True(t, errors.Is(err, ErrTransactionFailed))
	require.ErrorContains(t, err, "SubmissionSubmitted")
}

func TestEVMAnchorRejectsNonAddressAuthor(t *testing.T) {
	chain := newChainStub(t)
	l := newStubLedger(t, chain)

	_, err := l.Anchor(context.Background(), anchorRequest("alice"))
	require.True(t, errors.Is(err, ErrInvalidAuthor))
	require.Empty(t, chain.methods())
}

func TestEVMConcurrentTransactionsUseSequentialNonces(t *testing.T) {
	chain := newChainStub(t)
	l := newStubLedger(t, chain)

	const writers = 6
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Anchor(context.Background(), anchorRequest(testAuthor))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	chain.mu.Lock()
	defer chain.mu.Unlock()
	require.Len(t, chain.sent, writers)
	for i, tx := range chain.sent {
		require.Equal(t, uint64(i), tx.nonce)
	}
}

func TestEVMProvisionCreatesAccountOnlyWhenMissing(t *testing.T) {
	chain := newChainStub(t)
	l := newStubLedger(t, chain)
	ctx := context.Background()

	require.NoError(t, l.Provision(ctx, testAuthor))
	require.NoError(t, l.Provision(ctx, testAuthor))
	require.Equal(t, []string{"createUserReputation"}, chain.methods())

	account, err := l.Stats(ctx, testAuthor)
	require.NoError(t, err)
	require.Equal(t, reputation.Account{Wallet: testAuthor}, account)
}

func TestEVMApplyRequiresAccount(t *testing.T) {
	chain := newChainStub(t)
	l := newStubLedger(t, chain)
	ctx := context.Background()

	err := l.Apply(ctx, testAuthor, 10, false)
	require.True(t, errors.Is(err, reputation.ErrAccountNotFound))
	require.Empty(t, chain.methods())

	_, err = l.Stats(ctx, testAuthor)
	require.True(t, errors.Is(err, reputation.ErrAccountNotFound))

	require.True(t, errors.Is(l.Apply(ctx, testAuthor, 0, false), reputation.ErrInvalidPoints))

	require.NoError(t, l.Provision(ctx, testAuthor))
	require.NoError(t, l.Apply(ctx, testAuthor, 15, true))

	account, err := l.Stats(ctx, testAuthor)
	require.NoError(t, err)
	require.Equal(t, reputation.Account{Wallet: testAuthor, ReputationPoints: 15, NFTCount: 1, SubmissionsAccepted: 1}, account)
}

func TestEVMApplyRevertedReceiptFails(t *testing.T) {
	chain := newChainStub(t)
	chain.revert["updateReputation"] = true
	l := newStubLedger(t, chain)
	ctx := context.Background()

	require.NoError(t, l.Provision(ctx, testAuthor))
	err := l.Apply(ctx, testAuthor, 10, false)
	require.True(t, errors.Is(err, ErrTransactionFailed))
}
