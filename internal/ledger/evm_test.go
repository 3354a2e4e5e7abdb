package ledger

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/casechain-api/internal/reputation"
)

func TestParseRegistryABI(t *testing.T) {
	contractABI, err := parseRegistryABI()
	require.NoError(t, err)

	for _, method := range []string{"submitSubmission", "mintNFT", "submissionsCount", "getSubmission", "hasReputation", "createUserReputation", "updateReputation", "getUserStats"} {
		_, ok := contractABI.Methods[method]
		require.True(t, ok, method)
	}
	require.Len(t, contractABI.Methods["getSubmission"].Outputs, 12)
}

func TestFindIndexedID(t *testing.T) {
	contractABI, err := parseRegistryABI()
	require.NoError(t, err)

	event := contractABI.Events["SubmissionSubmitted"]
	receipt := &types.Receipt{Logs: []*types.Log{
		{Topics: []common.Hash{common.HexToHash("0x01")}},
		{Topics: []common.Hash{event.ID, common.BigToHash(big.NewInt(42)), common.HexToHash("0xabc")}},
	}}

	id, err := findIndexedID(contractABI, "SubmissionSubmitted", receipt)
	require.NoError(t, err)
	require.Equal(t, uint64(42), id)

	_, err = findIndexedID(contractABI, "NFTMinted", receipt)
	require.Error(t, err)
}

func TestDecodeRecord(t *testing.T) {
	author := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	out := []interface{}{
		uint64(7), author, uint8(9), uint8(8), uint8(7), uint8(9), true,
		"", "theory", "summary", "Silver", uint64(1700000000),
	}

	record, err := decodeRecord(3, out)
	require.NoError(t, err)
	require.Equal(t, uint64(3), record.ID)
	require.Equal(t, uint64(7), record.CaseID)
	require.Equal(t, author.Hex(), record.Author)
	require.Equal(t, 33, record.Scores.Total())
	require.Equal(t, "Silver", record.Rank)
	require.Equal(t, int64(1700000000), record.Timestamp)

	_, err = decodeRecord(3, out[:5])
	require.Error(t, err)
}

func TestDecodeStats(t *testing.T) {
	account, err := decodeStats("0xabc", []interface{}{uint64(50), uint64(1), uint64(2)})
	require.NoError(t, err)
	require.Equal(t, reputation.Account{Wallet: "0xabc", ReputationPoints: 50, NFTCount: 1, SubmissionsAccepted: 2}, account)

	_, err = decodeStats("0xabc", []interface{}{"50", uint64(1), uint64(2)})
	require.Error(t, err)
}

func TestParseAuthor(t *testing.T) {
	_, err := parseAuthor("0x00000000000000000000000000000000000000aa")
	require.NoError(t, err)

	_, err = parseAuthor("alice")
	require.True(t, errors.Is(err, ErrInvalidAuthor))
}
