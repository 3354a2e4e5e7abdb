package ledger

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// registryABI covers the subset of the case registry contract used by the API.
const registryABI = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "id", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "author", "type": "address"},
      {"indexed": false, "internalType": "uint64", "name": "caseId", "type": "uint64"}
    ],
    "name": "SubmissionSubmitted",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "tokenId", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "recipient", "type": "address"},
      {"indexed": false, "internalType": "uint64", "name": "caseId", "type": "uint64"}
    ],
    "name": "NFTMinted",
    "type": "event"
  },
  {
    "inputs": [
      {"internalType": "uint64", "name": "caseId", "type": "uint64"},
      {"internalType": "address", "name": "author", "type": "address"},
      {"internalType": "uint8", "name": "clarity", "type": "uint8"},
      {"internalType": "uint8", "name": "plausibility", "type": "uint8"},
      {"internalType": "uint8", "name": "consistency", "type": "uint8"},
      {"internalType": "uint8", "name": "relevance", "type": "uint8"},
      {"internalType": "bool", "name": "isSafe", "type": "bool"},
      {"internalType": "string", "name": "flag", "type": "string"},
      {"internalType": "string", "name": "theory", "type": "string"},
      {"internalType": "string", "name": "summary", "type": "string"},
      {"internalType": "string", "name": "rank", "type": "string"},
      {"internalType": "uint64", "name": "timestamp", "type": "uint64"}
    ],
    "name": "submitSubmission",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address", "name": "recipient", "type": "address"},
      {"internalType": "uint64", "name": "caseId", "type": "uint64"},
      {"internalType": "uint8", "name": "score", "type": "uint8"},
      {"internalType": "string", "name": "summary", "type": "string"},
      {"internalType": "string", "name": "rank", "type": "string"},
      {"internalType": "uint64", "name": "timestamp", "type": "uint64"}
    ],
    "name": "mintNFT",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "submissionsCount",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "id", "type": "uint256"}],
    "name": "getSubmission",
    "outputs": [
      {"internalType": "uint64", "name": "caseId", "type": "uint64"},
      {"internalType": "address", "name": "author", "type": "address"},
      {"internalType": "uint8", "name": "clarity", "type": "uint8"},
      {"internalType": "uint8", "name": "plausibility", "type": "uint8"},
      {"internalType": "uint8", "name": "consistency", "type": "uint8"},
      {"internalType": "uint8", "name": "relevance", "type": "uint8"},
      {"internalType": "bool", "name": "isSafe", "type": "bool"},
      {"internalType": "string", "name": "flag", "type": "string"},
      {"internalType": "string", "name": "theory", "type": "string"},
      {"internalType": "string", "name": "summary", "type": "string"},
      {"internalType": "string", "name": "rank", "type": "string"},
      {"internalType": "uint64", "name": "timestamp", "type": "uint64"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "user", "type": "address"}],
    "name": "hasReputation",
    "outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "user", "type": "address"}],
    "name": "createUserReputation",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address", "name": "user", "type": "address"},
      {"internalType": "uint64", "name": "points", "type": "uint64"},
      {"internalType": "bool", "name": "nftMinted", "type": "bool"}
    ],
    "name": "updateReputation",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "user", "type": "address"}],
    "name": "getUserStats",
    "outputs": [
      {"internalType": "uint64", "name": "reputationPoints", "type": "uint64"},
      {"internalType": "uint64", "name": "nftCount", "type": "uint64"},
      {"internalType": "uint64", "name": "submissionsAccepted", "type": "uint64"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

func parseRegistryABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(registryABI))
}
