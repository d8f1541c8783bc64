package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Idea is one crowdfunding campaign as stored by the SparkUp contract.
// IDs are 1-based and dense up to the contract's totalIdeas.
type Idea struct {
	Id              uint64         `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Owner           common.Address `json:"owner"`
	FundGoal        *big.Int       `json:"fund_goal"`        // wei
	Deadline        uint64         `json:"deadline"`         // unix seconds
	AmountCollected *big.Int       `json:"amount_collected"` // wei
	Completed       bool           `json:"completed"`

	// Synthetic marks a locally fabricated record awaiting on-chain
	// confirmation; Stale marks one whose confirmation never arrived
	// within the reconcile window. Neither comes from the contract.
	Synthetic bool `json:"synthetic,omitempty"`
	Stale     bool `json:"stale,omitempty"`
}

// Clone returns a deep copy; big.Int fields are shared nowhere.
func (i Idea) Clone() Idea {
	c := i
	if i.FundGoal != nil {
		c.FundGoal = new(big.Int).Set(i.FundGoal)
	}
	if i.AmountCollected != nil {
		c.AmountCollected = new(big.Int).Set(i.AmountCollected)
	}
	return c
}

// Absent reports whether the record is the contract's zero value,
// i.e. no idea exists at this index.
func (i Idea) Absent() bool {
	return i.Title == "" && i.Owner == (common.Address{}) &&
		(i.FundGoal == nil || i.FundGoal.Sign() == 0) &&
		i.Deadline == 0
}
