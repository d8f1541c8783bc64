package view

import (
	"math/big"
	"strings"
	"time"

	"github.com/MarwanIssa100/SparkUp/internal/model"
	"github.com/ethereum/go-ethereum/common"
)

// Card is one campaign as the page renders it. Pure projection of an
// Idea plus the caller identity; no state of its own.
type Card struct {
	Id          uint64  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Owner       string  `json:"owner"`
	OwnerShort  string  `json:"owner_short"`
	Raised      string  `json:"raised"`   // ETH
	Goal        string  `json:"goal"`     // ETH
	Progress    float64 `json:"progress"` // 0..100
	Deadline    string  `json:"deadline"` // calendar date
	Completed   bool    `json:"completed"`
	Synthetic   bool    `json:"synthetic,omitempty"`
	Stale       bool    `json:"stale,omitempty"`

	// Visibility only; the contract enforces the actual rules.
	CanWithdraw bool `json:"can_withdraw"`
	CanComplete bool `json:"can_complete"`
	CanRefund   bool `json:"can_refund"`
}

// Project derives the card for one record as seen by caller.
func Project(idea model.Idea, caller common.Address) Card {
	isOwner := sameAddress(idea.Owner, caller)
	collected := idea.AmountCollected != nil && idea.AmountCollected.Sign() > 0

	return Card{
		Id:          idea.Id,
		Title:       idea.Title,
		Description: idea.Description,
		Owner:       idea.Owner.Hex(),
		OwnerShort:  shortAddress(idea.Owner),
		Raised:      model.FormatEther(idea.AmountCollected),
		Goal:        model.FormatEther(idea.FundGoal),
		Progress:    Progress(idea.AmountCollected, idea.FundGoal),
		Deadline:    time.Unix(int64(idea.Deadline), 0).UTC().Format("2006-01-02"),
		Completed:   idea.Completed,
		Synthetic:   idea.Synthetic,
		Stale:       idea.Stale,
		CanWithdraw: isOwner && !idea.Completed && collected,
		CanComplete: isOwner && !idea.Completed,
		CanRefund:   !isOwner,
	}
}

// ProjectAll derives cards for the whole snapshot.
func ProjectAll(ideas []model.Idea, caller common.Address) []Card {
	cards := make([]Card, 0, len(ideas))
	for _, idea := range ideas {
		cards = append(cards, Project(idea, caller))
	}
	return cards
}

// Progress is collected/goal as a percentage, clamped to [0, 100].
// A zero goal yields 0, never NaN.
func Progress(collected, goal *big.Int) float64 {
	if goal == nil || goal.Sign() <= 0 || collected == nil || collected.Sign() <= 0 {
		return 0
	}
	ratio := new(big.Rat).SetFrac(collected, goal)
	pct, _ := new(big.Rat).Mul(ratio, big.NewRat(100, 1)).Float64()
	if pct > 100 {
		return 100
	}
	return pct
}

func sameAddress(a, b common.Address) bool {
	return strings.EqualFold(a.Hex(), b.Hex())
}

func shortAddress(a common.Address) string {
	hex := a.Hex()
	return hex[:6] + "..." + hex[len(hex)-4:]
}
