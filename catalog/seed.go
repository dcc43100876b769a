package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/chainpress/paywall/types"
)

// Seed returns the demo article set used by the example deployment and the
// tests. Prices are in whole STX.
func Seed() []*types.Content {
	return []*types.Content{
		{
			ID:          "1",
			Title:       "The Quiet Revolution: How Decentralized Identity Is Reshaping Digital Trust",
			Excerpt:     "A new wave of protocols promises to return ownership of personal data to individuals.",
			Body:        "In an era of data breaches and surveillance capitalism, a new wave of protocols promises to return ownership of personal data to individuals...",
			Price:       decimal.RequireFromString("0.15"),
			Currency:    types.CurrencySTX,
			Owner:       "SP248QXA1FSS883DNGSZ1A47DP4WF5SEBNST9PXWP",
			AuthorID:    "a1",
			AuthorName:  "Elena Vasquez",
			PublishedAt: "2026-02-12",
			Reads:       12480,
		},
		{
			ID:          "2",
			Title:       "The Last Glacier: A Journey to the Edge of Climate Change",
			Excerpt:     "Deep in the Peruvian Andes, the Quelccaya ice cap tells a story 1,800 years in the making.",
			Body:        "Deep in the Peruvian Andes, the Quelccaya ice cap tells a story 1,800 years in the making, and its final chapter is being written now...",
			Price:       decimal.RequireFromString("0.25"),
			Currency:    types.CurrencySTX,
			Owner:       "SP2QZHZB0HH0ZVXTPT6SRY821W2Z6TGZ67F4BHKHY",
			AuthorID:    "a2",
			AuthorName:  "Marcus Chen",
			PublishedAt: "2026-02-10",
			Reads:       9340,
		},
		{
			ID:          "3",
			Title:       "Priced Out: The Hidden Algorithms Behind What You Pay",
			Excerpt:     "Dynamic pricing algorithms analyze multiple data points to set personalized prices.",
			Body:        "Every time you shop online, an invisible auction decides what you pay...",
			Price:       decimal.RequireFromString("0.10"),
			Currency:    types.CurrencySTX,
			Owner:       "SP22N6X8BJSKVPFMDDP2ZEKSDC43EMBWTBC8SQFG3",
			AuthorID:    "a3",
			AuthorName:  "Sarah Okonkwo",
			PublishedAt: "2026-02-08",
			Reads:       15720,
		},
	}
}

// NewSeeded creates an in-memory catalog pre-loaded with the demo articles.
func NewSeeded() *Memory {
	return NewMemory(Seed()...)
}
