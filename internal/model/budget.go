package model

import "github.com/shopspring/decimal"

// Budget is a monthly spending limit for one category. At most one budget
// exists per category; setting a new limit replaces the old one.
type Budget struct {
	CategoryID string          `json:"category_id"`
	Limit      decimal.Decimal `json:"limit"`
}
