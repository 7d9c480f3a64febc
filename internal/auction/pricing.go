package auction

import (
	"time"

	"github.com/shopspring/decimal"
)

// amountPrecision is the number of fractional digits kept after a division (wei scale).
const amountPrecision = 18

const secondsPerHour = 3600

// DecayedPrice is the dutch price at time at.
//
// The drop is split into whole hours and the partial hour so that the partial term is
// truncated once instead of compounding per-second rounding. The price is startPrice
// before start, frozen at its end-time value after end, and never below reserve.
func DecayedPrice(startPrice, reserve decimal.Decimal, dropPerHourBps int64, start, end, at time.Time) decimal.Decimal {
	if !at.After(start) {
		return startPrice
	}
	if at.After(end) {
		at = end
	}
	elapsed := int64(at.Sub(start) / time.Second)
	hours := elapsed / secondsPerHour
	rem := elapsed % secondsPerHour

	perHour := bps(startPrice, dropPerHourBps)
	drop := perHour.Mul(decimal.NewFromInt(hours))
	partial, _ := perHour.Mul(decimal.NewFromInt(rem)).QuoRem(decimal.NewFromInt(secondsPerHour), amountPrecision)
	drop = drop.Add(partial)
	if drop.IsNegative() {
		drop = decimal.Zero
	}

	price := startPrice.Sub(drop)
	if price.LessThan(reserve) {
		return reserve
	}
	return price
}

// ReserveReachedAt is the first instant at which the decayed price hits the floor.
// ok is false when the price never drops (zero rate or zero start price).
func ReserveReachedAt(startPrice, reserve decimal.Decimal, dropPerHourBps int64, start time.Time) (time.Time, bool) {
	perHour := bps(startPrice, dropPerHourBps)
	if !perHour.IsPositive() {
		return time.Time{}, false
	}
	gap := startPrice.Sub(reserve)
	if !gap.IsPositive() {
		return start, true
	}
	secs := gap.Mul(decimal.NewFromInt(secondsPerHour)).Div(perHour).Ceil()
	return start.Add(time.Duration(secs.IntPart()) * time.Second), true
}
