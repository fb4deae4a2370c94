package service

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/storelane/storelane/internal/models"
)

func money(t *testing.T, amount string) models.Money {
	t.Helper()
	m, err := models.NewMoneyFromString(amount)
	if err != nil {
		t.Fatalf("parse money %q failed: %v", amount, err)
	}
	return m
}

func TestComputePricingAppliesFlatShipping(t *testing.T) {
	pricing := ComputePricing([]PricingLine{
		{UnitPrice: money(t, "10.00"), Quantity: 2},
	})

	if got := pricing.Subtotal.String(); got != "20.00" {
		t.Fatalf("subtotal want 20.00 got %s", got)
	}
	if got := pricing.Tax.String(); got != "2.00" {
		t.Fatalf("tax want 2.00 got %s", got)
	}
	if got := pricing.Shipping.String(); got != "5.00" {
		t.Fatalf("shipping want 5.00 got %s", got)
	}
	if got := pricing.Total.String(); got != "27.00" {
		t.Fatalf("total want 27.00 got %s", got)
	}
}

func TestComputePricingShippingBoundary(t *testing.T) {
	// 小计恰好 50.00 不免运费
	atThreshold := ComputePricing([]PricingLine{
		{UnitPrice: money(t, "50.00"), Quantity: 1},
	})
	if got := atThreshold.Shipping.String(); got != "5.00" {
		t.Fatalf("shipping at 50.00 want 5.00 got %s", got)
	}
	if got := atThreshold.Total.String(); got != "60.00" {
		t.Fatalf("total at 50.00 want 60.00 got %s", got)
	}

	// 严格大于 50.00 免运费
	aboveThreshold := ComputePricing([]PricingLine{
		{UnitPrice: money(t, "50.01"), Quantity: 1},
	})
	if got := aboveThreshold.Shipping.String(); got != "0.00" {
		t.Fatalf("shipping above 50.00 want 0.00 got %s", got)
	}
	if got := aboveThreshold.Total.String(); got != "55.01" {
		t.Fatalf("total above 50.00 want 55.01 got %s", got)
	}
}

func TestComputePricingRoundsTax(t *testing.T) {
	// 33.33 * 0.10 = 3.333 -> 3.33
	pricing := ComputePricing([]PricingLine{
		{UnitPrice: money(t, "33.33"), Quantity: 1},
	})
	if got := pricing.Tax.String(); got != "3.33" {
		t.Fatalf("tax want 3.33 got %s", got)
	}

	// 0.05 * 9 = 0.45，税 0.045 -> 0.05
	half := ComputePricing([]PricingLine{
		{UnitPrice: money(t, "0.05"), Quantity: 9},
	})
	if got := half.Tax.String(); got != "0.05" {
		t.Fatalf("tax want 0.05 got %s", got)
	}
}

func TestComputePricingEmptyCart(t *testing.T) {
	pricing := ComputePricing(nil)
	if !pricing.Subtotal.Decimal.Equal(decimal.Zero) {
		t.Fatalf("subtotal want 0 got %s", pricing.Subtotal.String())
	}
	if got := pricing.Shipping.String(); got != "5.00" {
		t.Fatalf("shipping want 5.00 got %s", got)
	}
	if got := pricing.Total.String(); got != "5.00" {
		t.Fatalf("total want 5.00 got %s", got)
	}
}

func TestComputePricingSkipsNonPositiveQuantities(t *testing.T) {
	pricing := ComputePricing([]PricingLine{
		{UnitPrice: money(t, "10.00"), Quantity: 0},
		{UnitPrice: money(t, "10.00"), Quantity: -3},
		{UnitPrice: money(t, "10.00"), Quantity: 1},
	})
	if got := pricing.Subtotal.String(); got != "10.00" {
		t.Fatalf("subtotal want 10.00 got %s", got)
	}
}
