package service

import (
	"github.com/shopspring/decimal"

	"github.com/storelane/storelane/internal/models"
)

// 定价规则常量
var (
	taxRate               = decimal.NewFromFloat(0.10)
	freeShippingThreshold = decimal.NewFromInt(50)
	flatShippingFee       = decimal.NewFromInt(5)
)

// PricingLine 参与计价的单行
type PricingLine struct {
	UnitPrice models.Money
	Quantity  int
}

// Pricing 计价结果，各项均保留两位小数
type Pricing struct {
	Subtotal models.Money `json:"subtotal"`
	Tax      models.Money `json:"tax"`
	Shipping models.Money `json:"shipping"`
	Total    models.Money `json:"total"`
}

// ComputePricing 按行项计算小计、税费、运费与总额。
// 税费为小计的 10% 四舍五入到分；小计严格大于 50.00 时免运费，否则收取 5.00。
func ComputePricing(lines []PricingLine) Pricing {
	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(line.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(taxRate).Round(2)

	shipping := flatShippingFee
	if subtotal.GreaterThan(freeShippingThreshold) {
		shipping = decimal.Zero
	}

	total := subtotal.Add(tax).Add(shipping).Round(2)

	return Pricing{
		Subtotal: models.NewMoneyFromDecimal(subtotal),
		Tax:      models.NewMoneyFromDecimal(tax),
		Shipping: models.NewMoneyFromDecimal(shipping),
		Total:    models.NewMoneyFromDecimal(total),
	}
}
