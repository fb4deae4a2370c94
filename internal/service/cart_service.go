package service

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/storelane/storelane/internal/models"
	"github.com/storelane/storelane/internal/repository"
)

// CartItemDetail 购物车项详情（用于响应）
type CartItemDetail struct {
	ItemID       uint         `json:"item_id"`
	ProductID    uint         `json:"product_id"`
	ProductName  string       `json:"product_name"`
	ProductImage string       `json:"product_image"`
	ProductSlug  string       `json:"product_slug"`
	UnitPrice    models.Money `json:"unit_price"`
	Quantity     int          `json:"quantity"`
	LineTotal    models.Money `json:"line_total"`
	InStock      bool         `json:"in_stock"`
	Stock        int          `json:"stock"`
}

// CartView 购物车视图：行项加计价汇总
type CartView struct {
	CartID  uint             `json:"cart_id"`
	Items   []CartItemDetail `json:"items"`
	Pricing Pricing          `json:"pricing"`
}

// AddCartItemInput 加购输入
type AddCartItemInput struct {
	UserID    uint
	ProductID uint
	Quantity  int
}

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart 获取用户购物车，不存在时惰性创建
func (s *CartService) GetCart(userID uint) (*CartView, error) {
	if userID == 0 {
		return nil, ErrCartNotFound
	}
	cart, err := s.cartRepo.GetOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}
	items, err := s.cartRepo.ListItems(cart.ID)
	if err != nil {
		return nil, err
	}

	details := make([]CartItemDetail, 0, len(items))
	lines := make([]PricingLine, 0, len(items))
	for _, item := range items {
		product := item.Product
		if product == nil || product.ID == 0 {
			p, err := s.productRepo.GetByID(strconv.FormatUint(uint64(item.ProductID), 10))
			if err != nil {
				return nil, err
			}
			product = p
		}
		if product == nil || !product.IsActive {
			// 商品已下架，清理残留行
			_, _ = s.cartRepo.DeleteItem(cart.ID, item.ID)
			continue
		}

		unitPrice := product.EffectivePrice()
		lineTotal := models.NewMoneyFromDecimal(unitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))))
		details = append(details, CartItemDetail{
			ItemID:       item.ID,
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductImage: product.MainImage(),
			ProductSlug:  product.Slug,
			UnitPrice:    unitPrice,
			Quantity:     item.Quantity,
			LineTotal:    lineTotal,
			InStock:      product.InStock,
			Stock:        product.Stock,
		})
		lines = append(lines, PricingLine{UnitPrice: unitPrice, Quantity: item.Quantity})
	}

	return &CartView{
		CartID:  cart.ID,
		Items:   details,
		Pricing: ComputePricing(lines),
	}, nil
}

// AddItem 加购；同商品已在购物车时累加数量，合计不得超过库存
func (s *CartService) AddItem(input AddCartItemInput) (*CartView, error) {
	if input.UserID == 0 {
		return nil, ErrCartNotFound
	}
	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	product, err := s.productRepo.GetByID(strconv.FormatUint(uint64(input.ProductID), 10))
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}

	cart, err := s.cartRepo.GetOrCreateByUser(input.UserID)
	if err != nil {
		return nil, err
	}

	existing, err := s.cartRepo.GetItemByProduct(cart.ID, input.ProductID)
	if err != nil {
		return nil, err
	}
	requested := input.Quantity
	if existing != nil {
		requested += existing.Quantity
	}
	if requested > product.Stock {
		return nil, &StockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.Stock,
			Requested:   requested,
		}
	}

	item := &models.CartItem{
		CartID:    cart.ID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
	}
	if err := s.cartRepo.UpsertItem(item); err != nil {
		return nil, err
	}
	_ = s.cartRepo.TouchCart(cart.ID)
	return s.GetCart(input.UserID)
}

// UpdateItemQuantity 替换购物车项数量
func (s *CartService) UpdateItemQuantity(userID, itemID uint, quantity int) (*CartView, error) {
	if userID == 0 {
		return nil, ErrCartNotFound
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartItemNotFound
	}
	item, err := s.cartRepo.GetItem(cart.ID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}
	product, err := s.productRepo.GetByID(strconv.FormatUint(uint64(item.ProductID), 10))
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}
	if quantity > product.Stock {
		return nil, &StockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.Stock,
			Requested:   quantity,
		}
	}
	affected, err := s.cartRepo.UpdateItemQuantity(cart.ID, itemID, quantity)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrCartItemNotFound
	}
	_ = s.cartRepo.TouchCart(cart.ID)
	return s.GetCart(userID)
}

// RemoveItem 删除购物车项，已不存在时视为成功
func (s *CartService) RemoveItem(userID, itemID uint) (*CartView, error) {
	if userID == 0 {
		return nil, ErrCartNotFound
	}
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		if _, err := s.cartRepo.DeleteItem(cart.ID, itemID); err != nil {
			return nil, err
		}
		_ = s.cartRepo.TouchCart(cart.ID)
	}
	return s.GetCart(userID)
}

// ClearCart 清空购物车，空购物车重复清空不报错
func (s *CartService) ClearCart(userID uint) (*CartView, error) {
	if userID == 0 {
		return nil, ErrCartNotFound
	}
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		if err := s.cartRepo.ClearItems(cart.ID); err != nil {
			return nil, err
		}
		_ = s.cartRepo.TouchCart(cart.ID)
	}
	return s.GetCart(userID)
}
