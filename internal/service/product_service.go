package service

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/storelane/storelane/internal/constants"
	"github.com/storelane/storelane/internal/models"
	"github.com/storelane/storelane/internal/repository"
)

// ProductService 商品业务服务
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// CreateProductInput 创建/更新商品输入
type CreateProductInput struct {
	CategoryID    uint
	Slug          string
	Name          string
	Description   string
	PriceAmount   decimal.Decimal
	DiscountPrice *decimal.Decimal
	Images        []string
	Tags          []string
	Stock         *int
	IsActive      *bool
	SortOrder     int
}

// ListPublic 获取公开商品列表
func (s *ProductService) ListPublic(categoryID, search, stockStatus string, page, pageSize int) ([]models.Product, int64, error) {
	filter := repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		CategoryID:   categoryID,
		Search:       search,
		StockStatus:  normalizeStockStatus(stockStatus),
		OnlyActive:   true,
		WithCategory: true,
	}
	return s.repo.List(filter)
}

// GetPublicBySlug 获取公开商品详情
func (s *ProductService) GetPublicBySlug(slug string) (*models.Product, error) {
	product, err := s.repo.GetBySlug(slug, true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// ListAdmin 获取后台商品列表
func (s *ProductService) ListAdmin(categoryID, search, stockStatus string, page, pageSize int) ([]models.Product, int64, error) {
	filter := repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		CategoryID:   categoryID,
		Search:       search,
		StockStatus:  normalizeStockStatus(stockStatus),
		OnlyActive:   false,
		WithCategory: true,
	}
	return s.repo.List(filter)
}

// GetAdminByID 获取后台商品详情
func (s *ProductService) GetAdminByID(id string) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(input CreateProductInput) (*models.Product, error) {
	priceAmount := input.PriceAmount.Round(2)
	if priceAmount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrProductPriceInvalid
	}
	discountPrice, err := normalizeDiscountPrice(priceAmount, input.DiscountPrice)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountBySlug(input.Slug, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	stock := 0
	if input.Stock != nil {
		stock = *input.Stock
	}
	if stock < 0 {
		return nil, ErrInvalidQuantity
	}

	product := models.Product{
		CategoryID:    input.CategoryID,
		Slug:          strings.TrimSpace(input.Slug),
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		PriceAmount:   models.NewMoneyFromDecimal(priceAmount),
		DiscountPrice: discountPrice,
		Images:        models.StringArray(input.Images),
		Tags:          models.StringArray(input.Tags),
		Stock:         stock,
		InStock:       stock > 0,
		IsActive:      isActive,
		SortOrder:     input.SortOrder,
	}
	if err := s.repo.Create(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update 更新商品
func (s *ProductService) Update(id string, input CreateProductInput) (*models.Product, error) {
	priceAmount := input.PriceAmount.Round(2)
	if priceAmount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrProductPriceInvalid
	}
	discountPrice, err := normalizeDiscountPrice(priceAmount, input.DiscountPrice)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}

	count, err := s.repo.CountBySlug(input.Slug, &id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	product.CategoryID = input.CategoryID
	product.Slug = strings.TrimSpace(input.Slug)
	product.Name = strings.TrimSpace(input.Name)
	product.Description = input.Description
	product.PriceAmount = models.NewMoneyFromDecimal(priceAmount)
	product.DiscountPrice = discountPrice
	product.Images = models.StringArray(input.Images)
	product.Tags = models.StringArray(input.Tags)
	product.SortOrder = input.SortOrder
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.Stock != nil {
		stock := *input.Stock
		if stock < 0 {
			return nil, ErrInvalidQuantity
		}
		product.Stock = stock
		product.InStock = stock > 0
	}

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Restock 增加商品库存
func (s *ProductService) Restock(id string, quantity int) (*models.Product, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	if _, err := s.repo.IncreaseStock(product.ID, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetByID(strconv.FormatUint(uint64(product.ID), 10))
}

// Delete 删除商品
func (s *ProductService) Delete(id string) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrNotFound
	}
	return s.repo.Delete(id)
}

// normalizeDiscountPrice 校验折扣价：必须为正且低于原价
func normalizeDiscountPrice(price decimal.Decimal, raw *decimal.Decimal) (*models.Money, error) {
	if raw == nil {
		return nil, nil
	}
	discount := raw.Round(2)
	if discount.LessThanOrEqual(decimal.Zero) || discount.GreaterThanOrEqual(price) {
		return nil, ErrProductPriceInvalid
	}
	money := models.NewMoneyFromDecimal(discount)
	return &money, nil
}

func normalizeStockStatus(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case constants.ProductStockStatusInStock, constants.ProductStockStatusLowStock, constants.ProductStockStatusOutOfStock:
		return value
	default:
		return ""
	}
}
