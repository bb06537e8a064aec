package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/RCodeTree/market-service/internal/model"
	"github.com/RCodeTree/market-service/pkg/search"

	"gorm.io/gorm"
)

// ProductService 商品业务逻辑：列表检索、详情、分类、评价
type ProductService struct {
	db     *gorm.DB
	search *search.Client // 可为 nil，此时关键字搜索走数据库 LIKE
}

func NewProductService(db *gorm.DB, sc *search.Client) *ProductService {
	return &ProductService{db: db, search: sc}
}

// ProductView 商品列表条目
type ProductView struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Subtitle      string  `json:"subtitle"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"originalPrice"`
	Description   string  `json:"description"`
	Image         string  `json:"image"`
	Sales         int64   `json:"sales"`
	Rating        float64 `json:"rating"`
	ReviewCount   int64   `json:"reviewCount"`
	Stock         int     `json:"stock"`
	IsHot         bool    `json:"isHot"`
	IsNew         bool    `json:"isNew"`
	IsRecommend   bool    `json:"isRecommend"`
}

func toProductView(p model.Product) ProductView {
	return ProductView{
		ID:            p.ID,
		Name:          p.Name,
		Subtitle:      p.Subtitle,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Description:   p.Description,
		Image:         p.MainImage,
		Sales:         p.SalesCount,
		Rating:        p.RatingAvg,
		ReviewCount:   p.ReviewCount,
		Stock:         p.Stock,
		IsHot:         p.IsHot,
		IsNew:         p.IsNew,
		IsRecommend:   p.IsRecommend,
	}
}

func toProductViews(products []model.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}
	return views
}

type ProductListQuery struct {
	Page       int
	PageSize   int
	Keyword    string
	CategoryID int64
	PriceRange string // "min-max" 或 "min+"
	Sort       string // default / price_asc / price_desc / sales
}

type ProductListResult struct {
	Products []ProductView `json:"products"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}

// List 商品列表
// 有关键字且 ES 可用时先到 ES 拿候选 ID，ES 失败再退回数据库 LIKE
func (s *ProductService) List(ctx context.Context, q ProductListQuery) (*ProductListResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 24
	}

	query := s.db.Model(&model.Product{}).Where("status = 1")

	if q.Keyword != "" {
		if ids, ok := s.searchIDs(ctx, q.Keyword); ok {
			if len(ids) == 0 {
				return &ProductListResult{Products: []ProductView{}, Total: 0, Page: q.Page, PageSize: q.PageSize}, nil
			}
			query = query.Where("id IN ?", ids)
		} else {
			like := "%" + q.Keyword + "%"
			query = query.Where("name LIKE ? OR description LIKE ? OR keywords LIKE ? OR tags LIKE ?", like, like, like, like)
		}
	}

	if q.CategoryID > 0 {
		query = query.Where("category_id = ?", q.CategoryID)
	}

	if q.PriceRange != "" {
		if min, max, ok := parsePriceRange(q.PriceRange); ok {
			query = query.Where("price >= ?", min)
			if max > 0 {
				query = query.Where("price <= ?", max)
			}
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	switch q.Sort {
	case "price_asc":
		query = query.Order("price ASC")
	case "price_desc":
		query = query.Order("price DESC")
	case "sales":
		query = query.Order("sales_count DESC")
	default:
		query = query.Order("is_recommend DESC, sales_count DESC, id DESC")
	}

	var products []model.Product
	err := query.Limit(q.PageSize).Offset((q.Page - 1) * q.PageSize).Find(&products).Error
	if err != nil {
		return nil, err
	}

	return &ProductListResult{
		Products: toProductViews(products),
		Total:    total,
		Page:     q.Page,
		PageSize: q.PageSize,
	}, nil
}

func (s *ProductService) searchIDs(ctx context.Context, keyword string) ([]int64, bool) {
	if s.search == nil {
		return nil, false
	}
	ids, err := s.search.SearchIDs(ctx, keyword, 200)
	if err != nil {
		log.Printf("ES 搜索失败，退回数据库检索: %v", err)
		return nil, false
	}
	return ids, true
}

// parsePriceRange 解析 "100-500" 或 "1000+" 形式的价格区间
func parsePriceRange(raw string) (min, max float64, ok bool) {
	raw = strings.TrimSpace(raw)
	if strings.HasSuffix(raw, "+") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "+"), 64)
		if err != nil {
			return 0, 0, false
		}
		return v, 0, true
	}
	parts := strings.SplitN(raw, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lo, err1 := strconv.ParseFloat(parts[0], 64)
	hi, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lo, hi, true
}

// SpecView 商品规格（规格名 + 可选值）
type SpecView struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// ProductDetailView 商品详情
type ProductDetailView struct {
	ProductView
	Images           []string          `json:"images"`
	DetailHTML       string            `json:"detailHtml"`
	Specifications   []SpecView        `json:"specifications"`
	Parameters       map[string]string `json:"parameters"`
	ServiceGuarantee string            `json:"serviceGuarantee"`
}

// Detail 商品详情
// 没有单独图片记录时用主图兜底，保证 images 非空
func (s *ProductService) Detail(productID int64) (*ProductDetailView, error) {
	var p model.Product
	if err := s.db.Where("id = ? AND status = 1", productID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("商品不存在")
		}
		return nil, err
	}

	var imageRows []model.ProductImage
	if err := s.db.Where("product_id = ?", productID).Order("is_main DESC, sort_order ASC").Find(&imageRows).Error; err != nil {
		return nil, err
	}
	images := make([]string, 0, len(imageRows))
	for _, img := range imageRows {
		images = append(images, img.ImageURL)
	}
	if len(images) == 0 && p.MainImage != "" {
		images = append(images, p.MainImage)
	}

	specs, err := s.loadSpecs(productID)
	if err != nil {
		return nil, err
	}

	params := map[string]string{}
	if p.Attributes != "" {
		if err := json.Unmarshal([]byte(p.Attributes), &params); err != nil {
			log.Printf("商品 %d 属性 JSON 解析失败: %v", productID, err)
			params = map[string]string{}
		}
	}

	return &ProductDetailView{
		ProductView:      toProductView(p),
		Images:           images,
		DetailHTML:       p.DetailHTML,
		Specifications:   specs,
		Parameters:       params,
		ServiceGuarantee: p.ServiceGuarantee,
	}, nil
}

func (s *ProductService) loadSpecs(productID int64) ([]SpecView, error) {
	var names []model.SpecName
	if err := s.db.Where("product_id = ?", productID).Order("sort_order ASC").Find(&names).Error; err != nil {
		return nil, err
	}
	specs := make([]SpecView, 0, len(names))
	for _, n := range names {
		var values []model.SpecValue
		if err := s.db.Where("spec_name_id = ?", n.ID).Order("sort_order ASC").Find(&values).Error; err != nil {
			return nil, err
		}
		sv := SpecView{Name: n.SpecName, Values: make([]string, 0, len(values))}
		for _, v := range values {
			sv.Values = append(sv.Values, v.SpecValue)
		}
		specs = append(specs, sv)
	}
	return specs, nil
}

// Hot 热门商品，exclude 用于详情页排除当前商品
func (s *ProductService) Hot(limit int, exclude int64) ([]ProductView, error) {
	return s.flagged("is_hot = true", limit, exclude)
}

// New 新品
func (s *ProductService) New(limit int, exclude int64) ([]ProductView, error) {
	return s.flagged("is_new = true", limit, exclude)
}

// Recommended 推荐商品
func (s *ProductService) Recommended(limit int, exclude int64) ([]ProductView, error) {
	return s.flagged("is_recommend = true", limit, exclude)
}

func (s *ProductService) flagged(cond string, limit int, exclude int64) ([]ProductView, error) {
	if limit < 1 {
		limit = 8
	}
	query := s.db.Where("status = 1").Where(cond)
	if exclude > 0 {
		query = query.Where("id <> ?", exclude)
	}
	var products []model.Product
	if err := query.Order("sales_count DESC").Limit(limit).Find(&products).Error; err != nil {
		return nil, err
	}
	return toProductViews(products), nil
}

// Categories 一级分类列表
func (s *ProductService) Categories() ([]model.Category, error) {
	var categories []model.Category
	err := s.db.Where("level = 1 AND status = 1").Order("sort_order ASC").Find(&categories).Error
	return categories, err
}

// ReviewView 评价条目
type ReviewView struct {
	ID          int64    `json:"id"`
	UserID      int64    `json:"userId"`
	Nickname    string   `json:"nickname"`
	Avatar      string   `json:"avatar"`
	Rating      int      `json:"rating"`
	Content     string   `json:"content"`
	Images      []string `json:"images"`
	IsAnonymous bool     `json:"isAnonymous"`
	CreatedAt   string   `json:"createdAt"`
}

type ReviewListResult struct {
	Reviews []ReviewView `json:"reviews"`
	Total   int64        `json:"total"`
}

type reviewRow struct {
	model.Review
	Nickname string
	Avatar   string
}

// ListReviews 商品评价分页列表
func (s *ProductService) ListReviews(productID int64, page, pageSize int) (*ReviewListResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	var total int64
	if err := s.db.Model(&model.Review{}).Where("product_id = ?", productID).Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []reviewRow
	err := s.db.Table("product_reviews AS r").
		Select("r.*, u.nickname, u.avatar").
		Joins("LEFT JOIN users u ON u.id = r.user_id").
		Where("r.product_id = ?", productID).
		Order("r.created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	reviews := make([]ReviewView, 0, len(rows))
	for _, r := range rows {
		nickname := r.Nickname
		if r.IsAnonymous {
			nickname = "匿名用户"
		}
		var images []string
		if r.Images != "" {
			images = strings.Split(r.Images, ",")
		}
		reviews = append(reviews, ReviewView{
			ID:          r.Review.ID,
			UserID:      r.Review.UserID,
			Nickname:    nickname,
			Avatar:      r.Avatar,
			Rating:      r.Rating,
			Content:     r.Content,
			Images:      images,
			IsAnonymous: r.IsAnonymous,
			CreatedAt:   r.Review.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return &ReviewListResult{Reviews: reviews, Total: total}, nil
}

type AddReviewInput struct {
	Rating      int      `json:"rating"`
	Content     string   `json:"content"`
	Images      []string `json:"images"`
	IsAnonymous bool     `json:"isAnonymous"`
	OrderID     *int64   `json:"orderId"`
}

// AddReview 发表评价，同时刷新商品的评分均值和评价数
func (s *ProductService) AddReview(userID, productID int64, in AddReviewInput) (*model.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, badRequest("评分必须在1-5之间")
	}

	var p model.Product
	if err := s.db.Where("id = ?", productID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("商品不存在")
		}
		return nil, err
	}

	review := model.Review{
		ProductID:   productID,
		UserID:      userID,
		OrderID:     in.OrderID,
		Rating:      in.Rating,
		Content:     in.Content,
		Images:      strings.Join(in.Images, ","),
		IsAnonymous: in.IsAnonymous,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return tx.Model(&model.Product{}).Where("id = ?", productID).Updates(map[string]interface{}{
			"review_count": gorm.Expr("review_count + 1"),
			"rating_avg": gorm.Expr(
				"(rating_avg * review_count + ?) / (review_count + 1)", in.Rating),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Suggestions 搜索联想词，按销量取前 10 个商品名
func (s *ProductService) Suggestions(keyword string) ([]string, error) {
	keyword = strings.TrimSpace(keyword)
	if len([]rune(keyword)) < 2 {
		return []string{}, nil
	}

	like := "%" + keyword + "%"
	var names []string
	err := s.db.Model(&model.Product{}).
		Where("status = 1").
		Where("name LIKE ? OR keywords LIKE ?", like, like).
		Order("sales_count DESC").
		Limit(10).
		Pluck("name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

// SyncSearchIndex 把在售商品全量写入 ES 索引，启动时调用
func (s *ProductService) SyncSearchIndex(ctx context.Context) error {
	if s.search == nil {
		return nil
	}

	var products []model.Product
	if err := s.db.Where("status = 1").Find(&products).Error; err != nil {
		return err
	}

	docs := make([]search.ProductDoc, 0, len(products))
	for _, p := range products {
		docs = append(docs, search.ProductDoc{
			ID:       p.ID,
			Name:     p.Name,
			Subtitle: p.Subtitle,
			Keywords: p.Keywords,
			Tags:     p.Tags,
			Sales:    p.SalesCount,
		})
	}
	return s.search.BulkIndex(ctx, docs)
}
