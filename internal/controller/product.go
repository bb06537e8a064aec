package controller

import (
	"net/http"

	"github.com/RCodeTree/market-service/internal/service"
	"github.com/RCodeTree/market-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// ProductController 商品相关接口
type ProductController struct {
	products *service.ProductService
}

func NewProductController(products *service.ProductService) *ProductController {
	return &ProductController{products: products}
}

// List GET /api/products
func (c *ProductController) List(ctx *gin.Context) {
	q := service.ProductListQuery{
		Page:       queryInt(ctx, "page", 1),
		PageSize:   queryInt(ctx, "pageSize", 24),
		Keyword:    ctx.Query("keyword"),
		CategoryID: queryInt64(ctx, "category"),
		PriceRange: ctx.Query("priceRange"),
		Sort:       ctx.Query("sort"),
	}

	result, err := c.products.List(ctx.Request.Context(), q)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "获取商品列表成功", result)
}

// Detail GET /api/products/:id
func (c *ProductController) Detail(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	detail, err := c.products.Detail(id)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "获取商品详情成功", gin.H{"product": detail})
}

// Hot GET /api/products/hot
func (c *ProductController) Hot(ctx *gin.Context) {
	products, err := c.products.Hot(queryInt(ctx, "limit", 8), queryInt64(ctx, "exclude"))
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "获取热门商品成功", gin.H{"products": products})
}

// New GET /api/products/new
func (c *ProductController) New(ctx *gin.Context) {
	products, err := c.products.New(queryInt(ctx, "limit", 8), queryInt64(ctx, "exclude"))
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "获取新品成功", gin.H{"products": products})
}

// Recommended GET /api/products/recommended
func (c *ProductController) Recommended(ctx *gin.Context) {
	products, err := c.products.Recommended(queryInt(ctx, "limit", 8), queryInt64(ctx, "exclude"))
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "获取推荐商品成功", gin.H{"products": products})
}

// Categories GET /api/products/categories
func (c *ProductController) Categories(ctx *gin.Context) {
	categories, err := c.products.Categories()
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "获取分类列表成功", gin.H{"categories": categories})
}

// Reviews GET /api/products/:id/reviews
func (c *ProductController) Reviews(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	result, err := c.products.ListReviews(id, queryInt(ctx, "page", 1), queryInt(ctx, "pageSize", 10))
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "获取评价列表成功", result)
}

// AddReview POST /api/products/:id/reviews
func (c *ProductController) AddReview(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.AddReviewInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "请求参数格式不正确")
		return
	}

	review, err := c.products.AddReview(currentUserID(ctx), id, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Created(ctx, "评价成功", gin.H{"review": review})
}

// Suggestions GET /api/products/search/suggestions?keyword=xx
func (c *ProductController) Suggestions(ctx *gin.Context) {
	suggestions, err := c.products.Suggestions(ctx.Query("keyword"))
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "获取搜索建议成功", gin.H{"suggestions": suggestions})
}
