package router

import (
	"log"
	"net/http"

	"github.com/RCodeTree/market-service/internal/controller"
	"github.com/RCodeTree/market-service/internal/middleware"
	"github.com/RCodeTree/market-service/pkg/response"

	sentinel "github.com/alibaba/sentinel-golang/api"
	"github.com/alibaba/sentinel-golang/core/base"
	"github.com/alibaba/sentinel-golang/core/flow"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// 限流资源名称
const (
	ResLogin       = "user_login"
	ResOrderCreate = "order_create"
)

// initSentinel 初始化限流规则
// 登录防撞库，下单防刷单
func initSentinel() {
	if err := sentinel.InitDefault(); err != nil {
		log.Fatalf("初始化 Sentinel 失败: %v", err)
	}

	_, err := flow.LoadRules([]*flow.Rule{
		{
			Resource:               ResLogin,
			TokenCalculateStrategy: flow.Direct,
			ControlBehavior:        flow.Reject,
			Threshold:              10,
			StatIntervalInMs:       1000,
		},
		{
			Resource:               ResOrderCreate,
			TokenCalculateStrategy: flow.Direct,
			ControlBehavior:        flow.Reject,
			Threshold:              50,
			StatIntervalInMs:       1000,
		},
	})
	if err != nil {
		log.Fatalf("加载 Sentinel 规则失败: %v", err)
	}
	log.Println("Sentinel 限流规则已加载: 登录 QPS 10, 下单 QPS 50")
}

// rateLimit 对指定资源做 QPS 限流，超限直接拒绝
func rateLimit(resource string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		e, b := sentinel.Entry(resource, sentinel.WithTrafficType(base.Inbound))
		if b != nil {
			response.Error(ctx, http.StatusTooManyRequests, "系统繁忙，请稍后再试")
			ctx.Abort()
			return
		}
		defer e.Exit()
		ctx.Next()
	}
}

// Controllers 路由需要的全部控制器
type Controllers struct {
	User    *controller.UserController
	Product *controller.ProductController
	Cart    *controller.CartController
	Order   *controller.OrderController
}

// New 组装路由
func New(serviceName string, rdb *redis.Client, c Controllers) *gin.Engine {
	initSentinel()

	r := gin.Default()
	r.Use(otelgin.Middleware(serviceName))

	r.NoRoute(func(ctx *gin.Context) {
		response.Error(ctx, http.StatusNotFound, "接口不存在")
	})

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", c.User.Register)
		auth.POST("/login", rateLimit(ResLogin), c.User.Login)
		auth.GET("/check-username/:username", c.User.CheckUsername)
		auth.POST("/logout", middleware.Auth(rdb), c.User.Logout)
		auth.GET("/verify", middleware.Auth(rdb), c.User.Verify)
	}

	products := api.Group("/products", middleware.OptionalAuth(rdb))
	{
		products.GET("", c.Product.List)
		products.GET("/hot", c.Product.Hot)
		products.GET("/new", c.Product.New)
		products.GET("/recommended", c.Product.Recommended)
		products.GET("/categories", c.Product.Categories)
		products.GET("/search/suggestions", c.Product.Suggestions)
		products.GET("/:id", c.Product.Detail)
		products.GET("/:id/reviews", c.Product.Reviews)
		products.POST("/:id/reviews", middleware.Auth(rdb), c.Product.AddReview)
	}
	api.GET("/categories", middleware.OptionalAuth(rdb), c.Product.Categories)

	cart := api.Group("/cart", middleware.Auth(rdb))
	{
		cart.GET("", c.Cart.List)
		cart.POST("", c.Cart.Add)
		cart.GET("/count", c.Cart.Count)
		cart.DELETE("/batch", c.Cart.BatchRemove)
		cart.PUT("/:id", c.Cart.UpdateQuantity)
		cart.PUT("/:id/selected", c.Cart.UpdateSelected)
		cart.DELETE("/:id", c.Cart.Remove)
		cart.DELETE("", c.Cart.Clear)
	}

	orders := api.Group("/orders", middleware.Auth(rdb))
	{
		orders.POST("", rateLimit(ResOrderCreate), c.Order.Create)
		orders.GET("", c.Order.List)
		orders.GET("/stats", c.Order.Stats)
		orders.GET("/:id", c.Order.Detail)
		orders.PUT("/:id/cancel", c.Order.Cancel)
		orders.POST("/:id/pay", c.Order.Pay)
		orders.GET("/:id/payment-status", c.Order.PaymentStatus)
		orders.PUT("/:id/confirm", c.Order.ConfirmReceive)
		orders.POST("/:id/refund", c.Order.RequestRefund)
		orders.POST("/:id/remind-shipping", c.Order.RemindShipping)
		orders.DELETE("/:id", c.Order.Delete)
	}

	user := api.Group("/user", middleware.Auth(rdb))
	{
		user.GET("/profile", c.User.Profile)
		user.PUT("/profile", c.User.UpdateProfile)
		user.PUT("/password", c.User.ChangePassword)
		user.POST("/avatar", c.User.UploadAvatar)
		user.GET("/stats", c.User.Stats)
		user.GET("/orders", c.Order.ListWithCounts)

		user.GET("/favorites", c.User.ListFavorites)
		user.POST("/favorites", c.User.AddFavorite)
		user.DELETE("/favorites/batch", c.User.BatchRemoveFavorites)
		user.DELETE("/favorites/:id", c.User.RemoveFavorite)

		user.GET("/addresses", c.User.ListAddresses)
		user.POST("/addresses", c.User.CreateAddress)
		user.PUT("/addresses/:id", c.User.UpdateAddress)
		user.DELETE("/addresses/:id", c.User.DeleteAddress)
	}

	return r
}
