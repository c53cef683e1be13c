package provider

import (
	"github.com/Eric920418/shoe-sub000/internal/authz"
	"github.com/Eric920418/shoe-sub000/internal/cache"
	"github.com/Eric920418/shoe-sub000/internal/config"
	"github.com/Eric920418/shoe-sub000/internal/logger"
	"github.com/Eric920418/shoe-sub000/internal/models"
	"github.com/Eric920418/shoe-sub000/internal/queue"
	"github.com/Eric920418/shoe-sub000/internal/repository"
	"github.com/Eric920418/shoe-sub000/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo         repository.AdminRepository
	UserRepo          repository.UserRepository
	ProductRepo       repository.ProductRepository
	CartRepo          repository.CartRepository
	OrderRepo         repository.OrderRepository
	ReturnRepo        repository.ReturnRepository
	CreditRepo        repository.CreditRepository
	TierRepo          repository.TierRepository
	PointRepo         repository.PointRepository
	CouponRepo        repository.CouponRepository
	CouponUsageRepo   repository.CouponUsageRepository
	AuthzAuditLogRepo repository.AuthzAuditLogRepository

	// Services
	AuthzService      *authz.Service
	AuthService       *service.AuthService
	UserAuthService   *service.UserAuthService
	CaptchaService    *service.CaptchaService
	ProductService    *service.ProductService
	CartService       *service.CartService
	CreditService     *service.CreditService
	MembershipService *service.MembershipService
	CouponService     *service.CouponService
	OrderService      *service.OrderService
	ReturnService     *service.ReturnService
	AuthzAuditService *service.AuthzAuditService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ReturnRepo = repository.NewReturnRepository(db)
	c.CreditRepo = repository.NewCreditRepository(db)
	c.TierRepo = repository.NewTierRepository(db)
	c.PointRepo = repository.NewPointRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CouponUsageRepo = repository.NewCouponUsageRepository(db)
	c.AuthzAuditLogRepo = repository.NewAuthzAuditLogRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo)
	c.CreditService = service.NewCreditService(c.CreditRepo, c.UserRepo)
	c.MembershipService = service.NewMembershipService(c.TierRepo, c.UserRepo, c.PointRepo)
	c.CouponService = service.NewCouponService(c.CouponRepo, c.CouponUsageRepo)
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.ProductRepo,
		c.CartRepo,
		c.UserRepo,
		c.CreditService,
		c.CouponService,
		c.MembershipService,
		service.NewLogReferralNotifier(),
		c.QueueClient,
		&c.Config.Order,
	)
	c.ReturnService = service.NewReturnService(c.ReturnRepo, c.OrderRepo, c.ProductRepo, c.CreditService)
	c.AuthzAuditService = service.NewAuthzAuditService(c.AuthzAuditLogRepo)
}
