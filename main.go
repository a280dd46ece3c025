package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/growyourneed/crm_backend/config"
	"github.com/growyourneed/crm_backend/controllers"
	"github.com/growyourneed/crm_backend/middleware"
	"github.com/growyourneed/crm_backend/repository"
	"github.com/growyourneed/crm_backend/routes"
	"github.com/growyourneed/crm_backend/service"
	"github.com/growyourneed/crm_backend/utils"
)

func main() {
	// 初始化日志
	utils.InitLogger()

	// 加载配置
	cfg := config.LoadConfig()

	// 设置Gin模式
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// 选择数据源：live走MongoDB，mock走内存存储（离线演示和测试）
	var store repository.Store
	if cfg.IsMock() {
		utils.Logger.Info().Msg("mock模式，使用内存数据源")
		memStore := repository.NewMemoryStore()
		if err := repository.Seed(context.Background(), memStore); err != nil {
			utils.Logger.Error().Err(err).Msg("写入演示数据失败")
		}
		store = memStore
	} else {
		if err := repository.InitMongoDB(cfg.MongoURI, cfg.MongoDB); err != nil {
			utils.Logger.Fatal().Err(err).Msg("连接MongoDB失败")
		}
		defer repository.CloseMongoDB()

		if err := repository.InitializeCollections(); err != nil {
			utils.Logger.Error().Err(err).Msg("初始化数据库集合失败")
		}
		store = repository.NewMongoStore()
	}

	// 组装服务
	auditService := service.NewAuditService(store)
	contactService := service.NewContactService(store, auditService)
	csvService := service.NewCsvService(contactService)
	dealService := service.NewDealService(store, auditService)
	analyticsService := service.NewAnalyticsService(store)
	mailer := service.NewMailer(cfg)
	emailService := service.NewEmailService(store, contactService, mailer)
	campaignService := service.NewCampaignService(store)

	controllers.Setup(cfg, contactService, csvService, dealService,
		analyticsService, emailService, campaignService, auditService)

	// 创建Gin实例
	router := gin.New()

	// 应用中间件
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.OperationLogger(store))

	// 注册路由
	routes.RegisterRoutes(router)

	// 启动定时任务（每日跟进提醒）
	scheduler := service.NewScheduler(contactService, mailer, cfg.MailFrom)
	if err := scheduler.Start(); err != nil {
		utils.Logger.Error().Err(err).Msg("启动定时任务失败")
	}
	defer scheduler.Stop()

	// 设置HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 启动服务器
	go func() {
		utils.Logger.Info().Msgf("服务器启动，监听端口: %d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Logger.Fatal().Err(err).Msg("启动服务器失败")
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.Logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.Logger.Fatal().Err(err).Msg("服务器关闭异常")
	}

	utils.Logger.Info().Msg("服务器已优雅关闭")
}
