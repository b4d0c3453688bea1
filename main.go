package main

import (
	"path/filepath"

	"github.com/dilshat/message-sender/controller"
	"github.com/dilshat/message-sender/dao"
	"github.com/dilshat/message-sender/dispatch"
	_ "github.com/dilshat/message-sender/docs"
	"github.com/dilshat/message-sender/log"
	"github.com/dilshat/message-sender/service"
	"github.com/dilshat/message-sender/util"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

// @title Message service HTTP API
// @description Broadcasts a message to recipients over email, telegram and vk and tracks delivery

// @contact.name Dilshat Aliev
// @contact.email dilshat.aliev@gmail.com

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Error.Println(err)
	}
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	//create db client
	dbClient, err := dao.GetClient(util.GetEnv("DB_PATH", "messages.db"))
	if err != nil {
		log.Fatal(err)
	}

	//channel configuration, read once, never mutated afterwards
	config := dispatch.Config{
		Email: dispatch.EmailConfig{Accounts: []dispatch.SmtpAccount{
			{
				Name:     util.GetEnv("SMTP1_NAME", "primary"),
				Host:     util.GetEnv("SMTP1_HOST", ""),
				Port:     util.GetEnvAsInt("SMTP1_PORT", 587),
				SSL:      util.GetEnvAsBool("SMTP1_SSL", false),
				User:     util.GetEnv("SMTP1_EMAIL", ""),
				Password: util.GetEnv("SMTP1_PASSWORD", ""),
			},
			{
				Name:     util.GetEnv("SMTP2_NAME", "secondary"),
				Host:     util.GetEnv("SMTP2_HOST", ""),
				Port:     util.GetEnvAsInt("SMTP2_PORT", 465),
				SSL:      util.GetEnvAsBool("SMTP2_SSL", true),
				User:     util.GetEnv("SMTP2_EMAIL", ""),
				Password: util.GetEnv("SMTP2_PASSWORD", ""),
			},
		}},
		Telegram: dispatch.TelegramConfig{
			Token:  util.GetEnv("TELEGRAM_BOT_TOKEN", ""),
			ApiUrl: util.GetEnv("TELEGRAM_API_URL", ""),
		},
		Vk: dispatch.VkConfig{
			AccessToken: util.GetEnv("VK_ACCESS_TOKEN", ""),
			ApiVersion:  util.GetEnv("VK_API_VERSION", "5.131"),
			ApiUrl:      util.GetEnv("VK_API_URL", "https://api.vk.com/method/"),
		},
	}

	//create channel senders
	emailSender := dispatch.NewEmailSender(config.Email)
	telegramSender, err := dispatch.NewTelegramSender(config.Telegram)
	if err != nil {
		log.Fatal(err)
	}
	vkSender := dispatch.NewVkSender(config.Vk)

	senders := []dispatch.Sender{emailSender, telegramSender, vkSender}
	validateConfiguration(senders)

	messageDao := dao.NewMessageDao(dbClient)
	contactDao := dao.NewContactDao(dbClient)
	recipientDao := dao.NewRecipientDao(dbClient)
	attachmentDao := dao.NewAttachmentDao(dbClient)
	historyDao := dao.NewStatusHistoryDao(dbClient)

	store := service.NewDispatchStore(messageDao, contactDao, recipientDao, attachmentDao, historyDao)
	orchestrator := dispatch.NewOrchestrator(store, senders...)

	//start dispatch worker
	queue := dispatch.NewQueue(orchestrator)
	queue.Start()

	authPassword := util.GetEnv("AUTH_PASSWORD", "")

	messageService := service.NewService(
		orchestrator,
		queue,
		config,
		messageDao,
		contactDao,
		recipientDao,
		attachmentDao,
		historyDao,
		service.Options{
			UploadDir:         util.GetEnv("UPLOAD_DIR", filepath.Join("data", "uploads")),
			ResendAttachments: util.GetEnvAsBool("RESEND_ATTACHMENTS", false),
			AuthEnabled:       authPassword != "",
		},
	)

	//attach http handlers
	e := echo.New()
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.HideBanner = true
	e.Use(middleware.BodyLimit(util.GetEnv("BODY_LIMIT", "10M")))

	api := e.Group("/api")
	if authPassword != "" {
		authUsername := util.GetEnv("AUTH_USERNAME", "admin")
		api.Use(middleware.BasicAuth(func(username, password string, c echo.Context) (bool, error) {
			return username == authUsername && password == authPassword, nil
		}))
	}

	bindRoutes(api, messageService)

	//start http server
	log.Fatal(e.Start(":" + util.GetEnv("HTTP_PORT", "8080")))
}

func validateConfiguration(senders []dispatch.Sender) {
	for _, sender := range senders {
		if !sender.Configured() {
			log.Warn.Println("Method", sender.Method(), "is not configured")
			continue
		}
		log.Info.Println("Checking", sender.Method(), "configuration")
		log.WarnIfErr("Validation of "+sender.Method()+" failed:", sender.Validate())
	}
}

func bindRoutes(api *echo.Group, srv service.Service) {

	api.POST("/messages", controller.GetSendMessageFunc(srv))

	api.GET("/messages", controller.GetMessagesFunc(srv))

	api.GET("/messages/:id", controller.GetMessageDetailsFunc(srv))

	api.POST("/messages/:id/resend", controller.GetResendMessageFunc(srv))

	api.GET("/messages/:id/history", controller.GetStatusHistoryFunc(srv))

	api.GET("/contacts", controller.GetContactsFunc(srv))

	api.POST("/contacts", controller.GetCreateContactFunc(srv))

	api.DELETE("/contacts/:id", controller.GetDeleteContactFunc(srv))

	api.GET("/config-status", controller.GetConfigStatusFunc(srv))
}
